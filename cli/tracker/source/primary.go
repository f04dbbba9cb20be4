package source

import (
	"context"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
)

type Primary interface {
	GetDeviceByNumber(ctx context.Context, number string) (out.Device, error)
	GetDeviceSummaries(ctx context.Context, filter filter.DeviceSummaries) ([]out.DeviceSummary, error)

	GetLogCandidates(ctx context.Context, filter filter.LogCandidates) ([]out.LogRecord, error)
	GetHistory(ctx context.Context, filter filter.History) ([]out.HistoryRecord, error)
	GetLiveLocation(ctx context.Context, deviceID int32) (*out.LiveRecord, error)
	GetAllLiveLocations(ctx context.Context) ([]out.DeviceLiveLocation, error)

	// InsertHistoryIfAbsent атомарно проверяет окно и вставляет запись.
	// Возвращает true, если запись была добавлена.
	InsertHistoryIfAbsent(ctx context.Context, snapshot insert.Snapshot) (bool, error)

	Ping(ctx context.Context) error
}
