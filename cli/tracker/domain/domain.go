package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
)

var now = time.Now // For mocking time.Now() in tests

type HistoryRepository interface {
	GetDeviceByNumber(ctx context.Context, number string) (out.Device, error)
	GetLocationLogs(ctx context.Context, deviceID int32, since time.Time) ([]out.LogRecord, error)
	GetHistorySince(ctx context.Context, deviceID int32, since time.Time) ([]out.HistoryRecord, error)
	GetLiveLocation(ctx context.Context, deviceID int32) (*out.LiveRecord, error)
}

type SnapshotRepository interface {
	AddSnapshotIfAbsent(ctx context.Context, snapshot insert.Snapshot) (bool, error)
}

type FleetRepository interface {
	GetAllLiveLocations(ctx context.Context) ([]out.DeviceLiveLocation, error)
}

type DeviceSummaryRepository interface {
	GetDeviceSummaries(ctx context.Context, historySince time.Time) ([]out.DeviceSummary, error)
}

type HealthRepository interface {
	Ping(ctx context.Context) error
}

type LocationsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

func unavailable(err error) error {
	if errors.Is(err, types.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
}
