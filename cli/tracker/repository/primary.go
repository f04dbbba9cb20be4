package repository

import (
	"context"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/source"
)

// Подстроки, по которым запись журнала считается обновлением местоположения.
var locationUpdatePatterns = []string{
	"GPS location update",
	"Network location update",
	"location update",
}

const locationLogPattern = "location"

type Primary struct {
	Source source.Primary
}

func (p *Primary) GetDeviceByNumber(ctx context.Context, number string) (out.Device, error) {
	return p.Source.GetDeviceByNumber(ctx, number)
}

func (p *Primary) GetLocationLogs(ctx context.Context, deviceID int32, since time.Time) ([]out.LogRecord, error) {
	return p.Source.GetLogCandidates(ctx, filter.LogCandidates{
		DeviceID: deviceID,
		SinceMs:  since.UnixMilli(),
		Patterns: locationUpdatePatterns,
	})
}

func (p *Primary) GetHistorySince(ctx context.Context, deviceID int32, since time.Time) ([]out.HistoryRecord, error) {
	return p.Source.GetHistory(ctx, filter.History{DeviceID: deviceID, Since: since.UTC()})
}

func (p *Primary) GetLiveLocation(ctx context.Context, deviceID int32) (*out.LiveRecord, error) {
	return p.Source.GetLiveLocation(ctx, deviceID)
}

func (p *Primary) GetAllLiveLocations(ctx context.Context) ([]out.DeviceLiveLocation, error) {
	return p.Source.GetAllLiveLocations(ctx)
}

func (p *Primary) AddSnapshotIfAbsent(ctx context.Context, snapshot insert.Snapshot) (bool, error) {
	return p.Source.InsertHistoryIfAbsent(ctx, snapshot)
}

func (p *Primary) GetDeviceSummaries(ctx context.Context, historySince time.Time) ([]out.DeviceSummary, error) {
	return p.Source.GetDeviceSummaries(ctx, filter.DeviceSummaries{
		LogPattern:   locationLogPattern,
		HistorySince: historySince.UTC(),
	})
}

func (p *Primary) Ping(ctx context.Context) error {
	return p.Source.Ping(ctx)
}
