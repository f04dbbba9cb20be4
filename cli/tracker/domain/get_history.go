package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/response"
	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
)

const DefaultHistoryDays = 7

type GetHistory struct {
	Repository   HistoryRepository
	SaveSnapshot *SaveSnapshot
	DefaultDays  int
	MaxDays      int
}

// Run собирает хронологию точек устройства за последние days дней.
// Если в хронологию попала текущая точка, она сохраняется в историю;
// ошибка сохранения только журналируется.
func (d *GetHistory) Run(ctx context.Context, number string, days int) (response.History, error) {
	if days == 0 {
		days = d.DefaultDays
	}
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 0 || (d.MaxDays > 0 && days > d.MaxDays) {
		return response.History{}, fmt.Errorf("%w: %d", types.ErrInvalidWindow, days)
	}

	device, err := d.Repository.GetDeviceByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, types.ErrDeviceNotFound) {
			return response.History{}, err
		}
		return response.History{}, unavailable(err)
	}

	window := NewWindow(now(), days)

	logs, err := d.Repository.GetLocationLogs(ctx, device.ID, window.Start)
	if err != nil {
		return response.History{}, unavailable(err)
	}

	history, err := d.Repository.GetHistorySince(ctx, device.ID, window.Start)
	if err != nil {
		return response.History{}, unavailable(err)
	}

	live, err := d.Repository.GetLiveLocation(ctx, device.ID)
	if err != nil {
		if !errors.Is(err, types.ErrMalformedStatusDocument) {
			return response.History{}, unavailable(err)
		}
		metrics.RecordsSkipped.WithLabelValues(string(types.KindCurrent)).Inc()
		log.WithFields(log.Fields{"device_id": device.ID, "err": err}).Debug("Документ состояния устройства пропущен")
		live = nil
	}

	var livePoint *types.LocationPoint
	if point, ok := LivePoint(live, window.End); ok {
		livePoint = &point
	}

	points, liveIncluded := MergeTimeline(LogPoints(logs), HistoryPoints(history), livePoint, window)

	if liveIncluded && d.SaveSnapshot != nil {
		if _, err := d.SaveSnapshot.Run(ctx, device.ID, *livePoint, SourceSnapshot); err != nil {
			log.WithFields(log.Fields{"device_id": device.ID, "number": device.Number, "err": err}).Error("Снимок местоположения не сохранён")
		}
	}

	return response.History{
		Device: response.HistoryDevice{
			Number:      device.Number,
			Description: device.Description,
		},
		History:     points,
		TotalPoints: len(points),
	}, nil
}
