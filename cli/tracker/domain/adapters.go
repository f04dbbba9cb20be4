package domain

import (
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	"github.com/daniil11ru/mdmtrack/libs/locmsg"
	log "github.com/sirupsen/logrus"
)

func skipRecord(kind types.Kind, deviceID int32, reason string) {
	metrics.RecordsSkipped.WithLabelValues(string(kind)).Inc()
	log.WithFields(log.Fields{"device_id": deviceID, "kind": kind}).Debugf("Запись пропущена: %s", reason)
}

// LogPoints извлекает точки из записей журнала. Записи без координат пропускаются.
func LogPoints(records []out.LogRecord) []types.LocationPoint {
	points := make([]types.LocationPoint, 0, len(records))

	for _, record := range records {
		lat, lon, ok := locmsg.Extract(record.Message)
		if !ok {
			skipRecord(types.KindLog, record.DeviceID, "координаты не найдены")
			continue
		}

		point, err := types.NewLocationPoint(lat, lon, time.UnixMilli(record.CreateTime), types.KindLog, types.LogProvider(record.Message))
		if err != nil {
			skipRecord(types.KindLog, record.DeviceID, err.Error())
			continue
		}
		points = append(points, point)
	}

	metrics.PointsExtracted.WithLabelValues(string(types.KindLog)).Add(float64(len(points)))
	return points
}

func HistoryPoints(records []out.HistoryRecord) []types.LocationPoint {
	points := make([]types.LocationPoint, 0, len(records))

	for _, record := range records {
		if record.Latitude == nil || record.Longitude == nil {
			skipRecord(types.KindHistory, record.DeviceID, "координаты отсутствуют")
			continue
		}

		provider := types.ProviderHistory
		if record.Source != nil && *record.Source != "" {
			provider = *record.Source
		}

		point, err := types.NewLocationPoint(*record.Latitude, *record.Longitude, record.RecordedAt, types.KindHistory, provider)
		if err != nil {
			skipRecord(types.KindHistory, record.DeviceID, err.Error())
			continue
		}
		points = append(points, point)
	}

	metrics.PointsExtracted.WithLabelValues(string(types.KindHistory)).Add(float64(len(points)))
	return points
}

// LivePoint строит текущую точку устройства. Без метки времени точка
// получает момент наблюдения observedAt.
func LivePoint(record *out.LiveRecord, observedAt time.Time) (types.LocationPoint, bool) {
	if !record.HasCoordinates() {
		return types.LocationPoint{}, false
	}

	at := observedAt
	if record.TimestampMs != nil && *record.TimestampMs > 0 {
		at = time.UnixMilli(*record.TimestampMs)
	}

	point, err := types.NewLocationPoint(*record.Latitude, *record.Longitude, at, types.KindCurrent, types.ProviderCurrent)
	if err != nil {
		skipRecord(types.KindCurrent, record.DeviceID, err.Error())
		return types.LocationPoint{}, false
	}

	metrics.PointsExtracted.WithLabelValues(string(types.KindCurrent)).Inc()
	return point, true
}
