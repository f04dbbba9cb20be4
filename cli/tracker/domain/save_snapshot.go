package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
)

const (
	SourceSnapshot    = "snapshot"
	SourceSnapshotAll = "snapshot_all"

	DefaultSnapshotSpacing = 2 * time.Minute
)

// SaveSnapshot сохраняет текущую точку в историю не чаще одного раза
// за Spacing на устройство.
type SaveSnapshot struct {
	Repository SnapshotRepository
	Spacing    time.Duration
}

func (d *SaveSnapshot) Run(ctx context.Context, deviceID int32, point types.LocationPoint, source string) (bool, error) {
	if source != SourceSnapshot && source != SourceSnapshotAll {
		return false, fmt.Errorf("неизвестный источник снимка: %q", source)
	}
	if !types.IsValidCoordinate(point.Latitude, point.Longitude) {
		return false, fmt.Errorf("некорректные координаты снимка устройства %d", deviceID)
	}

	spacing := d.Spacing
	if spacing <= 0 {
		spacing = DefaultSnapshotSpacing
	}

	inserted, err := d.Repository.AddSnapshotIfAbsent(ctx, insert.Snapshot{
		DeviceID:   deviceID,
		Latitude:   point.Latitude,
		Longitude:  point.Longitude,
		RecordedAt: point.Time.UTC(),
		Source:     source,
		MinSpacing: spacing,
	})
	metrics.RecordSnapshotDecision(source, inserted, err)
	if err != nil {
		return false, fmt.Errorf("не удалось сохранить снимок местоположения устройства %d: %w", deviceID, err)
	}

	if inserted {
		log.WithFields(log.Fields{"device_id": deviceID, "source": source, "recorded_at": point.Time}).Debug("Снимок местоположения сохранён")
	}

	return inserted, nil
}
