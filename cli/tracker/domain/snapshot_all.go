package domain

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type SweepResult struct {
	RunID     string
	Evaluated int
	Inserted  int
	Failed    int
}

type snapshotJob struct {
	deviceID int32
	point    types.LocationPoint
}

// SnapshotAll сохраняет текущие точки всех устройств. Ошибка по одному
// устройству не прерывает обход.
type SnapshotAll struct {
	Repository   FleetRepository
	SaveSnapshot *SaveSnapshot
	Workers      int
	StoreTimeout time.Duration
}

func (d *SnapshotAll) Run(ctx context.Context) (SweepResult, error) {
	result := SweepResult{RunID: uuid.NewString()}
	logger := log.WithField("run_id", result.RunID)
	started := time.Now()

	logger.Info("Запуск сохранения текущих местоположений всех устройств")

	locations, err := d.Repository.GetAllLiveLocations(ctx)
	if err != nil {
		err = unavailable(err)
		metrics.RecordSweep(time.Since(started), err)
		return result, err
	}

	observedAt := now()
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var evaluated, inserted, failed int64
	jobs := make(chan snapshotJob)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				atomic.AddInt64(&evaluated, 1)

				ok, err := d.save(ctx, job)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					logger.WithFields(log.Fields{"device_id": job.deviceID, "err": err}).Error("Ошибка сохранения снимка местоположения")
					continue
				}
				if ok {
					atomic.AddInt64(&inserted, 1)
				}
			}
		}()
	}

feed:
	for _, location := range locations {
		point, ok := LivePoint(location.Live, observedAt)
		if !ok {
			continue
		}

		select {
		case jobs <- snapshotJob{deviceID: location.Device.ID, point: point}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	result.Evaluated = int(evaluated)
	result.Inserted = int(inserted)
	result.Failed = int(failed)

	err = ctx.Err()
	metrics.RecordSweep(time.Since(started), err)

	logger.WithFields(log.Fields{
		"devices":   len(locations),
		"evaluated": result.Evaluated,
		"inserted":  result.Inserted,
		"failed":    result.Failed,
	}).Info("Сохранение текущих местоположений завершено")

	return result, err
}

func (d *SnapshotAll) save(ctx context.Context, job snapshotJob) (bool, error) {
	if d.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.StoreTimeout)
		defer cancel()
	}

	return d.SaveSnapshot.Run(ctx, job.deviceID, job.point, SourceSnapshotAll)
}
