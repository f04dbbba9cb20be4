package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PointsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdmtrack_points_extracted_total",
			Help: "Точки, полученные из источников, по типу",
		},
		[]string{"kind"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdmtrack_records_skipped_total",
			Help: "Записи источников без пригодных координат",
		},
		[]string{"kind"},
	)

	SnapshotDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdmtrack_snapshot_decisions_total",
			Help: "Решения о сохранении снимка местоположения",
		},
		[]string{"source", "result"}, // result: inserted, debounced, failed
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mdmtrack_sweep_duration_seconds",
			Help:    "Длительность обхода парка устройств",
			Buckets: []float64{.05, .1, .5, 1, 5, 10, 30, 60},
		},
	)

	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mdmtrack_sweep_last_success_timestamp",
			Help: "Unix-время последнего успешного обхода",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mdmtrack_circuit_breaker_state",
			Help: "Состояние предохранителя хранилища (0 закрыт, 1 полуоткрыт, 2 открыт)",
		},
		[]string{"name"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdmtrack_cache_requests_total",
			Help: "Обращения к кэшу текущих местоположений",
		},
		[]string{"result"}, // hit, miss, error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mdmtrack_api_request_duration_seconds",
			Help:    "Длительность обработки HTTP-запросов",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func RecordSnapshotDecision(source string, inserted bool, err error) {
	result := "debounced"
	switch {
	case err != nil:
		result = "failed"
	case inserted:
		result = "inserted"
	}
	SnapshotDecisions.WithLabelValues(source, result).Inc()
}

func RecordSweep(duration time.Duration, err error) {
	SweepDuration.Observe(duration.Seconds())
	if err == nil {
		SweepLastSuccess.SetToCurrentTime()
	}
}
