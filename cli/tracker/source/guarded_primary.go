package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

const breakerName = "primary-store"

type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

// GuardedPrimary защищает основное хранилище предохранителем: после серии
// отказов запросы сразу получают types.ErrUpstreamUnavailable.
type GuardedPrimary struct {
	inner Primary
	cb    *gobreaker.CircuitBreaker[interface{}]
}

func NewGuardedPrimary(inner Primary, settings BreakerSettings) *GuardedPrimary {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	if settings.HalfOpenRequests == 0 {
		settings.HalfOpenRequests = 1
	}

	metrics.BreakerState.WithLabelValues(breakerName).Set(stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: settings.HalfOpenRequests,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("Смена состояния предохранителя хранилища")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// Отсутствие устройства и отмена запроса клиентом не говорят о сбое хранилища.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, types.ErrDeviceNotFound) ||
				errors.Is(err, types.ErrMalformedStatusDocument) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &GuardedPrimary{inner: inner, cb: cb}
}

func guard[T any](g *GuardedPrimary, fn func() (T, error)) (T, error) {
	result, err := g.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
		}
		if typed, ok := result.(T); ok {
			return typed, err
		}
		return zero, err
	}

	typed, ok := result.(T)
	if !ok && result != nil {
		var zero T
		return zero, fmt.Errorf("предохранитель: неожиданный тип результата %T", result)
	}
	return typed, nil
}

func (g *GuardedPrimary) GetDeviceByNumber(ctx context.Context, number string) (out.Device, error) {
	return guard(g, func() (out.Device, error) { return g.inner.GetDeviceByNumber(ctx, number) })
}

func (g *GuardedPrimary) GetDeviceSummaries(ctx context.Context, filter filter.DeviceSummaries) ([]out.DeviceSummary, error) {
	return guard(g, func() ([]out.DeviceSummary, error) { return g.inner.GetDeviceSummaries(ctx, filter) })
}

func (g *GuardedPrimary) GetLogCandidates(ctx context.Context, filter filter.LogCandidates) ([]out.LogRecord, error) {
	return guard(g, func() ([]out.LogRecord, error) { return g.inner.GetLogCandidates(ctx, filter) })
}

func (g *GuardedPrimary) GetHistory(ctx context.Context, filter filter.History) ([]out.HistoryRecord, error) {
	return guard(g, func() ([]out.HistoryRecord, error) { return g.inner.GetHistory(ctx, filter) })
}

func (g *GuardedPrimary) GetLiveLocation(ctx context.Context, deviceID int32) (*out.LiveRecord, error) {
	return guard(g, func() (*out.LiveRecord, error) { return g.inner.GetLiveLocation(ctx, deviceID) })
}

func (g *GuardedPrimary) GetAllLiveLocations(ctx context.Context) ([]out.DeviceLiveLocation, error) {
	return guard(g, func() ([]out.DeviceLiveLocation, error) { return g.inner.GetAllLiveLocations(ctx) })
}

func (g *GuardedPrimary) InsertHistoryIfAbsent(ctx context.Context, snapshot insert.Snapshot) (bool, error) {
	return guard(g, func() (bool, error) { return g.inner.InsertHistoryIfAbsent(ctx, snapshot) })
}

func (g *GuardedPrimary) Ping(ctx context.Context) error {
	_, err := guard(g, func() (struct{}, error) { return struct{}{}, g.inner.Ping(ctx) })
	return err
}

func (g *GuardedPrimary) State() gobreaker.State {
	return g.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
