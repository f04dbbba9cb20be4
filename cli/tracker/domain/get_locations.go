package domain

import (
	"context"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/response"
	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	log "github.com/sirupsen/logrus"
)

const currentLocationsCacheKey = "mdmtrack:locations:current"

type GetLocations struct {
	Repository FleetRepository
	Cache      LocationsCache
	CacheTTL   time.Duration
}

func (d *GetLocations) Run(ctx context.Context) ([]response.CurrentLocation, error) {
	if d.cacheEnabled() {
		var cached []response.CurrentLocation
		found, err := d.Cache.GetJSON(ctx, currentLocationsCacheKey, &cached)
		switch {
		case err != nil:
			metrics.CacheRequests.WithLabelValues("error").Inc()
			log.WithField("err", err).Warn("Кэш текущих местоположений недоступен")
		case found:
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		}
	}

	locations, err := d.Repository.GetAllLiveLocations(ctx)
	if err != nil {
		return nil, unavailable(err)
	}

	observedAt := now()
	result := make([]response.CurrentLocation, 0, len(locations))
	for _, location := range locations {
		point, ok := LivePoint(location.Live, observedAt)
		if !ok {
			continue
		}

		device := location.Device
		item := response.CurrentLocation{
			ID:          device.ID,
			Number:      device.Number,
			Description: response.UnknownDeviceDescription,
			Latitude:    point.Latitude,
			Longitude:   point.Longitude,
			Time:        point.Time,
			Battery:     response.UnknownBattery,
			Status:      response.StatusActive,
		}
		if device.Description != nil && *device.Description != "" {
			item.Description = *device.Description
		}
		if device.IMEI != nil {
			item.IMEI = *device.IMEI
		}
		if battery, ok := location.Live.Extra["batteryLevel"]; ok && battery != nil {
			item.Battery = battery
		}

		result = append(result, item)
	}

	if d.cacheEnabled() {
		if err := d.Cache.SetJSON(ctx, currentLocationsCacheKey, result, d.CacheTTL); err != nil {
			log.WithField("err", err).Warn("Не удалось сохранить текущие местоположения в кэш")
		}
	}

	return result, nil
}

func (d *GetLocations) cacheEnabled() bool {
	return d.Cache != nil && d.CacheTTL > 0
}
