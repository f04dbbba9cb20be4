package types

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	ProviderGPS     = "gps"
	ProviderNetwork = "network"
	ProviderLog     = "log"
	ProviderHistory = "history"
	ProviderCurrent = "current"
)

type LocationPoint struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Time      time.Time `json:"time"`
	Kind      Kind      `json:"type"`
	Provider  string    `json:"provider"`
}

// NewLocationPoint создаёт точку, отбрасывая нечисловые координаты и пару (0, 0).
func NewLocationPoint(lat, lon float64, t time.Time, kind Kind, provider string) (LocationPoint, error) {
	if !IsValidCoordinate(lat, lon) {
		return LocationPoint{}, fmt.Errorf("некорректные координаты: %v, %v", lat, lon)
	}
	if !kind.IsValid() {
		return LocationPoint{}, fmt.Errorf("недопустимый тип точки: %q", string(kind))
	}
	if provider == "" {
		provider = string(kind)
	}

	return LocationPoint{
		Latitude:  lat,
		Longitude: lon,
		Time:      t.UTC(),
		Kind:      kind,
		Provider:  provider,
	}, nil
}

func IsValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return !(lat == 0 && lon == 0)
}

// LogProvider определяет провайдера по тексту сообщения журнала.
func LogProvider(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, ProviderGPS):
		return ProviderGPS
	case strings.Contains(lower, ProviderNetwork):
		return ProviderNetwork
	default:
		return ProviderLog
	}
}

// DedupKey состоит из координат, округлённых до 6 знаков, и точного времени.
type DedupKey struct {
	Latitude  int64
	Longitude int64
	Time      int64
}

func (p LocationPoint) Key() DedupKey {
	return DedupKey{
		Latitude:  int64(math.Round(p.Latitude * 1e6)),
		Longitude: int64(math.Round(p.Longitude * 1e6)),
		Time:      p.Time.UnixNano(),
	}
}
