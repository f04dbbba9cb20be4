package domain

import (
	"testing"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	"github.com/stretchr/testify/assert"
)

func TestLogPoints(t *testing.T) {
	records := []out.LogRecord{
		{DeviceID: 1, CreateTime: 1700000000000, Message: "GPS location update: lat=55.75, lon=37.61"},
		{DeviceID: 1, CreateTime: 1700000060000, Message: "Network location update {broken"},
		{DeviceID: 1, CreateTime: 1700000120000, Message: `{"lat": 55.76, "lng": 37.62, "src": "network"}`},
		{DeviceID: 1, CreateTime: 1700000180000, Message: "location update lat=0 lon=0"},
		{DeviceID: 1, CreateTime: 1700000240000, Message: "location update lat=1.5 lon=2.5"},
	}

	points := LogPoints(records)

	if assert.Len(t, points, 3) {
		assert.Equal(t, types.LocationPoint{
			Latitude:  55.75,
			Longitude: 37.61,
			Time:      time.UnixMilli(1700000000000).UTC(),
			Kind:      types.KindLog,
			Provider:  types.ProviderGPS,
		}, points[0])
		assert.Equal(t, types.ProviderNetwork, points[1].Provider)
		assert.Equal(t, types.ProviderLog, points[2].Provider)
		assert.Equal(t, time.UTC, points[2].Time.Location())
	}
}

func TestHistoryPoints(t *testing.T) {
	at := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	records := []out.HistoryRecord{
		{DeviceID: 2, Latitude: float64Ptr(1), Longitude: float64Ptr(2), RecordedAt: at, Source: stringPtr("snapshot")},
		{DeviceID: 2, Latitude: float64Ptr(3), Longitude: float64Ptr(4), RecordedAt: at.Add(time.Minute)},
		{DeviceID: 2, Latitude: float64Ptr(5), Longitude: float64Ptr(6), RecordedAt: at.Add(2 * time.Minute), Source: stringPtr("")},
		{DeviceID: 2, Latitude: nil, Longitude: float64Ptr(6), RecordedAt: at.Add(3 * time.Minute)},
		{DeviceID: 2, Latitude: float64Ptr(0), Longitude: float64Ptr(0), RecordedAt: at.Add(4 * time.Minute)},
	}

	points := HistoryPoints(records)

	if assert.Len(t, points, 3) {
		assert.Equal(t, "snapshot", points[0].Provider)
		assert.Equal(t, types.ProviderHistory, points[1].Provider)
		assert.Equal(t, types.ProviderHistory, points[2].Provider)
		for _, p := range points {
			assert.Equal(t, types.KindHistory, p.Kind)
		}
	}
}

func TestLivePoint(t *testing.T) {
	observedAt := fixedNow

	tests := []struct {
		name   string
		record *out.LiveRecord
		ok     bool
		at     time.Time
	}{
		{name: "nil record", record: nil},
		{name: "missing latitude", record: &out.LiveRecord{Longitude: float64Ptr(1)}},
		{name: "zero pair", record: &out.LiveRecord{Latitude: float64Ptr(0), Longitude: float64Ptr(0)}},
		{
			name:   "with timestamp",
			record: &out.LiveRecord{Latitude: float64Ptr(1), Longitude: float64Ptr(2), TimestampMs: int64Ptr(1718445600000)},
			ok:     true,
			at:     time.UnixMilli(1718445600000).UTC(),
		},
		{
			name:   "without timestamp",
			record: &out.LiveRecord{Latitude: float64Ptr(1), Longitude: float64Ptr(2)},
			ok:     true,
			at:     observedAt,
		},
		{
			name:   "zero timestamp",
			record: &out.LiveRecord{Latitude: float64Ptr(1), Longitude: float64Ptr(2), TimestampMs: int64Ptr(0)},
			ok:     true,
			at:     observedAt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := LivePoint(tt.record, observedAt)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.at.Equal(p.Time))
				assert.Equal(t, types.KindCurrent, p.Kind)
				assert.Equal(t, types.ProviderCurrent, p.Provider)
			}
		})
	}
}
