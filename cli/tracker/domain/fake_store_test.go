package domain

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type historyRow struct {
	deviceID   int32
	lat        float64
	lon        float64
	recordedAt time.Time
	source     string
}

// fakeStore хранит данные в памяти; вставка снимка выполняется под мьютексом.
type fakeStore struct {
	mu sync.Mutex

	devices   []out.Device
	logs      map[int32][]out.LogRecord
	history   []historyRow
	live      map[int32]*out.LiveRecord
	summaries []out.DeviceSummary

	readErr   error
	listErr   error
	liveErr   error
	insertErr map[int32]error

	inserts          int
	lastLogSince     time.Time
	lastHistorySince time.Time
	lastSummarySince time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		logs:      map[int32][]out.LogRecord{},
		live:      map[int32]*out.LiveRecord{},
		insertErr: map[int32]error{},
	}
}

func (s *fakeStore) addDevice(id int32, number string, description *string) {
	s.devices = append(s.devices, out.Device{ID: id, Number: number, Description: description})
}

func (s *fakeStore) setLive(id int32, lat, lon float64, tsMs *int64) {
	s.live[id] = &out.LiveRecord{DeviceID: id, Latitude: &lat, Longitude: &lon, TimestampMs: tsMs, Extra: map[string]interface{}{}}
}

func (s *fakeStore) rows(deviceID int32) []historyRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []historyRow
	for _, r := range s.history {
		if r.deviceID == deviceID {
			rows = append(rows, r)
		}
	}
	return rows
}

func (s *fakeStore) GetDeviceByNumber(ctx context.Context, number string) (out.Device, error) {
	if s.readErr != nil {
		return out.Device{}, s.readErr
	}
	for _, d := range s.devices {
		if d.Number == number {
			return d, nil
		}
	}
	return out.Device{}, types.ErrDeviceNotFound
}

func (s *fakeStore) GetLocationLogs(ctx context.Context, deviceID int32, since time.Time) ([]out.LogRecord, error) {
	s.lastLogSince = since
	if s.readErr != nil {
		return nil, s.readErr
	}

	var records []out.LogRecord
	for _, r := range s.logs[deviceID] {
		if r.CreateTime > since.UnixMilli() {
			records = append(records, r)
		}
	}
	return records, nil
}

func (s *fakeStore) GetHistorySince(ctx context.Context, deviceID int32, since time.Time) ([]out.HistoryRecord, error) {
	s.lastHistorySince = since
	if s.readErr != nil {
		return nil, s.readErr
	}

	var records []out.HistoryRecord
	for _, r := range s.rows(deviceID) {
		if r.recordedAt.Before(since) {
			continue
		}
		lat, lon, source := r.lat, r.lon, r.source
		records = append(records, out.HistoryRecord{DeviceID: deviceID, Latitude: &lat, Longitude: &lon, RecordedAt: r.recordedAt, Source: &source})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].RecordedAt.Before(records[j].RecordedAt) })
	return records, nil
}

func (s *fakeStore) GetLiveLocation(ctx context.Context, deviceID int32) (*out.LiveRecord, error) {
	if s.liveErr != nil {
		return nil, s.liveErr
	}
	return s.live[deviceID], nil
}

func (s *fakeStore) GetAllLiveLocations(ctx context.Context) ([]out.DeviceLiveLocation, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	result := make([]out.DeviceLiveLocation, 0, len(s.devices))
	for _, d := range s.devices {
		result = append(result, out.DeviceLiveLocation{Device: d, Live: s.live[d.ID]})
	}
	return result, nil
}

func (s *fakeStore) AddSnapshotIfAbsent(ctx context.Context, snapshot insert.Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertErr[snapshot.DeviceID]; err != nil {
		return false, err
	}

	from := snapshot.RecordedAt.Add(-snapshot.MinSpacing)
	for _, r := range s.history {
		if r.deviceID != snapshot.DeviceID {
			continue
		}
		if !r.recordedAt.Before(from) && !r.recordedAt.After(snapshot.RecordedAt) {
			return false, nil
		}
	}

	s.history = append(s.history, historyRow{
		deviceID:   snapshot.DeviceID,
		lat:        snapshot.Latitude,
		lon:        snapshot.Longitude,
		recordedAt: snapshot.RecordedAt,
		source:     snapshot.Source,
	})
	s.inserts++
	return true, nil
}

func (s *fakeStore) GetDeviceSummaries(ctx context.Context, historySince time.Time) ([]out.DeviceSummary, error) {
	s.lastSummarySince = historySince
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.summaries, nil
}

func (s *fakeStore) Ping(ctx context.Context) error {
	return s.readErr
}

func stringPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }
