package insert

import "time"

// Snapshot вставляется, только если у устройства нет записи истории
// в интервале [RecordedAt - MinSpacing, RecordedAt].
type Snapshot struct {
	DeviceID   int32
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
	Source     string
	MinSpacing time.Duration
}
