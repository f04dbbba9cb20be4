package out

import "time"

type HistoryRecord struct {
	DeviceID   int32     `gorm:"column:device_id"`
	Latitude   *float64  `gorm:"column:lat"`
	Longitude  *float64  `gorm:"column:lon"`
	RecordedAt time.Time `gorm:"column:recorded_at"`
	Source     *string   `gorm:"column:source"`
}
