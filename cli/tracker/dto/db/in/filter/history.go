package filter

import "time"

type History struct {
	DeviceID int32
	Since    time.Time
}
