package filter

import "time"

type DeviceSummaries struct {
	LogPattern   string
	HistorySince time.Time
}
