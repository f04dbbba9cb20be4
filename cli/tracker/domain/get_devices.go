package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/response"
)

const DefaultDevicesRecentDays = 30

type GetDevices struct {
	Repository DeviceSummaryRepository
	RecentDays int
}

func (d *GetDevices) Run(ctx context.Context) ([]response.Device, error) {
	days := d.RecentDays
	if days <= 0 {
		days = DefaultDevicesRecentDays
	}

	summaries, err := d.Repository.GetDeviceSummaries(ctx, now().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, unavailable(err)
	}

	devices := make([]response.Device, 0, len(summaries))
	for _, s := range summaries {
		total := s.LogCount + s.HistoryCount

		name := s.Number
		if s.Description != nil && *s.Description != "" {
			name = *s.Description
		}
		if total > 0 {
			name += fmt.Sprintf(" (%d points: %d history, %d logs)", total, s.HistoryCount, s.LogCount)
		} else {
			name += " (No location points yet)"
		}

		devices = append(devices, response.Device{
			Number:       s.Number,
			Name:         name,
			GPSCount:     total,
			LogCount:     s.LogCount,
			HistoryCount: s.HistoryCount,
		})
	}

	return devices, nil
}
