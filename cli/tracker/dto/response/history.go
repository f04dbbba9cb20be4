package response

import "github.com/daniil11ru/mdmtrack/cli/tracker/types"

type HistoryDevice struct {
	Number      string  `json:"number"`
	Description *string `json:"description"`
}

type History struct {
	Device      HistoryDevice         `json:"device"`
	History     []types.LocationPoint `json:"history"`
	TotalPoints int                   `json:"total_points"`
}
