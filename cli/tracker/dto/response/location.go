package response

import "time"

const (
	UnknownDeviceDescription = "Unknown Device"
	UnknownBattery           = "Unknown"
	StatusActive             = "active"
)

type CurrentLocation struct {
	ID          int32       `json:"id"`
	Number      string      `json:"number"`
	Description string      `json:"description"`
	IMEI        string      `json:"imei"`
	Latitude    float64     `json:"lat"`
	Longitude   float64     `json:"lon"`
	Time        time.Time   `json:"time"`
	Battery     interface{} `json:"battery"`
	Status      string      `json:"status"`
}
