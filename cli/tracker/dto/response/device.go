package response

type Device struct {
	Number       string `json:"number"`
	Name         string `json:"name"`
	GPSCount     int64  `json:"gps_count"`
	LogCount     int64  `json:"log_count"`
	HistoryCount int64  `json:"history_count"`
}
