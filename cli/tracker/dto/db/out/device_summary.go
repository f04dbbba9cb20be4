package out

type DeviceSummary struct {
	ID           int32   `gorm:"column:id"`
	Number       string  `gorm:"column:number"`
	Description  *string `gorm:"column:description"`
	LogCount     int64   `gorm:"column:log_count"`
	HistoryCount int64   `gorm:"column:history_count"`
}
