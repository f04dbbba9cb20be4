package out

type LogRecord struct {
	DeviceID   int32  `gorm:"column:deviceid"`
	CreateTime int64  `gorm:"column:createtime"`
	Message    string `gorm:"column:message"`
}
