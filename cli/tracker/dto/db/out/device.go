package out

import "gorm.io/datatypes"

type Device struct {
	ID          int32          `json:"id"`
	Number      string         `json:"number"`
	Description *string        `json:"description,omitempty"`
	IMEI        *string        `json:"imei,omitempty" gorm:"column:imei"`
	Info        datatypes.JSON `json:"-" gorm:"column:info"`
}

// DeviceLiveLocation связывает устройство с разобранным документом состояния.
// Live равен nil, если в документе нет текущего местоположения.
type DeviceLiveLocation struct {
	Device Device
	Live   *LiveRecord
}
