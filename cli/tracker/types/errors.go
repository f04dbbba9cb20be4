package types

import "errors"

var (
	ErrDeviceNotFound          = errors.New("устройство не найдено")
	ErrUpstreamUnavailable     = errors.New("хранилище недоступно")
	ErrMalformedStatusDocument = errors.New("некорректный документ состояния устройства")
	ErrInvalidWindow           = errors.New("некорректная глубина истории")
)
