package out

// LiveRecord хранит текущее местоположение из документа состояния устройства.
// TimestampMs равен nil, если время в документе не указано.
type LiveRecord struct {
	DeviceID    int32
	Latitude    *float64
	Longitude   *float64
	TimestampMs *int64
	Extra       map[string]interface{}
}

func (r *LiveRecord) HasCoordinates() bool {
	return r != nil && r.Latitude != nil && r.Longitude != nil
}
