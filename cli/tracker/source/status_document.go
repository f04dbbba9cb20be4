package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	"github.com/daniil11ru/mdmtrack/libs/locmsg"
)

const locationField = "location"

// ParseLiveRecord разбирает документ состояния устройства (devices.info).
// Пустой документ или документ без объекта location даёт nil без ошибки.
// Координаты заполняются только парой; время ts задаётся в миллисекундах,
// нулевое или отсутствующее значение означает момент наблюдения.
func ParseLiveRecord(deviceID int32, info []byte) (*out.LiveRecord, error) {
	if len(bytes.TrimSpace(info)) == 0 {
		return nil, nil
	}

	var doc map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(info))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w %d: %v", types.ErrMalformedStatusDocument, deviceID, err)
	}
	if doc == nil {
		return nil, nil
	}

	location, ok := doc[locationField].(map[string]interface{})
	if !ok {
		return nil, nil
	}

	record := &out.LiveRecord{DeviceID: deviceID, Extra: map[string]interface{}{}}
	for key, value := range doc {
		if key != locationField {
			record.Extra[key] = value
		}
	}

	if lat, lon, ok := locmsg.FromMap(location); ok {
		record.Latitude = &lat
		record.Longitude = &lon
	}

	if ts, ok := locmsg.ToFloat(location["ts"]); ok && ts > 0 && ts < math.MaxInt64 {
		ms := int64(ts)
		record.TimestampMs = &ms
	}

	return record, nil
}
