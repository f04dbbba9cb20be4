// Package locmsg извлекает пару координат из текста сообщения журнала устройства.
package locmsg

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const number = `(-?\d+(?:\.\d+)?)`

type pattern struct {
	re      *regexp.Regexp
	swapped bool
}

// Порядок важен: сначала широта перед долготой, затем обратный порядок полей.
var patterns = []pattern{
	{re: regexp.MustCompile(`(?i)lat(?:itude)?\s*[:=]\s*` + number + `\s*,?\s*lon(?:gitude)?\s*[:=]\s*` + number)},
	{re: regexp.MustCompile(`(?i)lon(?:gitude)?\s*[:=]\s*` + number + `\s*,?\s*lat(?:itude)?\s*[:=]\s*` + number), swapped: true},
}

var (
	latitudeKeys  = []string{"lat", "latitude"}
	longitudeKeys = []string{"lon", "lng", "longitude"}
)

// Extract возвращает широту и долготу, найденные в сообщении.
// Сначала сообщение разбирается как JSON-объект, затем проверяются текстовые шаблоны.
// Если пару получить не удалось, ok равен false.
func Extract(message string) (lat, lon float64, ok bool) {
	if lat, lon, ok = fromJSON(message); ok {
		return lat, lon, true
	}
	return fromText(message)
}

func fromJSON(message string) (float64, float64, bool) {
	trimmed := strings.TrimSpace(message)
	if !strings.HasPrefix(trimmed, "{") {
		return 0, 0, false
	}

	var doc map[string]interface{}
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return 0, 0, false
	}

	return FromMap(doc)
}

func fromText(message string) (float64, float64, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}

		first, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		second, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}

		if p.swapped {
			return second, first, true
		}
		return first, second, true
	}

	return 0, 0, false
}

// FromMap берёт координаты из объекта по первому присутствующему ключу:
// lat, затем latitude; lon, затем lng, затем longitude.
// Присутствующий, но нечисловой ключ не заменяется следующим.
func FromMap(doc map[string]interface{}) (lat, lon float64, ok bool) {
	rawLat, found := firstPresent(doc, latitudeKeys)
	if !found {
		return 0, 0, false
	}
	rawLon, found := firstPresent(doc, longitudeKeys)
	if !found {
		return 0, 0, false
	}

	if lat, ok = ToFloat(rawLat); !ok {
		return 0, 0, false
	}
	if lon, ok = ToFloat(rawLon); !ok {
		return 0, 0, false
	}

	return lat, lon, true
}

func firstPresent(doc map[string]interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if value, ok := doc[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// ToFloat приводит число или числовую строку из JSON к float64.
// Логические значения, null и нечисловые строки не приводятся.
func ToFloat(value interface{}) (float64, bool) {
	var f float64

	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
