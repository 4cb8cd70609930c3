// Package query builds entry predicates and runs them over an archive.
package query

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/store"
)

// TimestampLayout is the date format accepted on the command line and API.
const TimestampLayout = "2006-01-02 15:04:05"

// FieldExtractor resolves a named field of an entry.
type FieldExtractor interface {
	Extract(e *codec.DataEntry, field string) (interface{}, error)
}

// EntryFieldExtractor resolves fields by their CSV/JSON column names.
// Numeric fields come back as float64, text fields as string.
type EntryFieldExtractor struct{}

var fieldAccessors = map[string]func(e *codec.DataEntry) interface{}{
	"dt":                  func(e *codec.DataEntry) interface{} { return float64(e.Dt) },
	"dt_iso":              func(e *codec.DataEntry) interface{} { return e.DtISO },
	"timezone":            func(e *codec.DataEntry) interface{} { return float64(e.Timezone) },
	"city_name":           func(e *codec.DataEntry) interface{} { return e.CityName },
	"lat":                 func(e *codec.DataEntry) interface{} { return e.Lat },
	"lon":                 func(e *codec.DataEntry) interface{} { return e.Lon },
	"temp":                func(e *codec.DataEntry) interface{} { return e.Temp },
	"visibility":          func(e *codec.DataEntry) interface{} { return float64(e.Visibility) },
	"dew_point":           func(e *codec.DataEntry) interface{} { return e.DewPoint },
	"feels_like":          func(e *codec.DataEntry) interface{} { return e.FeelsLike },
	"temp_min":            func(e *codec.DataEntry) interface{} { return e.TempMin },
	"temp_max":            func(e *codec.DataEntry) interface{} { return e.TempMax },
	"pressure":            func(e *codec.DataEntry) interface{} { return float64(e.Pressure) },
	"sea_level":           func(e *codec.DataEntry) interface{} { return float64(e.SeaLevel) },
	"grnd_level":          func(e *codec.DataEntry) interface{} { return float64(e.GroundLevel) },
	"humidity":            func(e *codec.DataEntry) interface{} { return float64(e.Humidity) },
	"wind_speed":          func(e *codec.DataEntry) interface{} { return e.WindSpeed },
	"wind_deg":            func(e *codec.DataEntry) interface{} { return float64(e.WindDeg) },
	"wind_gust":           func(e *codec.DataEntry) interface{} { return e.WindGust },
	"rain_1h":             func(e *codec.DataEntry) interface{} { return e.Rain1h },
	"rain_3h":             func(e *codec.DataEntry) interface{} { return e.Rain3h },
	"snow_1h":             func(e *codec.DataEntry) interface{} { return e.Snow1h },
	"snow_3h":             func(e *codec.DataEntry) interface{} { return e.Snow3h },
	"clouds_all":          func(e *codec.DataEntry) interface{} { return float64(e.Clouds) },
	"weather_id":          func(e *codec.DataEntry) interface{} { return float64(e.WeatherID) },
	"weather_main":        func(e *codec.DataEntry) interface{} { return e.WeatherMain },
	"weather_description": func(e *codec.DataEntry) interface{} { return e.WeatherDescription },
	"weather_icon":        func(e *codec.DataEntry) interface{} { return e.WeatherIcon },
}

// Extract implements FieldExtractor.
func (x *EntryFieldExtractor) Extract(e *codec.DataEntry, field string) (interface{}, error) {
	if e == nil {
		return nil, fmt.Errorf("nil entry")
	}
	get, ok := fieldAccessors[field]
	if !ok {
		return nil, fmt.Errorf("unknown field '%s'", field)
	}
	return get(e), nil
}

// FieldQuery represents a single field-based query condition
type FieldQuery struct {
	Field    string      // Field name to query (e.g., "temp", "weather_main")
	Operator string      // Comparison operator: "=", "!=", ">", "<", ">=", "<="
	Value    interface{} // Value to compare against
}

var validOps = map[string]bool{
	"=": true, "!=": true, ">": true, "<": true, ">=": true, "<=": true,
}

// Validate checks if the query is properly formed
func (q *FieldQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if q.Operator == "" {
		return fmt.Errorf("operator cannot be empty")
	}
	if !validOps[q.Operator] {
		return fmt.Errorf("invalid operator: %s", q.Operator)
	}
	if _, ok := fieldAccessors[q.Field]; !ok {
		return fmt.Errorf("unknown field: %s", q.Field)
	}
	return nil
}

// Predicate compiles the query into a store predicate. Numeric fields
// compare numerically; text fields compare lexically.
func (q *FieldQuery) Predicate(extractor FieldExtractor) (store.Predicate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if extractor == nil {
		extractor = &EntryFieldExtractor{}
	}

	probe, err := extractor.Extract(&codec.DataEntry{}, q.Field)
	if err != nil {
		return nil, err
	}

	switch probe.(type) {
	case float64:
		want, err := toFloat(q.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", q.Field, err)
		}
		op, field := q.Operator, q.Field
		return func(e *codec.DataEntry) bool {
			v, err := extractor.Extract(e, field)
			if err != nil {
				return false
			}
			got, _ := v.(float64)
			return compareFloat(got, want, op)
		}, nil
	default:
		want := fmt.Sprint(q.Value)
		op, field := q.Operator, q.Field
		return func(e *codec.DataEntry) bool {
			v, err := extractor.Extract(e, field)
			if err != nil {
				return false
			}
			got, _ := v.(string)
			return compareString(got, want, op)
		}, nil
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

func compareFloat(got, want float64, op string) bool {
	switch op {
	case "=":
		return got == want
	case "!=":
		return got != want
	case ">":
		return got > want
	case "<":
		return got < want
	case ">=":
		return got >= want
	case "<=":
		return got <= want
	}
	return false
}

func compareString(got, want string, op string) bool {
	switch op {
	case "=":
		return got == want
	case "!=":
		return got != want
	case ">":
		return got > want
	case "<":
		return got < want
	case ">=":
		return got >= want
	case "<=":
		return got <= want
	}
	return false
}

// TimeRange matches entries whose timestamp lies in [start, end].
func TimeRange(start, end time.Time) store.Predicate {
	return dtBetween(start.Unix(), end.Unix())
}

// CategoryEquals matches entries whose weather_main equals main.
func CategoryEquals(main string) store.Predicate {
	return func(e *codec.DataEntry) bool {
		return e.WeatherMain == main
	}
}

// And matches when every predicate matches. Nil predicates are ignored.
func And(preds ...store.Predicate) store.Predicate {
	return func(e *codec.DataEntry) bool {
		for _, p := range preds {
			if p != nil && !p(e) {
				return false
			}
		}
		return true
	}
}

// Or matches when any non-nil predicate matches.
func Or(preds ...store.Predicate) store.Predicate {
	return func(e *codec.DataEntry) bool {
		for _, p := range preds {
			if p != nil && p(e) {
				return true
			}
		}
		return false
	}
}

// Not inverts p. A nil p matches everything, so Not(nil) matches nothing.
func Not(p store.Predicate) store.Predicate {
	return func(e *codec.DataEntry) bool {
		return p != nil && !p(e)
	}
}

// ParseTimestamp parses "YYYY-MM-DD HH:MM:SS" (or a bare date) as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{TimestampLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %s", s, TimestampLayout)
}
