package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/ssargent/wbin/pkg/codec"
)

// column binds a CSV column name to the entry field it fills. set reports
// whether the value was well formed; malformed values leave the field zero.
type column struct {
	name string
	set  func(e *codec.DataEntry, v string) bool
}

// columns lists the OpenWeather bulk history export columns in layout order.
// Files without a recognizable header row are read positionally in this order.
var columns = []column{
	{"dt", func(e *codec.DataEntry, v string) bool { return parseInt64(&e.Dt, v) }},
	{"dt_iso", func(e *codec.DataEntry, v string) bool { e.DtISO = v; return true }},
	{"timezone", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.Timezone, v) }},
	{"city_name", func(e *codec.DataEntry, v string) bool { e.CityName = v; return true }},
	{"lat", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.Lat, v) }},
	{"lon", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.Lon, v) }},
	{"temp", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.Temp, v) }},
	{"visibility", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.Visibility, v) }},
	{"dew_point", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.DewPoint, v) }},
	{"feels_like", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.FeelsLike, v) }},
	{"temp_min", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.TempMin, v) }},
	{"temp_max", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.TempMax, v) }},
	{"pressure", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.Pressure, v) }},
	{"sea_level", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.SeaLevel, v) }},
	{"grnd_level", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.GroundLevel, v) }},
	{"humidity", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.Humidity, v) }},
	{"wind_speed", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.WindSpeed, v) }},
	{"wind_deg", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.WindDeg, v) }},
	{"wind_gust", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.WindGust, v) }},
	{"rain_1h", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.Rain1h, v) }},
	{"rain_3h", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.Rain3h, v) }},
	{"snow_1h", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.Snow1h, v) }},
	{"snow_3h", func(e *codec.DataEntry, v string) bool { return parseFloat(&e.Snow3h, v) }},
	{"clouds_all", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.Clouds, v) }},
	{"weather_id", func(e *codec.DataEntry, v string) bool { return parseInt32(&e.WeatherID, v) }},
	{"weather_main", func(e *codec.DataEntry, v string) bool { e.WeatherMain = v; return true }},
	{"weather_description", func(e *codec.DataEntry, v string) bool { e.WeatherDescription = v; return true }},
	{"weather_icon", func(e *codec.DataEntry, v string) bool { e.WeatherIcon = v; return true }},
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c.name] = i
	}
	return m
}()

// An empty value is an absent reading, not a malformed one.
func parseInt64(dst *int64, v string) bool {
	*dst = 0
	if v == "" {
		return true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false
	}
	*dst = n
	return true
}

func parseInt32(dst *int32, v string) bool {
	*dst = 0
	if v == "" {
		return true
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return false
	}
	*dst = int32(n)
	return true
}

func parseFloat(dst *float64, v string) bool {
	*dst = 0
	if v == "" {
		return true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	*dst = f
	return true
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
