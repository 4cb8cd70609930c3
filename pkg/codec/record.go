package codec

import "time"

// Text field capacities, terminator included.
const (
	DtISOCap              = 64
	CityNameCap           = 100
	WeatherMainCap        = 50
	WeatherDescriptionCap = 100
	WeatherIconCap        = 10
)

// RecordSize is the encoded size of a DataEntry.
const RecordSize = 8 + // Dt
	DtISOCap +
	4 + // Timezone
	CityNameCap +
	8 + 8 + // Lat, Lon
	8 + // Temp
	4 + // Visibility
	8 + 8 + 8 + 8 + // DewPoint, FeelsLike, TempMin, TempMax
	4 + 4 + 4 + 4 + // Pressure, SeaLevel, GroundLevel, Humidity
	8 + 4 + 8 + // WindSpeed, WindDeg, WindGust
	8 + 8 + 8 + 8 + // Rain1h, Rain3h, Snow1h, Snow3h
	4 + 4 + // Clouds, WeatherID
	WeatherMainCap +
	WeatherDescriptionCap +
	WeatherIconCap

// DataEntry is a single weather observation. Field order matches the
// on-disk order.
type DataEntry struct {
	Dt                 int64   `json:"dt"`
	DtISO              string  `json:"dt_iso"`
	Timezone           int32   `json:"timezone"`
	CityName           string  `json:"city_name"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	Temp               float64 `json:"temp"`
	Visibility         int32   `json:"visibility"`
	DewPoint           float64 `json:"dew_point"`
	FeelsLike          float64 `json:"feels_like"`
	TempMin            float64 `json:"temp_min"`
	TempMax            float64 `json:"temp_max"`
	Pressure           int32   `json:"pressure"`
	SeaLevel           int32   `json:"sea_level"`
	GroundLevel        int32   `json:"grnd_level"`
	Humidity           int32   `json:"humidity"`
	WindSpeed          float64 `json:"wind_speed"`
	WindDeg            int32   `json:"wind_deg"`
	WindGust           float64 `json:"wind_gust"`
	Rain1h             float64 `json:"rain_1h"`
	Rain3h             float64 `json:"rain_3h"`
	Snow1h             float64 `json:"snow_1h"`
	Snow3h             float64 `json:"snow_3h"`
	Clouds             int32   `json:"clouds_all"`
	WeatherID          int32   `json:"weather_id"`
	WeatherMain        string  `json:"weather_main"`
	WeatherDescription string  `json:"weather_description"`
	WeatherIcon        string  `json:"weather_icon"`
}

// Time returns Dt as a UTC time.
func (e *DataEntry) Time() time.Time {
	return time.Unix(e.Dt, 0).UTC()
}

// Normalize truncates every text field to what the codec will store.
func (e *DataEntry) Normalize() {
	e.DtISO = TruncateText(e.DtISO, DtISOCap)
	e.CityName = TruncateText(e.CityName, CityNameCap)
	e.WeatherMain = TruncateText(e.WeatherMain, WeatherMainCap)
	e.WeatherDescription = TruncateText(e.WeatherDescription, WeatherDescriptionCap)
	e.WeatherIcon = TruncateText(e.WeatherIcon, WeatherIconCap)
}
