package codec

import "fmt"

// Codec converts headers and records to and from their fixed byte layout.
type Codec struct{}

// NewCodec creates a new codec instance
func NewCodec() *Codec {
	return &Codec{}
}

// EncodeHeader serializes a header into HeaderSize bytes.
func (c *Codec) EncodeHeader(h *Header) []byte {
	buf := make([]byte, HeaderSize)
	c.PutHeader(buf, h)
	return buf
}

// PutHeader serializes h into buf, which must hold at least HeaderSize bytes.
func (c *Codec) PutHeader(buf []byte, h *Header) {
	w := fieldWriter{buf: buf[:HeaderSize]}
	w.bytes(h.Magic[:])
	w.uint32(h.Version)
	w.int64(h.CreatedAt)
	w.uint32(h.RecordCount)
	w.text(h.Location, LocationCap)
	w.float32(h.Latitude)
	w.float32(h.Longitude)
}

// DecodeHeader parses a header. It fails with *FormatError when the buffer
// is short or the magic bytes are wrong and with *VersionError when the
// version is unknown.
func (c *Codec) DecodeHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, &FormatError{Msg: "header", Err: ErrShortBuffer}
	}

	h := &Header{}
	r := fieldReader{buf: data[:HeaderSize]}
	r.bytes(h.Magic[:])
	if string(h.Magic[:]) != Magic {
		return nil, &FormatError{Msg: "got " + quoteMagic(h.Magic), Err: ErrBadMagic}
	}

	h.Version = r.uint32()
	if h.Version == 0 || h.Version > CurrentVersion {
		return nil, &VersionError{Version: h.Version, Supported: CurrentVersion}
	}

	h.CreatedAt = r.int64()
	h.RecordCount = r.uint32()
	h.Location = r.text(LocationCap)
	h.Latitude = r.float32()
	h.Longitude = r.float32()

	return h, nil
}

// EncodeRecord serializes an entry into RecordSize bytes.
func (c *Codec) EncodeRecord(e *DataEntry) []byte {
	buf := make([]byte, RecordSize)
	c.PutRecord(buf, e)
	return buf
}

// PutRecord serializes e into buf, which must hold at least RecordSize bytes.
func (c *Codec) PutRecord(buf []byte, e *DataEntry) {
	w := fieldWriter{buf: buf[:RecordSize]}
	w.int64(e.Dt)
	w.text(e.DtISO, DtISOCap)
	w.int32(e.Timezone)
	w.text(e.CityName, CityNameCap)
	w.float64(e.Lat)
	w.float64(e.Lon)
	w.float64(e.Temp)
	w.int32(e.Visibility)
	w.float64(e.DewPoint)
	w.float64(e.FeelsLike)
	w.float64(e.TempMin)
	w.float64(e.TempMax)
	w.int32(e.Pressure)
	w.int32(e.SeaLevel)
	w.int32(e.GroundLevel)
	w.int32(e.Humidity)
	w.float64(e.WindSpeed)
	w.int32(e.WindDeg)
	w.float64(e.WindGust)
	w.float64(e.Rain1h)
	w.float64(e.Rain3h)
	w.float64(e.Snow1h)
	w.float64(e.Snow3h)
	w.int32(e.Clouds)
	w.int32(e.WeatherID)
	w.text(e.WeatherMain, WeatherMainCap)
	w.text(e.WeatherDescription, WeatherDescriptionCap)
	w.text(e.WeatherIcon, WeatherIconCap)
}

// DecodeRecord deserializes a record.
func (c *Codec) DecodeRecord(data []byte) (*DataEntry, error) {
	e := &DataEntry{}
	if err := c.DecodeRecordInto(e, data); err != nil {
		return nil, err
	}
	return e, nil
}

// DecodeRecordInto deserializes a record into an existing entry.
func (c *Codec) DecodeRecordInto(e *DataEntry, data []byte) error {
	if len(data) < RecordSize {
		return &FormatError{Msg: "record", Err: ErrShortBuffer}
	}

	r := fieldReader{buf: data[:RecordSize]}
	e.Dt = r.int64()
	e.DtISO = r.text(DtISOCap)
	e.Timezone = r.int32()
	e.CityName = r.text(CityNameCap)
	e.Lat = r.float64()
	e.Lon = r.float64()
	e.Temp = r.float64()
	e.Visibility = r.int32()
	e.DewPoint = r.float64()
	e.FeelsLike = r.float64()
	e.TempMin = r.float64()
	e.TempMax = r.float64()
	e.Pressure = r.int32()
	e.SeaLevel = r.int32()
	e.GroundLevel = r.int32()
	e.Humidity = r.int32()
	e.WindSpeed = r.float64()
	e.WindDeg = r.int32()
	e.WindGust = r.float64()
	e.Rain1h = r.float64()
	e.Rain3h = r.float64()
	e.Snow1h = r.float64()
	e.Snow3h = r.float64()
	e.Clouds = r.int32()
	e.WeatherID = r.int32()
	e.WeatherMain = r.text(WeatherMainCap)
	e.WeatherDescription = r.text(WeatherDescriptionCap)
	e.WeatherIcon = r.text(WeatherIconCap)

	return nil
}

func quoteMagic(m [4]byte) string {
	return fmt.Sprintf("%q", m[:])
}
