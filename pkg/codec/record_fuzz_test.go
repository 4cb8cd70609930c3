//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"testing"
)

// FuzzCodec_RecordRoundTrip checks that text fields survive encoding up to their capacity
func FuzzCodec_RecordRoundTrip(f *testing.F) {
	codec := NewCodec()

	f.Add(int64(0), "", "", 0.0)
	f.Add(int64(1704067200), "Timisoara", "Rain", -1.5)
	f.Add(int64(-1), "Timișoara", "light intensity drizzle", 1e300)

	f.Fuzz(func(t *testing.T, dt int64, city, main string, temp float64) {
		if temp != temp {
			t.Skip("NaN never compares equal")
		}

		entry := &DataEntry{Dt: dt, CityName: city, WeatherMain: main, Temp: temp}
		encoded := codec.EncodeRecord(entry)
		if len(encoded) != RecordSize {
			t.Fatalf("encoded %d bytes, want %d", len(encoded), RecordSize)
		}

		decoded, err := codec.DecodeRecord(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}

		entry.Normalize()
		if *decoded != *entry {
			t.Errorf("round trip mismatch: got %+v, want %+v", decoded, entry)
		}

		if !bytes.Equal(codec.EncodeRecord(decoded), encoded) {
			t.Error("re-encoding decoded entry changed bytes")
		}
	})
}

// FuzzCodec_DecodeHeader makes sure arbitrary bytes never panic the header decoder
func FuzzCodec_DecodeHeader(f *testing.F) {
	codec := NewCodec()

	f.Add(codec.EncodeHeader(NewHeader("Timisoara", 45.7558, 21.2322)))
	f.Add([]byte("WBIN"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		h, err := codec.DecodeHeader(data)
		if err != nil {
			return
		}
		if string(h.Magic[:]) != Magic {
			t.Fatalf("accepted header with magic %q", h.Magic)
		}
		if h.Version == 0 || h.Version > CurrentVersion {
			t.Fatalf("accepted header with version %d", h.Version)
		}
	})
}
