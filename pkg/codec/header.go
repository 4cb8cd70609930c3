package codec

import "time"

const (
	// Magic identifies a wbin archive.
	Magic = "WBIN"
	// CurrentVersion is the newest format version this package writes and reads.
	CurrentVersion uint32 = 1

	// LocationCap is the capacity of the header location field, terminator included.
	LocationCap = 50

	// HeaderSize is the encoded size of a Header.
	HeaderSize = 4 + 4 + 8 + 4 + LocationCap + 4 + 4
	// RecordCountOffset is the byte offset of RecordCount within the header.
	RecordCountOffset = 4 + 4 + 8
)

// Header describes an archive. It is stored once at offset 0.
type Header struct {
	Magic       [4]byte
	Version     uint32
	CreatedAt   int64 // Unix seconds
	RecordCount uint32
	Location    string
	Latitude    float32
	Longitude   float32
}

// NewHeader creates an empty-archive header stamped with the current time.
func NewHeader(location string, lat, lon float32) *Header {
	h := &Header{
		Version:   CurrentVersion,
		CreatedAt: time.Now().Unix(),
		Location:  location,
		Latitude:  lat,
		Longitude: lon,
	}
	copy(h.Magic[:], Magic)
	return h
}

// Created returns CreatedAt as a time.
func (h *Header) Created() time.Time {
	return time.Unix(h.CreatedAt, 0)
}

// DataSize returns the number of record bytes the header declares.
func (h *Header) DataSize() int64 {
	return int64(h.RecordCount) * RecordSize
}

// ExpectedFileSize returns the smallest file size consistent with the header.
func (h *Header) ExpectedFileSize() int64 {
	return HeaderSize + h.DataSize()
}

// RecordOffset returns the file offset of record i.
func RecordOffset(i uint32) int64 {
	return HeaderSize + int64(i)*RecordSize
}
