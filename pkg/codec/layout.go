package codec

import (
	"encoding/binary"
	"math"
)

// fieldWriter packs fields sequentially into a fixed buffer.
type fieldWriter struct {
	buf []byte
	off int
}

func (w *fieldWriter) bytes(b []byte) {
	w.off += copy(w.buf[w.off:], b)
}

func (w *fieldWriter) uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *fieldWriter) int32(v int32) {
	w.uint32(uint32(v))
}

func (w *fieldWriter) int64(v int64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], uint64(v))
	w.off += 8
}

func (w *fieldWriter) float32(v float32) {
	w.uint32(math.Float32bits(v))
}

func (w *fieldWriter) float64(v float64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], math.Float64bits(v))
	w.off += 8
}

func (w *fieldWriter) text(s string, capacity int) {
	PutText(w.buf[w.off:w.off+capacity], s)
	w.off += capacity
}

// fieldReader is the inverse of fieldWriter.
type fieldReader struct {
	buf []byte
	off int
}

func (r *fieldReader) bytes(dst []byte) {
	r.off += copy(dst, r.buf[r.off:])
}

func (r *fieldReader) uint32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *fieldReader) int32() int32 {
	return int32(r.uint32())
}

func (r *fieldReader) int64() int64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return int64(v)
}

func (r *fieldReader) float32() float32 {
	return math.Float32frombits(r.uint32())
}

func (r *fieldReader) float64() float64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return math.Float64frombits(v)
}

func (r *fieldReader) text(capacity int) string {
	s := Text(r.buf[r.off : r.off+capacity])
	r.off += capacity
	return s
}
