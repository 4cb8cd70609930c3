package store

import (
	"errors"
	"fmt"

	"github.com/ssargent/wbin/pkg/codec"
)

const defaultBufferSize = 64 * 1024

// WriterConfig holds configuration for an archive writer
type WriterConfig struct {
	BufferSize     int  // Write buffer size (0 = 64KB)
	SyncOnFinalize bool // Fsync after the record count is rewritten
}

// Predicate selects entries during a scan.
type Predicate func(e *codec.DataEntry) bool

// EntryIterator provides streaming access to archive entries
type EntryIterator interface {
	Next() bool
	Entry() *codec.DataEntry
	// Index is the position of the current entry in the archive.
	Index() uint32
	Err() error
	Close() error
}

// Errors
var (
	ErrClosed          = errors.New("archive is closed")
	ErrIndexOutOfRange = errors.New("record index out of range")
	ErrArchiveFull     = errors.New("archive holds the maximum number of records")
)

// IOError wraps a failure at the OS boundary.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// TruncatedFileError reports an archive holding fewer complete records than its header declares.
type TruncatedFileError struct {
	Path     string
	Declared uint32
	Present  uint32
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("%s: header declares %d records but only %d are present", e.Path, e.Declared, e.Present)
}

// presentRecords returns how many complete records fit in a file of the given size.
func presentRecords(size int64) uint32 {
	if size <= codec.HeaderSize {
		return 0
	}
	n := (size - codec.HeaderSize) / codec.RecordSize
	if n > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n)
}
