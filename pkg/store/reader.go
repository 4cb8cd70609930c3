package store

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/ssargent/wbin/pkg/codec"
)

// Reader provides read access to a finalized archive. The header's record
// count decides how many records are read; bytes past that are ignored.
type Reader struct {
	file   *os.File
	codec  *codec.Codec
	header *codec.Header
	path   string
}

// OpenRead opens an archive and decodes its header. Records are not read
// until ReadAll, Scan or ReadAt is called.
func OpenRead(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	header, err := readHeader(file, path)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Reader{
		file:   file,
		codec:  codec.NewCodec(),
		header: header,
		path:   path,
	}, nil
}

// Header returns the decoded archive header.
func (r *Reader) Header() codec.Header {
	return *r.header
}

// Path returns the file path
func (r *Reader) Path() string {
	return r.path
}

// ReadAll returns an iterator over every record the header declares, in
// file order. Each call starts again from the first record.
func (r *Reader) ReadAll() (EntryIterator, error) {
	return r.Scan(nil)
}

// Scan returns an iterator over the records matching pred. A nil pred
// matches everything. Only one record is held in memory at a time.
func (r *Reader) Scan(pred Predicate) (EntryIterator, error) {
	if r.file == nil {
		return nil, ErrClosed
	}

	stat, err := r.file.Stat()
	if err != nil {
		return nil, &IOError{Op: "stat", Path: r.path, Err: err}
	}
	if stat.Size() < r.header.ExpectedFileSize() {
		return nil, &TruncatedFileError{
			Path:     r.path,
			Declared: r.header.RecordCount,
			Present:  presentRecords(stat.Size()),
		}
	}

	section := io.NewSectionReader(r.file, codec.HeaderSize, r.header.DataSize())
	return &entryIterator{
		src:      bufio.NewReaderSize(section, 16*codec.RecordSize),
		codec:    r.codec,
		pred:     pred,
		declared: r.header.RecordCount,
		buf:      make([]byte, codec.RecordSize),
		path:     r.path,
	}, nil
}

// ReadAt reads record i directly from its computed offset.
func (r *Reader) ReadAt(i uint32) (*codec.DataEntry, error) {
	if r.file == nil {
		return nil, ErrClosed
	}
	if i >= r.header.RecordCount {
		return nil, ErrIndexOutOfRange
	}

	buf := make([]byte, codec.RecordSize)
	if _, err := r.file.ReadAt(buf, codec.RecordOffset(i)); err != nil {
		if errors.Is(err, io.EOF) {
			stat, statErr := r.file.Stat()
			present := uint32(0)
			if statErr == nil {
				present = presentRecords(stat.Size())
			}
			return nil, &TruncatedFileError{Path: r.path, Declared: r.header.RecordCount, Present: present}
		}
		return nil, &IOError{Op: "read", Path: r.path, Err: err}
	}

	return r.codec.DecodeRecord(buf)
}

// Close closes the reader
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	if err != nil {
		return &IOError{Op: "close", Path: r.path, Err: err}
	}
	return nil
}

// entryIterator implements EntryIterator over a section of the archive
type entryIterator struct {
	src      *bufio.Reader
	codec    *codec.Codec
	pred     Predicate
	declared uint32
	read     uint32
	buf      []byte
	entry    *codec.DataEntry
	index    uint32
	err      error
	path     string
}

func (it *entryIterator) Next() bool {
	if it.err != nil {
		return false
	}

	for it.read < it.declared {
		if _, err := io.ReadFull(it.src, it.buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				it.err = &TruncatedFileError{Path: it.path, Declared: it.declared, Present: it.read}
			} else {
				it.err = &IOError{Op: "read", Path: it.path, Err: err}
			}
			it.entry = nil
			return false
		}

		entry := &codec.DataEntry{}
		if err := it.codec.DecodeRecordInto(entry, it.buf); err != nil {
			it.err = err
			it.entry = nil
			return false
		}

		it.index = it.read
		it.read++
		if it.pred == nil || it.pred(entry) {
			it.entry = entry
			return true
		}
	}

	it.entry = nil
	return false
}

func (it *entryIterator) Entry() *codec.DataEntry {
	return it.entry
}

func (it *entryIterator) Index() uint32 {
	return it.index
}

func (it *entryIterator) Err() error {
	return it.err
}

func (it *entryIterator) Close() error {
	// The file belongs to the Reader
	it.entry = nil
	it.read = it.declared
	return nil
}

// Collect drains an iterator into a slice and closes it.
func Collect(it EntryIterator) ([]*codec.DataEntry, error) {
	defer it.Close()

	var entries []*codec.DataEntry
	for it.Next() {
		entries = append(entries, it.Entry())
	}
	return entries, it.Err()
}
