package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/log"
)

// Writer appends records to an archive. A Writer is owned by a single
// goroutine; it does no locking of its own.
type Writer struct {
	file   *os.File
	writer *bufio.Writer
	codec  *codec.Codec
	header codec.Header
	count  uint32 // Records appended, finalized or not
	buf    []byte
	config WriterConfig
	path   string
}

// Create truncates or creates the archive at path and writes a placeholder
// header with a record count of zero. A header version newer than
// codec.CurrentVersion is rejected before the file is touched.
func Create(path string, header *codec.Header, config WriterConfig) (*Writer, error) {
	if header.Version > codec.CurrentVersion {
		return nil, &codec.VersionError{Version: header.Version, Supported: codec.CurrentVersion}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, &IOError{Op: "create", Path: path, Err: err}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, &IOError{Op: "create", Path: path, Err: err}
	}

	w := newWriter(file, path, *header, 0, config)
	copy(w.header.Magic[:], codec.Magic)
	if w.header.Version == 0 {
		w.header.Version = codec.CurrentVersion
	}
	w.header.RecordCount = 0

	if _, err := file.WriteAt(w.codec.EncodeHeader(&w.header), 0); err != nil {
		file.Close()
		return nil, &IOError{Op: "write header", Path: path, Err: err}
	}
	if _, err := file.Seek(codec.HeaderSize, io.SeekStart); err != nil {
		file.Close()
		return nil, &IOError{Op: "seek", Path: path, Err: err}
	}

	log.Debugw("created archive", "path", path, "location", w.header.Location)
	return w, nil
}

// OpenAppend reopens a finalized archive so more records can be appended
// after the last one the header accounts for. Bytes past that point are
// overwritten.
func OpenAppend(path string, config WriterConfig) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	header, err := readHeader(file, path)
	if err != nil {
		file.Close()
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if stat.Size() < header.ExpectedFileSize() {
		file.Close()
		return nil, &TruncatedFileError{Path: path, Declared: header.RecordCount, Present: presentRecords(stat.Size())}
	}

	if _, err := file.Seek(codec.RecordOffset(header.RecordCount), io.SeekStart); err != nil {
		file.Close()
		return nil, &IOError{Op: "seek", Path: path, Err: err}
	}

	log.Debugw("reopened archive for append", "path", path, "records", header.RecordCount)
	return newWriter(file, path, *header, header.RecordCount, config), nil
}

func newWriter(file *os.File, path string, header codec.Header, count uint32, config WriterConfig) *Writer {
	size := config.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, size),
		codec:  codec.NewCodec(),
		header: header,
		count:  count,
		buf:    make([]byte, codec.RecordSize),
		config: config,
		path:   path,
	}
}

// Append writes e after the last appended record. The header on disk is
// not touched; call Finalize to make the new records visible to readers.
func (w *Writer) Append(e *codec.DataEntry) error {
	if w.file == nil {
		return ErrClosed
	}
	if w.count == ^uint32(0) {
		return ErrArchiveFull
	}

	w.codec.PutRecord(w.buf, e)
	if _, err := w.writer.Write(w.buf); err != nil {
		return &IOError{Op: "append", Path: w.path, Err: err}
	}

	w.count++
	return nil
}

// Finalize flushes buffered records and rewrites the record count field of
// the header in place.
func (w *Writer) Finalize() error {
	if w.file == nil {
		return ErrClosed
	}

	if err := w.writer.Flush(); err != nil {
		return &IOError{Op: "flush", Path: w.path, Err: err}
	}

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], w.count)
	if _, err := w.file.WriteAt(count[:], codec.RecordCountOffset); err != nil {
		return &IOError{Op: "write record count", Path: w.path, Err: err}
	}

	if w.config.SyncOnFinalize {
		if err := w.file.Sync(); err != nil {
			return &IOError{Op: "sync", Path: w.path, Err: err}
		}
	}

	w.header.RecordCount = w.count
	log.Debugw("finalized archive", "path", w.path, "records", w.count)
	return nil
}

// Count returns the number of records appended so far, including ones not yet finalized.
func (w *Writer) Count() uint32 {
	return w.count
}

// Header returns the header as of the last Finalize.
func (w *Writer) Header() codec.Header {
	return w.header
}

// Path returns the file path
func (w *Writer) Path() string {
	return w.path
}

// Close flushes buffered records and closes the file. It does not finalize:
// records appended since the last Finalize stay invisible to readers.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}

	err := w.writer.Flush()
	if err != nil {
		err = &IOError{Op: "flush", Path: w.path, Err: err}
	}
	if closeErr := w.file.Close(); closeErr != nil {
		err = multierr.Append(err, &IOError{Op: "close", Path: w.path, Err: closeErr})
	}
	w.file = nil

	if w.count != w.header.RecordCount {
		log.Warnw("archive closed with unfinalized records",
			"path", w.path, "finalized", w.header.RecordCount, "appended", w.count)
	}
	return err
}

// readHeader reads and decodes the header at offset 0.
func readHeader(file *os.File, path string) (*codec.Header, error) {
	raw := make([]byte, codec.HeaderSize)
	if _, err := file.ReadAt(raw, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &codec.FormatError{Msg: "header", Err: codec.ErrShortBuffer}
		}
		return nil, &IOError{Op: "read header", Path: path, Err: err}
	}
	return codec.NewCodec().DecodeHeader(raw)
}
