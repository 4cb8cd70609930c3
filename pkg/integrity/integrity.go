// Package integrity validates wbin archives without modifying them.
//
// Checks run in order and stop at the first failure:
//
//  1. the file opens and a full header can be read
//  2. the magic bytes match
//  3. the version is supported
//  4. the file holds at least HeaderSize + RecordCount*RecordSize bytes
//
// A file that is larger than the header implies is accepted by default and
// the surplus is reported in Report.TrailingBytes. This happens when a run
// appended records but never finalized them, or when a shorter archive was
// written over a longer one. Checker.Strict turns the surplus into a failure.
package integrity

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/log"
)

// Reason identifies which check failed.
type Reason string

const (
	ReasonUnreadable   Reason = "unreadable"
	ReasonBadMagic     Reason = "bad_magic"
	ReasonBadVersion   Reason = "bad_version"
	ReasonTruncated    Reason = "truncated"
	ReasonTrailingData Reason = "trailing_data"
)

// IntegrityError is returned when an archive fails verification.
type IntegrityError struct {
	Path   string
	Reason Reason
	Detail string
	Err    error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s (%s): %s", e.Path, e.Reason, e.Detail)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// Report describes an archive that passed verification.
type Report struct {
	Path          string
	Header        codec.Header
	FileSize      int64
	ExpectedSize  int64
	TrailingBytes int64
}

// UnfinalizedRecords returns how many whole records sit past the declared end.
func (r *Report) UnfinalizedRecords() int64 {
	return r.TrailingBytes / codec.RecordSize
}

// Checker verifies archives.
type Checker struct {
	// Strict rejects files that are larger than the header implies.
	Strict bool
}

// Verify checks path with the default, lenient checker.
func Verify(path string) (*Report, error) {
	return (&Checker{}).Verify(path)
}

// Verify checks the archive at path. The file is opened read-only.
func (c *Checker) Verify(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IntegrityError{Path: path, Reason: ReasonUnreadable, Detail: "cannot open file", Err: err}
	}
	defer file.Close()

	raw := make([]byte, codec.HeaderSize)
	if _, err := io.ReadFull(file, raw); err != nil {
		return nil, &IntegrityError{Path: path, Reason: ReasonUnreadable, Detail: "cannot read header", Err: err}
	}

	header, err := codec.NewCodec().DecodeHeader(raw)
	if err != nil {
		var verr *codec.VersionError
		switch {
		case errors.Is(err, codec.ErrBadMagic):
			return nil, &IntegrityError{Path: path, Reason: ReasonBadMagic, Detail: fmt.Sprintf("expected %q", codec.Magic), Err: err}
		case errors.As(err, &verr):
			return nil, &IntegrityError{Path: path, Reason: ReasonBadVersion, Detail: verr.Error(), Err: err}
		default:
			return nil, &IntegrityError{Path: path, Reason: ReasonUnreadable, Detail: "cannot decode header", Err: err}
		}
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, &IntegrityError{Path: path, Reason: ReasonUnreadable, Detail: "cannot stat file", Err: err}
	}

	report := &Report{
		Path:         path,
		Header:       *header,
		FileSize:     stat.Size(),
		ExpectedSize: header.ExpectedFileSize(),
	}

	if report.FileSize < report.ExpectedSize {
		return nil, &IntegrityError{
			Path:   path,
			Reason: ReasonTruncated,
			Detail: fmt.Sprintf("file size %d is smaller than expected %d", report.FileSize, report.ExpectedSize),
		}
	}

	report.TrailingBytes = report.FileSize - report.ExpectedSize
	if report.TrailingBytes > 0 {
		if c.Strict {
			return nil, &IntegrityError{
				Path:   path,
				Reason: ReasonTrailingData,
				Detail: fmt.Sprintf("file size %d exceeds expected %d", report.FileSize, report.ExpectedSize),
			}
		}
		log.Warnw("archive has trailing bytes",
			"path", path, "trailing_bytes", report.TrailingBytes, "unfinalized_records", report.UnfinalizedRecords())
	}

	log.Debugw("archive verified", "path", path, "records", header.RecordCount, "version", header.Version)
	return report, nil
}
