package api

import (
	"errors"

	"github.com/ssargent/wbin/pkg/catalog"
	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/integrity"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port            int
	Bind            string
	APIKey          string
	StrictIntegrity bool
}

// RecordsResponse is returned by the records endpoint.
type RecordsResponse struct {
	ArchiveID string             `json:"archive_id"`
	Count     int                `json:"count"`
	Limit     int                `json:"limit"`
	More      bool               `json:"more"`
	Records   []*codec.DataEntry `json:"records"`
}

// VerifyResponse is returned by the verify endpoint.
type VerifyResponse struct {
	ArchiveID     string `json:"archive_id"`
	OK            bool   `json:"ok"`
	Reason        string `json:"reason,omitempty"`
	Detail        string `json:"detail,omitempty"`
	RecordCount   uint32 `json:"record_count"`
	FileSize      int64  `json:"file_size"`
	ExpectedSize  int64  `json:"expected_size"`
	TrailingBytes int64  `json:"trailing_bytes"`
}

func newVerifyResponse(id string, report *integrity.Report, err error) VerifyResponse {
	resp := VerifyResponse{ArchiveID: id, OK: err == nil}
	if report != nil {
		resp.RecordCount = report.Header.RecordCount
		resp.FileSize = report.FileSize
		resp.ExpectedSize = report.ExpectedSize
		resp.TrailingBytes = report.TrailingBytes
	}
	var ierr *integrity.IntegrityError
	if errors.As(err, &ierr) {
		resp.Reason = string(ierr.Reason)
		resp.Detail = ierr.Detail
	}
	return resp
}

// ArchiveCatalog defines the catalog operations used by the server and CLI
type ArchiveCatalog interface {
	Register(a *catalog.Archive) (*catalog.Archive, error)
	Get(id string) (*catalog.Archive, error)
	List() ([]*catalog.Archive, error)
	FindByPath(path string) (*catalog.Archive, error)
	RecordVerification(id string, v catalog.Verification) (*catalog.Archive, error)
	Delete(id string) error
	Close() error
}
