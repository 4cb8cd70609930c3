package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/wbin/pkg/catalog"
	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/integrity"
	"github.com/ssargent/wbin/pkg/log"
	"github.com/ssargent/wbin/pkg/query"
	"github.com/ssargent/wbin/pkg/store"
)

const (
	defaultRecordLimit = 1000
	maxRecordLimit     = 10000
)

// Server holds the API server state
type Server struct {
	catalog ArchiveCatalog
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(catalog ArchiveCatalog, config ServerConfig, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		catalog: catalog,
		config:  config,
		metrics: metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	archives, err := s.catalog.List()
	s.metrics.RecordArchiveOperation("list", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list archives: %v", err), http.StatusInternalServerError)
		return
	}
	if archives == nil {
		archives = []*catalog.Archive{}
	}
	s.metrics.SetArchivesRegistered(len(archives))
	sendSuccess(w, archives)
}

func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	archive, ok := s.lookupArchive(w, r)
	if !ok {
		return
	}
	sendSuccess(w, archive)
}

// handleListRecords streams matching records out of an archive. Supported
// parameters: start, end (inclusive timestamps), main (weather category),
// field/op/value (a single field condition) and limit.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	archive, ok := s.lookupArchive(w, r)
	if !ok {
		return
	}

	pred, err := predicateFromRequest(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := defaultRecordLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		if limit > maxRecordLimit {
			limit = maxRecordLimit
		}
	}

	start := time.Now()
	records, more, err := s.scanArchive(r.Context(), archive.Path, pred, limit)
	s.metrics.RecordArchiveOperation("scan", err == nil, time.Since(start))
	if err != nil {
		log.Warnw("archive scan failed", "archive_id", archive.ID, "path", archive.Path, "error", err)
		sendError(w, fmt.Sprintf("Failed to read archive: %v", err), statusForArchiveError(err))
		return
	}

	s.metrics.RecordRecordsReturned(len(records))
	sendSuccess(w, RecordsResponse{
		ArchiveID: archive.ID,
		Count:     len(records),
		Limit:     limit,
		More:      more,
		Records:   records,
	})
}

func (s *Server) handleVerifyArchive(w http.ResponseWriter, r *http.Request) {
	archive, ok := s.lookupArchive(w, r)
	if !ok {
		return
	}

	start := time.Now()
	checker := &integrity.Checker{Strict: s.config.StrictIntegrity}
	report, verr := checker.Verify(archive.Path)
	s.metrics.RecordArchiveOperation("verify", true, time.Since(start))

	resp := newVerifyResponse(archive.ID, report, verr)
	outcome := "ok"
	if !resp.OK {
		outcome = resp.Reason
	}
	s.metrics.RecordVerification(outcome)

	if _, err := s.catalog.RecordVerification(archive.ID, catalog.Verification{
		At:            time.Now().UTC(),
		OK:            resp.OK,
		Reason:        resp.Reason,
		Detail:        resp.Detail,
		TrailingBytes: resp.TrailingBytes,
	}); err != nil {
		sendError(w, fmt.Sprintf("Failed to record verification: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, resp)
}

func (s *Server) lookupArchive(w http.ResponseWriter, r *http.Request) (*catalog.Archive, bool) {
	id := chi.URLParam(r, "id")
	start := time.Now()
	archive, err := s.catalog.Get(id)
	s.metrics.RecordArchiveOperation("get", err == nil, time.Since(start))

	switch {
	case err == nil:
		return archive, true
	case errors.Is(err, catalog.ErrInvalidID):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrNotFound):
		sendError(w, "Archive not found", http.StatusNotFound)
	default:
		sendError(w, fmt.Sprintf("Failed to get archive: %v", err), http.StatusInternalServerError)
	}
	return nil, false
}

func (s *Server) scanArchive(ctx context.Context, path string, pred store.Predicate, limit int) ([]*codec.DataEntry, bool, error) {
	reader, err := store.OpenRead(path)
	if err != nil {
		return nil, false, err
	}
	defer reader.Close()

	it, err := query.NewEngine(reader).Search(ctx, pred)
	if err != nil {
		return nil, false, err
	}
	defer it.Close()

	records := make([]*codec.DataEntry, 0)
	for it.Next() {
		if len(records) == limit {
			return records, true, nil
		}
		records = append(records, it.Entry())
	}
	if err := it.Err(); err != nil {
		return nil, false, err
	}
	return records, false, nil
}

func predicateFromRequest(r *http.Request) (store.Predicate, error) {
	params := r.URL.Query()
	filter := query.Filter{
		Start: params.Get("start"),
		End:   params.Get("end"),
		Main:  params.Get("main"),
	}

	if field := params.Get("field"); field != "" {
		fq := query.FieldQuery{Field: field, Operator: params.Get("op"), Value: params.Get("value")}
		if fq.Operator == "" {
			fq.Operator = "="
		}
		filter.Fields = append(filter.Fields, fq)
	}

	return query.BuildPredicate(filter)
}

func statusForArchiveError(err error) int {
	var (
		truncated *store.TruncatedFileError
		format    *codec.FormatError
		version   *codec.VersionError
	)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &truncated), errors.As(err, &format), errors.As(err, &version):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// startMetricsUpdater refreshes catalog gauges until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			archives, err := s.catalog.List()
			if err != nil {
				log.Warnw("failed to refresh catalog metrics", "error", err)
				continue
			}
			s.metrics.SetArchivesRegistered(len(archives))
		}
	}
}
