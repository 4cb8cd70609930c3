// Package ingest turns weather CSV exports into archive entries.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/log"
	"github.com/ssargent/wbin/pkg/store"
)

// Stats summarizes a CSV read.
type Stats struct {
	Rows            int `json:"rows"`
	MalformedFields int `json:"malformed_fields"`
	TruncatedFields int `json:"truncated_fields"`
}

// Reader yields one entry per data row of a CSV file. The first row is
// always treated as a header. When it names known columns they are matched
// by name, otherwise columns are taken positionally.
type Reader struct {
	csv     *csv.Reader
	mapping []int // CSV column -> index into columns, -1 to skip
	started bool
	stats   Stats
}

// NewReader creates a CSV reader over r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

// Next returns the next entry, or io.EOF after the last row.
func (r *Reader) Next() (*codec.DataEntry, error) {
	if !r.started {
		header, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read csv header: %w", err)
		}
		r.mapping = buildMapping(header)
		r.started = true
	}

	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read csv row %d: %w", r.stats.Rows+1, err)
	}

	entry := &codec.DataEntry{}
	for i, raw := range record {
		if i >= len(r.mapping) || r.mapping[i] < 0 {
			continue
		}
		col := columns[r.mapping[i]]
		value := strings.TrimSpace(raw)
		if !col.set(entry, value) {
			r.stats.MalformedFields++
			log.Debugw("malformed csv value", "row", r.stats.Rows+1, "column", col.name, "value", value)
		}
	}

	before := *entry
	entry.Normalize()
	r.stats.TruncatedFields += countTruncated(&before, entry)
	r.stats.Rows++

	return entry, nil
}

// Stats returns counters for the rows read so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

func buildMapping(header []string) []int {
	mapping := make([]int, len(header))
	known := 0
	for i, name := range header {
		idx, ok := columnIndex[normalizeName(name)]
		if !ok {
			idx = -1
		} else {
			known++
		}
		mapping[i] = idx
	}
	if known > 0 {
		return mapping
	}

	// Unrecognized header: fall back to layout order.
	positional := make([]int, len(columns))
	for i := range positional {
		positional[i] = i
	}
	return positional
}

func countTruncated(before, after *codec.DataEntry) int {
	n := 0
	for _, pair := range [][2]string{
		{before.DtISO, after.DtISO},
		{before.CityName, after.CityName},
		{before.WeatherMain, after.WeatherMain},
		{before.WeatherDescription, after.WeatherDescription},
		{before.WeatherIcon, after.WeatherIcon},
	} {
		if pair[0] != pair[1] {
			n++
		}
	}
	return n
}

// Convert appends every row of src to w and finalizes it once all rows are
// written. If it fails part way the header keeps its previous record count.
func Convert(ctx context.Context, src io.Reader, w *store.Writer) (Stats, error) {
	r := NewReader(src)
	for {
		if err := ctx.Err(); err != nil {
			return r.Stats(), err
		}

		entry, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return r.Stats(), err
		}

		if err := w.Append(entry); err != nil {
			return r.Stats(), err
		}
	}

	if err := w.Finalize(); err != nil {
		return r.Stats(), err
	}
	return r.Stats(), nil
}

// ConvertFile converts the CSV file at csvPath into a new archive at binPath.
func ConvertFile(ctx context.Context, csvPath, binPath string, header *codec.Header, config store.WriterConfig) (stats Stats, err error) {
	src, err := os.Open(csvPath)
	if err != nil {
		return Stats{}, &store.IOError{Op: "open", Path: csvPath, Err: err}
	}
	defer src.Close()

	w, err := store.Create(binPath, header, config)
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	stats, err = Convert(ctx, src, w)
	if err != nil {
		return stats, err
	}

	log.Infow("conversion complete",
		"csv", csvPath, "archive", binPath, "records", w.Count(),
		"malformed_fields", stats.MalformedFields, "truncated_fields", stats.TruncatedFields)
	return stats, nil
}
