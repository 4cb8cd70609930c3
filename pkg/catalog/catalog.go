// Package catalog keeps a registry of converted archives in pebble.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/wbin/pkg/codec"
)

var keyPrefix = []byte("archive/")

var (
	// ErrNotFound is returned when no archive is registered under an id.
	ErrNotFound = errors.New("archive not found")
	// ErrInvalidID is returned for ids that are not ksuids.
	ErrInvalidID = errors.New("invalid archive id")
)

// Verification is the outcome of the most recent integrity check.
type Verification struct {
	At            time.Time `json:"at"`
	OK            bool      `json:"ok"`
	Reason        string    `json:"reason,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	TrailingBytes int64     `json:"trailing_bytes,omitempty"`
}

// Archive describes one registered archive file.
type Archive struct {
	ID               string        `json:"id"`
	Path             string        `json:"path"`
	Location         string        `json:"location"`
	Latitude         float32       `json:"latitude"`
	Longitude        float32       `json:"longitude"`
	RecordCount      uint32        `json:"record_count"`
	CreatedAt        time.Time     `json:"created_at"`
	RegisteredAt     time.Time     `json:"registered_at"`
	LastVerification *Verification `json:"last_verification,omitempty"`
}

// FromHeader fills an Archive from a decoded header.
func FromHeader(path string, h *codec.Header) *Archive {
	return &Archive{
		Path:        path,
		Location:    h.Location,
		Latitude:    h.Latitude,
		Longitude:   h.Longitude,
		RecordCount: h.RecordCount,
		CreatedAt:   h.Created(),
	}
}

// Catalog is a pebble-backed archive registry keyed by ksuid.
type Catalog struct {
	db *pebble.DB
}

// Open opens or creates a catalog in dir.
func Open(dir string) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog at %s: %w", dir, err)
	}
	return &Catalog{db: db}, nil
}

func archiveKey(id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(keyPrefix)+27)
	key = append(key, keyPrefix...)
	return append(key, id.String()...)
}

func parseID(id string) (ksuid.KSUID, error) {
	k, err := ksuid.Parse(id)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return k, nil
}

// Register stores a new archive entry. If an archive with the same
// absolute path is already registered, that entry is replaced and keeps
// its id.
func (c *Catalog) Register(a *Archive) (*Archive, error) {
	abs, err := filepath.Abs(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", a.Path, err)
	}

	entry := *a
	entry.Path = abs
	entry.RegisteredAt = time.Now().UTC()

	existing, err := c.FindByPath(abs)
	switch {
	case err == nil:
		entry.ID = existing.ID
	case errors.Is(err, ErrNotFound):
		entry.ID = ksuid.New().String()
	default:
		return nil, err
	}

	if err := c.put(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Get returns the archive registered under id.
func (c *Catalog) Get(id string) (*Archive, error) {
	k, err := parseID(id)
	if err != nil {
		return nil, err
	}

	data, closer, err := c.db.Get(archiveKey(k))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read archive %s: %w", id, err)
	}
	defer closer.Close()

	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode archive %s: %w", id, err)
	}
	return &a, nil
}

// List returns every registered archive in registration order.
func (c *Catalog) List() ([]*Archive, error) {
	upper := append(bytes.Clone(keyPrefix[:len(keyPrefix)-1]), keyPrefix[len(keyPrefix)-1]+1)
	iter, err := c.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate catalog: %w", err)
	}
	defer iter.Close()

	var archives []*Archive
	for iter.First(); iter.Valid(); iter.Next() {
		var a Archive
		if err := json.Unmarshal(iter.Value(), &a); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", iter.Key(), err)
		}
		archives = append(archives, &a)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog: %w", err)
	}
	return archives, nil
}

// FindByPath returns the archive registered for path.
func (c *Catalog) FindByPath(path string) (*Archive, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	archives, err := c.List()
	if err != nil {
		return nil, err
	}
	for _, a := range archives {
		if a.Path == abs {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

// RecordVerification stores the outcome of an integrity check.
func (c *Catalog) RecordVerification(id string, v Verification) (*Archive, error) {
	a, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	a.LastVerification = &v
	if err := c.put(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the catalog entry. The archive file is left alone.
func (c *Catalog) Delete(id string) error {
	k, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := c.Get(id); err != nil {
		return err
	}
	return c.db.Delete(archiveKey(k), pebble.Sync)
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) put(a *Archive) error {
	k, err := parseID(a.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode archive %s: %w", a.ID, err)
	}
	if err := c.db.Set(archiveKey(k), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write archive %s: %w", a.ID, err)
	}
	return nil
}
