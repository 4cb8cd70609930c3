package query

import (
	"context"
	"fmt"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/store"
)

// Engine runs queries as sequential scans over an open archive.
type Engine struct {
	reader    *store.Reader
	extractor FieldExtractor
}

// NewEngine creates a query engine over reader.
func NewEngine(reader *store.Reader) *Engine {
	return &Engine{
		reader:    reader,
		extractor: &EntryFieldExtractor{},
	}
}

// Search scans the archive with an arbitrary predicate.
func (qe *Engine) Search(ctx context.Context, pred store.Predicate) (store.EntryIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	it, err := qe.reader.Scan(pred)
	if err != nil {
		return nil, err
	}
	return &contextIterator{EntryIterator: it, ctx: ctx}, nil
}

// ExecuteQuery executes a single field query
func (qe *Engine) ExecuteQuery(ctx context.Context, query FieldQuery) (store.EntryIterator, error) {
	pred, err := query.Predicate(qe.extractor)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return qe.Search(ctx, pred)
}

// ExecuteRangeQuery executes a range query between two conditions on the same field
func (qe *Engine) ExecuteRangeQuery(ctx context.Context, startQuery, endQuery FieldQuery) (store.EntryIterator, error) {
	if err := startQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid start query: %w", err)
	}
	if err := endQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid end query: %w", err)
	}
	if startQuery.Field != endQuery.Field {
		return nil, fmt.Errorf("range query fields must match: %s != %s", startQuery.Field, endQuery.Field)
	}

	lower, err := startQuery.Predicate(qe.extractor)
	if err != nil {
		return nil, fmt.Errorf("invalid start query: %w", err)
	}
	upper, err := endQuery.Predicate(qe.extractor)
	if err != nil {
		return nil, fmt.Errorf("invalid end query: %w", err)
	}
	return qe.Search(ctx, And(lower, upper))
}

// contextIterator stops iteration once ctx is done.
type contextIterator struct {
	store.EntryIterator
	ctx context.Context
	err error
}

func (it *contextIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		return false
	}
	return it.EntryIterator.Next()
}

func (it *contextIterator) Entry() *codec.DataEntry {
	if it.err != nil {
		return nil
	}
	return it.EntryIterator.Entry()
}

func (it *contextIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.EntryIterator.Err()
}
