package query

import (
	"fmt"
	"math"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/store"
)

// Filter is the common set of record filters accepted by the CLI and API.
// Empty fields are not applied.
type Filter struct {
	Start  string
	End    string
	Main   string
	Fields []FieldQuery
}

// BuildPredicate combines the filter into a single predicate. It returns a
// nil predicate when nothing is set. A missing bound leaves that side of the
// date range open.
func BuildPredicate(f Filter) (store.Predicate, error) {
	var preds []store.Predicate

	if f.Start != "" || f.End != "" {
		lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
		if f.Start != "" {
			t, err := ParseTimestamp(f.Start)
			if err != nil {
				return nil, fmt.Errorf("start: %w", err)
			}
			lo = t.Unix()
		}
		if f.End != "" {
			t, err := ParseTimestamp(f.End)
			if err != nil {
				return nil, fmt.Errorf("end: %w", err)
			}
			hi = t.Unix()
		}
		if hi < lo {
			return nil, fmt.Errorf("end %s is before start %s", f.End, f.Start)
		}
		preds = append(preds, dtBetween(lo, hi))
	}

	if f.Main != "" {
		preds = append(preds, CategoryEquals(f.Main))
	}

	for i := range f.Fields {
		pred, err := f.Fields[i].Predicate(nil)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}

	if len(preds) == 0 {
		return nil, nil
	}
	return And(preds...), nil
}

func dtBetween(lo, hi int64) store.Predicate {
	return func(e *codec.DataEntry) bool {
		return e.Dt >= lo && e.Dt <= hi
	}
}
