package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/wbin/pkg/codec"
)

func TestBuildPredicate(t *testing.T) {
	jan1 := int64(1704067200) // 2024-01-01 00:00:00 UTC
	entries := []*codec.DataEntry{
		entry(-86400, "Snow", -4),   // 1969-12-31
		entry(jan1-3600, "Rain", 3), // 2023-12-31 23:00
		entry(jan1, "Rain", 8),
		entry(jan1+3600, "Clear", 12),
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{name: "empty", filter: Filter{}, want: []int64{-86400, jan1 - 3600, jan1, jan1 + 3600}},
		{name: "end only keeps pre-epoch records", filter: Filter{End: "2023-12-31 23:00:00"}, want: []int64{-86400, jan1 - 3600}},
		{name: "start only", filter: Filter{Start: "2024-01-01 00:00:00"}, want: []int64{jan1, jan1 + 3600}},
		{name: "inclusive range", filter: Filter{Start: "2023-12-31 23:00:00", End: "2024-01-01"}, want: []int64{jan1 - 3600, jan1}},
		{name: "category", filter: Filter{Main: "Rain"}, want: []int64{jan1 - 3600, jan1}},
		{
			name:   "fields and category",
			filter: Filter{Main: "Rain", Fields: []FieldQuery{{Field: "temp", Operator: ">", Value: "5"}}},
			want:   []int64{jan1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := BuildPredicate(tt.filter)
			require.NoError(t, err)

			got := make([]int64, 0)
			for _, e := range entries {
				if pred == nil || pred(e) {
					got = append(got, e.Dt)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPredicate_EmptyIsNil(t *testing.T) {
	pred, err := BuildPredicate(Filter{})
	require.NoError(t, err)
	assert.Nil(t, pred)
}

func TestBuildPredicate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{name: "bad start", filter: Filter{Start: "yesterday"}, want: "start:"},
		{name: "bad end", filter: Filter{End: "31/12/2023"}, want: "end:"},
		{name: "end before start", filter: Filter{Start: "2024-01-02", End: "2024-01-01"}, want: "before start"},
		{name: "unknown field", filter: Filter{Fields: []FieldQuery{{Field: "altitude", Operator: "=", Value: "1"}}}, want: "altitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := BuildPredicate(tt.filter)
			assert.Nil(t, pred)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
