package engine_test

import (
	"sort"
	"testing"
	"time"

	"github.com/kmrtax/kmr-leads/internal/engine"
	"github.com/kmrtax/kmr-leads/internal/lead"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ld(id, created, name string) lead.Lead {
	return lead.Lead{ID: id, CreatedAt: created, Name: name}
}

func ids(leads []lead.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func byID(leads []lead.Lead) map[string]lead.Lead {
	m := make(map[string]lead.Lead, len(leads))
	for _, l := range leads {
		m[l.ID] = l
	}
	return m
}

func TestMerge_Idempotence(t *testing.T) {
	x := []lead.Lead{
		ld("1", "2024-01-01T00:00:00Z", "A"),
		ld("2", "2024-03-01T00:00:00Z", "B"),
		ld("1", "2023-12-01T00:00:00Z", "A-old"),
		ld("3", "", "C"),
	}
	y := []lead.Lead{
		ld("2", "2024-04-01T00:00:00Z", "B2"),
		ld("4", "2024-02-01T00:00:00Z", "D"),
	}

	assert.Equal(t, byID(engine.Merge(x, nil)), byID(engine.Merge(x, x)))

	once := engine.Merge(x, y)
	assert.Equal(t, once, engine.Merge(once, y))
	assert.Equal(t, once, engine.Merge(once, nil))
}

func TestMerge_LatestWins(t *testing.T) {
	got := engine.Merge(
		[]lead.Lead{ld("1", "2024-01-01T00:00:00Z", "Old")},
		[]lead.Lead{ld("1", "2024-02-01T00:00:00Z", "New")},
	)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "New", got[0].Name)

	got = engine.Merge(
		[]lead.Lead{ld("1", "2024-02-01T00:00:00Z", "Local")},
		[]lead.Lead{ld("1", "2024-01-01T00:00:00Z", "Stale")},
	)
	require.Len(t, got, 1)
	assert.Equal(t, "Local", got[0].Name, "a late stale record never reverts a newer one")
}

func TestMerge_TiesGoToLaterCandidate(t *testing.T) {
	ts := "2024-01-01T00:00:00Z"

	got := engine.Merge([]lead.Lead{ld("1", ts, "existing")}, []lead.Lead{ld("1", ts, "incoming")})
	require.Len(t, got, 1)
	assert.Equal(t, "incoming", got[0].Name)

	got = engine.Merge([]lead.Lead{ld("1", ts, "first"), ld("1", ts, "second")}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Name)

	// Two unparseable timestamps are equal (epoch), so the later one wins too.
	got = engine.Merge([]lead.Lead{ld("1", "bad", "first")}, []lead.Lead{ld("1", "", "second")})
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Name)
}

func TestMerge_PreservesUniques(t *testing.T) {
	got := engine.Merge(
		[]lead.Lead{ld("1", "2024-01-01T00:00:00Z", "one"), ld("2", "2024-01-02T00:00:00Z", "two")},
		[]lead.Lead{ld("1", "2024-01-05T00:00:00Z", "one-new"), ld("3", "2024-01-03T00:00:00Z", "three")},
	)
	require.Len(t, got, 3)

	m := byID(got)
	assert.Contains(t, m, "1")
	assert.Contains(t, m, "2")
	assert.Contains(t, m, "3")
	assert.Equal(t, "one-new", m["1"].Name)
}

func TestMerge_SortOrder(t *testing.T) {
	got := engine.Merge(
		[]lead.Lead{
			ld("bad", "not a date", ""),
			ld("old", "2023-05-01T10:00:00Z", ""),
			ld("missing", "", ""),
		},
		[]lead.Lead{
			ld("new", "2025-01-01T00:00:00.000Z", ""),
			ld("mid", "2024-06-01 08:00:00+00", ""),
		},
	)

	assert.Equal(t, []string{"new", "mid", "old", "bad", "missing"}, ids(got))
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].CreatedMillis() > got[j].CreatedMillis()
	}))
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	existing := []lead.Lead{ld("a", "2024-01-01T00:00:00Z", "x"), ld("b", "2024-02-01T00:00:00Z", "y")}
	incoming := []lead.Lead{ld("a", "2024-03-01T00:00:00Z", "z")}
	before := append([]lead.Lead(nil), existing...)

	_ = engine.Merge(existing, incoming)
	assert.Equal(t, before, existing)
}

func TestMerge_Empty(t *testing.T) {
	got := engine.Merge(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIsDue(t *testing.T) {
	parse := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}

	tests := []struct {
		name    string
		last    string
		hasLast bool
		now     string
		want    bool
	}{
		{"no history", "", false, "2025-11-04T12:00:00Z", true},
		{"same UTC day", "2025-11-04T01:00:00Z", true, "2025-11-04T23:00:00Z", false},
		{"day rollover", "2025-11-03T23:59:59Z", true, "2025-11-04T00:00:01Z", true},
		{"same day in another zone", "2025-11-04T20:00:00-05:00", true, "2025-11-05T00:30:00Z", false},
		{"same day of month, other month", "2025-10-04T10:00:00Z", true, "2025-11-04T10:00:00Z", true},
		{"clock went backwards", "2025-11-05T10:00:00Z", true, "2025-11-04T10:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var last time.Time
			if tt.hasLast {
				last = parse(tt.last)
			}
			assert.Equal(t, tt.want, engine.IsDue(last, tt.hasLast, parse(tt.now)))
		})
	}
}
