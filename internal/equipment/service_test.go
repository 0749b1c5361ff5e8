package equipment

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffIDs(t *testing.T) {
	cases := []struct {
		name       string
		current    []uint64
		desired    []uint64
		wantAdd    []uint64
		wantRemove []uint64
	}{
		{"empty to empty", nil, nil, nil, nil},
		{"all new", nil, []uint64{1, 2}, []uint64{1, 2}, nil},
		{"all gone", []uint64{1, 2}, nil, nil, []uint64{1, 2}},
		{"overlap", []uint64{1, 2, 3}, []uint64{2, 3, 4}, []uint64{4}, []uint64{1}},
		{"identical", []uint64{1, 2}, []uint64{2, 1}, nil, nil},
		{"duplicates in desired", []uint64{1}, []uint64{2, 2}, []uint64{2}, []uint64{1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			add, remove := DiffIDs(c.current, c.desired)
			sortIDs(add)
			sortIDs(remove)
			assert.Equal(t, c.wantAdd, add)
			assert.Equal(t, c.wantRemove, remove)
		})
	}
}

func TestDiffIDsIsIdempotent(t *testing.T) {
	// applying the diff yields a state that diffs to nothing
	current := []uint64{1, 2, 3}
	desired := []uint64{3, 4}

	add, remove := DiffIDs(current, desired)
	next := applyDiff(current, add, remove)
	sortIDs(next)

	add2, remove2 := DiffIDs(next, desired)
	assert.Empty(t, add2)
	assert.Empty(t, remove2)
}

func sortIDs(xs []uint64) {
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
}

func applyDiff(current, add, remove []uint64) []uint64 {
	out := map[uint64]struct{}{}
	for _, id := range current {
		out[id] = struct{}{}
	}
	for _, id := range remove {
		delete(out, id)
	}
	for _, id := range add {
		out[id] = struct{}{}
	}
	ids := make([]uint64, 0, len(out))
	for id := range out {
		ids = append(ids, id)
	}
	return ids
}
