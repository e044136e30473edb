// Package reconcile applies structural edits (insert, delete, reorder,
// field update) to a module sequence in memory.
//
// Each operation is independently atomic: it either applies fully or leaves
// the sequence untouched. There is no atomicity across operations; a batch
// of logically related edits is a series of independent calls, and a failure
// partway leaves earlier edits in place.
package reconcile

import (
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/vk/rockiq/internal/coerce"
	"github.com/vk/rockiq/internal/editplan"
	"github.com/vk/rockiq/internal/record"
)

// IndexError reports a record index outside the sequence.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("record index %d out of range (sequence has %d records)", e.Index, e.Length)
}

// InsertBatch plans final indices for the staged inserts and splices
// value-copied records into the sequence in ascending final-index order.
//
// The returned map lets dependent operations (wiring a reference to a record
// that did not exist before the batch) find each staged record's final
// index. Staged inserts without an ID are assigned a generated one so the
// map can still address them.
func InsertBatch(seq *record.Sequence, staged []editplan.StagedInsert) (map[string]int, error) {
	withIDs := make([]editplan.StagedInsert, len(staged))
	copy(withIDs, staged)
	seen := make(map[string]struct{}, len(withIDs))
	for i := range withIDs {
		if withIDs[i].ID == "" {
			withIDs[i].ID = uuid.NewString()
		}
		if _, dup := seen[withIDs[i].ID]; dup {
			return nil, fmt.Errorf("duplicate staged insert id %q", withIDs[i].ID)
		}
		seen[withIDs[i].ID] = struct{}{}
	}

	fieldsByID := make(map[string]*record.Fields, len(withIDs))
	for _, ins := range withIDs {
		fieldsByID[ins.ID] = ins.Fields
	}

	placements := editplan.PlanInsertions(len(seq.Records), withIDs)
	idMap := make(map[string]int, len(placements))
	for _, p := range placements {
		rec := record.FromFields(fieldsByID[p.StagedID])
		seq.Records = slices.Insert(seq.Records, p.FinalIndex, rec)
		idMap[p.StagedID] = p.FinalIndex
	}
	return idMap, nil
}

// DeleteBatch removes the records at the given indices. Duplicates are
// collapsed and out-of-range indices dropped; removal runs from the highest
// index down so earlier removals cannot invalidate later ones.
func DeleteBatch(seq *record.Sequence, indices []int) {
	unique := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(seq.Records) {
			unique[idx] = struct{}{}
		}
	}
	ordered := make([]int, 0, len(unique))
	for idx := range unique {
		ordered = append(ordered, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	for _, idx := range ordered {
		seq.Records = slices.Delete(seq.Records, idx, idx+1)
	}
}

// Reorder rebuilds the record list as newList[i] = oldList[newOrder[i]].
// A newOrder that is not a true permutation is rejected without mutation.
func Reorder(seq *record.Sequence, newOrder []int) error {
	if err := editplan.ValidateReorder(len(seq.Records), newOrder); err != nil {
		return err
	}
	reordered := make([]*record.Record, len(seq.Records))
	for i, from := range newOrder {
		reordered[i] = seq.Records[from]
	}
	seq.Records = reordered
	return nil
}

// UpdateFields coerces each new value against the field's current value (nil
// when the field is new) and writes it back, preserving field positions.
// Update keys are applied in sorted order so the result is deterministic.
//
// The returned slice names the fields whose edits were unparseable and kept
// their prior value; that leniency is documented behavior, not an error.
func UpdateFields(seq *record.Sequence, index int, updates map[string]any) ([]string, error) {
	if index < 0 || index >= len(seq.Records) {
		return nil, &IndexError{Index: index, Length: len(seq.Records)}
	}
	rec := seq.Records[index]

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var kept []string
	for _, k := range keys {
		old, _ := rec.Get(k)
		res := coerce.Coerce(updates[k], old)
		if res.Kept {
			kept = append(kept, k)
		}
		rec.Set(k, res.Value)
	}
	return kept, nil
}
