// Package editplan computes deterministic placements for staged structural
// edits before they are applied to a live sequence.
package editplan

import (
	"fmt"
	"sort"

	"github.com/vk/rockiq/internal/record"
)

// StagedInsert is a proposed new record held client-side before commit. The
// desired index is an estimate (derived from a drop position or a count of
// items above it) and is clamped during planning.
type StagedInsert struct {
	ID           string
	DesiredIndex int
	Fields       *record.Fields
}

// Placement is the planned final index for one staged insert.
type Placement struct {
	StagedID   string
	FinalIndex int
}

// PlanInsertions turns desired indices into final insertion indices.
//
// Staged inserts are walked in ascending desired order (stable, so creation
// order breaks ties) and each desired index is clamped into [0, length],
// where length starts at existingCount and grows by one per placement. Later
// low-indexed inserts therefore still land correctly relative to the ones
// already placed ahead of them, and the final ordering depends only on the
// staged inserts' relative desired positions.
func PlanInsertions(existingCount int, staged []StagedInsert) []Placement {
	ordered := make([]StagedInsert, len(staged))
	copy(ordered, staged)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DesiredIndex < ordered[j].DesiredIndex
	})

	placements := make([]Placement, 0, len(ordered))
	length := existingCount
	for i, ins := range ordered {
		idx := ins.DesiredIndex
		if idx < 0 {
			idx = 0
		}
		// Ties and clamped-up indices land strictly after the previous
		// placement, so equal desired indices stack in creation order.
		if i > 0 && idx <= placements[i-1].FinalIndex {
			idx = placements[i-1].FinalIndex + 1
		}
		if idx > length {
			idx = length
		}
		placements = append(placements, Placement{StagedID: ins.ID, FinalIndex: idx})
		length++
	}
	return placements
}

// PermutationError reports a reorder input that is not a permutation of the
// existing indices. No state is mutated when it is returned.
type PermutationError struct {
	Want   int
	Got    int
	Reason string
}

func (e *PermutationError) Error() string {
	return fmt.Sprintf("invalid reorder permutation (want %d indices, got %d): %s", e.Want, e.Got, e.Reason)
}

// ValidateReorder checks that newOrder is exactly a permutation of 0..n-1.
func ValidateReorder(n int, newOrder []int) error {
	if len(newOrder) != n {
		return &PermutationError{Want: n, Got: len(newOrder), Reason: "length mismatch"}
	}
	seen := make([]bool, n)
	for _, idx := range newOrder {
		if idx < 0 || idx >= n {
			return &PermutationError{Want: n, Got: len(newOrder), Reason: fmt.Sprintf("index %d out of range", idx)}
		}
		if seen[idx] {
			return &PermutationError{Want: n, Got: len(newOrder), Reason: fmt.Sprintf("index %d repeated", idx)}
		}
		seen[idx] = true
	}
	return nil
}
