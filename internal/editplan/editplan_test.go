package editplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanInsertions(t *testing.T) {
	t.Run("two inserts at the same index stack in creation order", func(t *testing.T) {
		got := PlanInsertions(0, []StagedInsert{
			{ID: "a", DesiredIndex: 0},
			{ID: "b", DesiredIndex: 0},
		})
		assert.Equal(t, []Placement{
			{StagedID: "a", FinalIndex: 0},
			{StagedID: "b", FinalIndex: 1},
		}, got)
	})

	t.Run("three-way tie keeps creation order", func(t *testing.T) {
		got := PlanInsertions(2, []StagedInsert{
			{ID: "a", DesiredIndex: 1},
			{ID: "b", DesiredIndex: 1},
			{ID: "c", DesiredIndex: 1},
		})
		assert.Equal(t, []Placement{
			{StagedID: "a", FinalIndex: 1},
			{StagedID: "b", FinalIndex: 2},
			{StagedID: "c", FinalIndex: 3},
		}, got)
	})

	t.Run("negative indices clamp to the front and then stack", func(t *testing.T) {
		got := PlanInsertions(2, []StagedInsert{
			{ID: "a", DesiredIndex: -5},
			{ID: "b", DesiredIndex: -3},
		})
		assert.Equal(t, []Placement{
			{StagedID: "a", FinalIndex: 0},
			{StagedID: "b", FinalIndex: 1},
		}, got)
	})

	t.Run("desired indices clamp into the growing list", func(t *testing.T) {
		got := PlanInsertions(2, []StagedInsert{
			{ID: "low", DesiredIndex: -5},
			{ID: "high", DesiredIndex: 99},
		})
		assert.Equal(t, []Placement{
			{StagedID: "low", FinalIndex: 0},
			{StagedID: "high", FinalIndex: 3},
		}, got)
	})

	t.Run("placement order follows desired index, not input order", func(t *testing.T) {
		got := PlanInsertions(3, []StagedInsert{
			{ID: "tail", DesiredIndex: 3},
			{ID: "head", DesiredIndex: 0},
		})
		require.Len(t, got, 2)
		assert.Equal(t, Placement{StagedID: "head", FinalIndex: 0}, got[0])
		assert.Equal(t, Placement{StagedID: "tail", FinalIndex: 3}, got[1])
	})

	t.Run("input slice is not reordered", func(t *testing.T) {
		staged := []StagedInsert{
			{ID: "b", DesiredIndex: 2},
			{ID: "a", DesiredIndex: 1},
		}
		PlanInsertions(5, staged)
		assert.Equal(t, "b", staged[0].ID)
	})

	t.Run("no staged inserts", func(t *testing.T) {
		assert.Empty(t, PlanInsertions(3, nil))
	})
}

func TestValidateReorder(t *testing.T) {
	assert.NoError(t, ValidateReorder(3, []int{2, 0, 1}))
	assert.NoError(t, ValidateReorder(0, []int{}))

	t.Run("length mismatch", func(t *testing.T) {
		err := ValidateReorder(3, []int{0, 1})
		var perr *PermutationError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 3, perr.Want)
		assert.Equal(t, 2, perr.Got)
	})

	t.Run("out of range index", func(t *testing.T) {
		err := ValidateReorder(2, []int{0, 2})
		var perr *PermutationError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "out of range")
	})

	t.Run("repeated index", func(t *testing.T) {
		err := ValidateReorder(3, []int{0, 1, 1})
		var perr *PermutationError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "repeated")
	})
}
