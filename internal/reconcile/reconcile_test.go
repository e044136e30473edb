package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/rockiq/internal/editplan"
	"github.com/vk/rockiq/internal/record"
)

func newSeq(modules ...string) *record.Sequence {
	seq := &record.Sequence{Records: make([]*record.Record, 0, len(modules))}
	for _, m := range modules {
		r := record.New()
		r.Set(record.KeyModule, m)
		seq.Records = append(seq.Records, r)
	}
	return seq
}

func modules(seq *record.Sequence) []string {
	out := make([]string, len(seq.Records))
	for i, r := range seq.Records {
		out[i] = r.Module()
	}
	return out
}

func stagedFields(module string) *record.Fields {
	f := record.NewFields()
	f.Set(record.KeyModule, module)
	return f
}

func TestInsertBatch(t *testing.T) {
	t.Run("inserts land at planned indices and report them", func(t *testing.T) {
		seq := newSeq("A.a", "A.b")
		idMap, err := InsertBatch(seq, []editplan.StagedInsert{
			{ID: "one", DesiredIndex: 1, Fields: stagedFields("N.one")},
			{ID: "two", DesiredIndex: 0, Fields: stagedFields("N.two")},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"N.two", "N.one", "A.a", "A.b"}, modules(seq))
		assert.Equal(t, map[string]int{"two": 0, "one": 1}, idMap)
	})

	t.Run("tied desired indices keep creation order and a live map", func(t *testing.T) {
		seq := newSeq("A.a")
		idMap, err := InsertBatch(seq, []editplan.StagedInsert{
			{ID: "x", DesiredIndex: 0, Fields: stagedFields("N.x")},
			{ID: "y", DesiredIndex: 0, Fields: stagedFields("N.y")},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"N.x", "N.y", "A.a"}, modules(seq))
		// Each map entry addresses the record it inserted.
		for id, idx := range idMap {
			assert.Equal(t, "N."+id, seq.Records[idx].Module())
		}
	})

	t.Run("missing ids are generated", func(t *testing.T) {
		seq := newSeq("A.a")
		idMap, err := InsertBatch(seq, []editplan.StagedInsert{
			{DesiredIndex: 0, Fields: stagedFields("N.x")},
		})
		require.NoError(t, err)
		require.Len(t, idMap, 1)
		for id, idx := range idMap {
			assert.NotEmpty(t, id)
			assert.Equal(t, 0, idx)
		}
	})

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		seq := newSeq("A.a")
		_, err := InsertBatch(seq, []editplan.StagedInsert{
			{ID: "dup", DesiredIndex: 0, Fields: stagedFields("N.x")},
			{ID: "dup", DesiredIndex: 1, Fields: stagedFields("N.y")},
		})
		require.Error(t, err)
		assert.Len(t, seq.Records, 1, "sequence untouched on rejection")
	})

	t.Run("staged fields are value-copied", func(t *testing.T) {
		fields := stagedFields("N.x")
		fields.Set("params", map[string]any{"k": "v"})
		seq := newSeq()
		_, err := InsertBatch(seq, []editplan.StagedInsert{{ID: "a", DesiredIndex: 0, Fields: fields}})
		require.NoError(t, err)

		fields.Set("params", map[string]any{"k": "mutated"})
		got, ok := seq.Records[0].Get("params")
		require.True(t, ok)
		assert.Equal(t, map[string]any{"k": "v"}, got)
	})
}

func TestDeleteBatch(t *testing.T) {
	t.Run("indices resolve against the original list", func(t *testing.T) {
		seq := newSeq("a", "b", "c", "d", "e")
		DeleteBatch(seq, []int{1, 3})
		assert.Equal(t, []string{"a", "c", "e"}, modules(seq))
	})

	t.Run("duplicates and out-of-range indices are tolerated", func(t *testing.T) {
		seq := newSeq("a", "b", "c")
		DeleteBatch(seq, []int{2, 2, -1, 99})
		assert.Equal(t, []string{"a", "b"}, modules(seq))
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		seq := newSeq("a")
		DeleteBatch(seq, nil)
		assert.Equal(t, []string{"a"}, modules(seq))
	})
}

func TestReorder(t *testing.T) {
	t.Run("new list is indexed through the permutation", func(t *testing.T) {
		seq := newSeq("a", "b", "c")
		require.NoError(t, Reorder(seq, []int{2, 0, 1}))
		assert.Equal(t, []string{"c", "a", "b"}, modules(seq))
	})

	t.Run("invalid permutation leaves the sequence untouched", func(t *testing.T) {
		seq := newSeq("a", "b", "c")
		var perr *editplan.PermutationError
		require.ErrorAs(t, Reorder(seq, []int{0, 0, 1}), &perr)
		assert.Equal(t, []string{"a", "b", "c"}, modules(seq))
	})
}

func TestUpdateFields(t *testing.T) {
	t.Run("values coerce against the current field type", func(t *testing.T) {
		seq := newSeq("A.f")
		rec := seq.Records[0]
		rec.Set("size", 5)
		rec.Set("simulate", false)

		kept, err := UpdateFields(seq, 0, map[string]any{
			"size":     "13",
			"simulate": "yes",
			"label":    "  edge  ",
		})
		require.NoError(t, err)
		assert.Empty(t, kept)

		size, _ := rec.Get("size")
		assert.Equal(t, 13, size)
		sim, _ := rec.Get("simulate")
		assert.Equal(t, true, sim)
		label, _ := rec.Get("label")
		assert.Equal(t, "edge", label)
	})

	t.Run("unparseable edits keep the old value and are reported", func(t *testing.T) {
		seq := newSeq("A.f")
		seq.Records[0].Set("size", 5)

		kept, err := UpdateFields(seq, 0, map[string]any{"size": "big"})
		require.NoError(t, err)
		assert.Equal(t, []string{"size"}, kept)
		size, _ := seq.Records[0].Get("size")
		assert.Equal(t, 5, size)
	})

	t.Run("field order is preserved across updates", func(t *testing.T) {
		seq := newSeq("A.f")
		rec := seq.Records[0]
		rec.Set("first", 1)
		rec.Set("second", 2)

		_, err := UpdateFields(seq, 0, map[string]any{"first": "10"})
		require.NoError(t, err)
		assert.Equal(t, []string{record.KeyModule, "first", "second"}, rec.Keys())
	})

	t.Run("out of range index", func(t *testing.T) {
		seq := newSeq("A.f")
		_, err := UpdateFields(seq, 3, map[string]any{"x": "1"})
		var ierr *IndexError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, 3, ierr.Index)
		assert.Equal(t, 1, ierr.Length)
	})
}
