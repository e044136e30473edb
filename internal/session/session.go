// Package session binds the editing operations to one backing document.
//
// A Session is the explicit handle that replaces any notion of a process
// wide "current document": every operation is scoped to the store the
// session was built with, so multiple documents can be served concurrently
// without cross-talk.
//
// Each edit method performs its own load→mutate→persist cycle. Two
// concurrent edits against the same sequence are a lost-update race resolved
// as last-write-wins; batches of related edits are a series of independent
// operations with no rollback. Both behaviors are documented contracts of
// the document store, not defects to paper over here.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/rockiq/internal/ctxlog"
	"github.com/vk/rockiq/internal/docstore"
	"github.com/vk/rockiq/internal/editplan"
	"github.com/vk/rockiq/internal/graph"
	"github.com/vk/rockiq/internal/reconcile"
	"github.com/vk/rockiq/internal/record"
)

// Session exposes the five core operations against one document store.
type Session struct {
	store docstore.Store
}

// New returns a session bound to the given store.
func New(store docstore.Store) *Session {
	return &Session{store: store}
}

// Sequences lists the document's sequences.
func (s *Session) Sequences(ctx context.Context) ([]record.Info, error) {
	return s.store.ListSequences(ctx)
}

// Graph loads a sequence and compiles it; the read path never mutates the
// document. An unknown id falls back to the document's first sequence, which
// is what an interactive view wants when its selection goes stale.
func (s *Session) Graph(ctx context.Context, id int) (*graph.Graph, error) {
	seq, err := s.loadOrFirst(ctx, id)
	if err != nil {
		return nil, err
	}
	return graph.Compile(seq)
}

// UpdateFields applies a coerced field update to one record and persists.
func (s *Session) UpdateFields(ctx context.Context, id, index int, updates map[string]any) error {
	seq, err := s.store.LoadSequence(ctx, id)
	if err != nil {
		return err
	}
	kept, err := reconcile.UpdateFields(seq, index, updates)
	if err != nil {
		return err
	}
	for _, field := range kept {
		ctxlog.FromContext(ctx).Warn("Unparseable edit discarded, prior value kept.",
			"sequence", id, "record", index, "field", field)
	}
	return s.store.PersistSequence(ctx, seq)
}

// InsertBatch inserts staged records and persists, returning the map from
// staged id to final index for dependent operations.
func (s *Session) InsertBatch(ctx context.Context, id int, staged []editplan.StagedInsert) (map[string]int, error) {
	seq, err := s.store.LoadSequence(ctx, id)
	if err != nil {
		return nil, err
	}
	idMap, err := reconcile.InsertBatch(seq, staged)
	if err != nil {
		return nil, err
	}
	if err := s.store.PersistSequence(ctx, seq); err != nil {
		return nil, err
	}
	return idMap, nil
}

// DeleteBatch removes the records at the given indices and persists.
func (s *Session) DeleteBatch(ctx context.Context, id int, indices []int) error {
	seq, err := s.store.LoadSequence(ctx, id)
	if err != nil {
		return err
	}
	reconcile.DeleteBatch(seq, indices)
	return s.store.PersistSequence(ctx, seq)
}

// Reorder permutes the sequence's records and persists. An invalid
// permutation is rejected before anything is written.
func (s *Session) Reorder(ctx context.Context, id int, newOrder []int) error {
	seq, err := s.store.LoadSequence(ctx, id)
	if err != nil {
		return err
	}
	if err := reconcile.Reorder(seq, newOrder); err != nil {
		return err
	}
	return s.store.PersistSequence(ctx, seq)
}

func (s *Session) loadOrFirst(ctx context.Context, id int) (*record.Sequence, error) {
	seq, err := s.store.LoadSequence(ctx, id)
	if err == nil {
		return seq, nil
	}
	if !errors.Is(err, docstore.ErrSequenceNotFound) {
		return nil, err
	}
	infos, listErr := s.store.ListSequences(ctx)
	if listErr != nil || len(infos) == 0 {
		return nil, err
	}
	if infos[0].ID == id {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Sequence not found, falling back to first.",
		"requested", id, "fallback", infos[0].ID)
	seq, fbErr := s.store.LoadSequence(ctx, infos[0].ID)
	if fbErr != nil {
		return nil, fmt.Errorf("loading fallback sequence: %w", fbErr)
	}
	return seq, nil
}
