// Package docstore abstracts the backing document that owns module
// sequences. The editing core only ever sees the Store interface; the
// storage format is this package's private business.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/rockiq/internal/record"
)

// ErrSequenceNotFound reports a sequence id with no match in the document.
var ErrSequenceNotFound = errors.New("sequence not found")

// ShapeError reports a sequence whose backing data is not list-shaped.
// It is fatal for that sequence but does not affect others in the document.
type ShapeError struct {
	SequenceID int
	Detail     string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("sequence %d has invalid shape: %s", e.SequenceID, e.Detail)
}

// Store loads and persists sequences. Implementations perform a full read
// on load and a full write on persist; there is no locking or version check
// across callers, so concurrent writers race as last-write-wins.
type Store interface {
	// ListSequences returns the id and display name of every sequence.
	ListSequences(ctx context.Context) ([]record.Info, error)

	// LoadSequence returns a fresh in-memory copy of one sequence.
	LoadSequence(ctx context.Context, id int) (*record.Sequence, error)

	// PersistSequence writes the sequence's records back to the document,
	// replacing the stored record list wholesale.
	PersistSequence(ctx context.Context, seq *record.Sequence) error
}
