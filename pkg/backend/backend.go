// Package backend defines the storage contract shared by all snapvault
// storage engines. Callers program against Backend and the sentinel errors
// here; concrete engines live in subpackages.
package backend

import (
	"errors"
	"iter"

	"github.com/google/uuid"

	"github.com/beamtime/snapvault/pkg/model"
)

var ErrNotFound = errors.New("backend: entry not found")
var ErrAlreadyExists = errors.New("backend: entry already exists")

// Backend is the CRUD and search contract over a flat identifier space.
type Backend interface {
	// GetEntry returns the entry with the given id, or ErrNotFound.
	GetEntry(id uuid.UUID) (model.Entry, error)

	// SaveEntry inserts a new entry. Returns ErrAlreadyExists when an entry
	// with the same id is already present.
	SaveEntry(e model.Entry) error

	// UpdateEntry replaces the stored entry with the same id everywhere it
	// occurs. Returns ErrNotFound when the id is absent.
	UpdateEntry(e model.Entry) error

	// DeleteEntry removes the entry and every occurrence of it, both as an
	// owned child and as a reference target. Deleting an id that is already
	// absent is a no-op for every engine in this module.
	DeleteEntry(e model.Entry) error

	// Search returns a lazy, finite sequence of entries matching the
	// criteria. The sequence is restartable: it may be ranged over more
	// than once, and each Search call starts from the current state.
	Search(c Criteria) (iter.Seq[model.Entry], error)
}
