// Package memstore keeps an entry forest in memory with no persistence.
// It implements the same contract as the file-backed engine and exists for
// tests and for callers that want a scratch database.
package memstore

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/beamtime/snapvault/pkg/backend"
	"github.com/beamtime/snapvault/pkg/model"
)

// Store operates directly on a forest of entries, resolving ids by
// traversal instead of a flat cache.
type Store struct {
	data []model.Entry
}

var _ backend.Backend = (*Store)(nil)

// New returns a Store seeded with the given top-level entries.
func New(entries ...model.Entry) *Store {
	return &Store{data: entries}
}

// Entries returns the top-level forest.
func (s *Store) Entries() []model.Entry { return s.data }

// GetEntry scans the forest for the id.
func (s *Store) GetEntry(id uuid.UUID) (model.Entry, error) {
	stack := append([]model.Entry(nil), s.data...)
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.ID() == id {
			return e, nil
		}
		if n, ok := e.(model.Nester); ok {
			stack = append(stack, n.Nested()...)
		}
	}
	return nil, fmt.Errorf("memstore: entry %s: %w", id, backend.ErrNotFound)
}

// SaveEntry appends a new top-level entry.
func (s *Store) SaveEntry(e model.Entry) error {
	if _, err := s.GetEntry(e.ID()); err == nil {
		return fmt.Errorf("memstore: entry %s: %w", e.ID(), backend.ErrAlreadyExists)
	}
	s.data = append(s.data, e)
	return nil
}

// UpdateEntry replaces every occurrence of the entry's id.
func (s *Store) UpdateEntry(e model.Entry) error {
	if _, err := s.GetEntry(e.ID()); err != nil {
		return err
	}
	replace(s.data, e)
	return nil
}

// DeleteEntry removes the entry everywhere it occurs, including as a
// reference target. A no-op for absent ids.
func (s *Store) DeleteEntry(e model.Entry) error {
	id := e.ID()
	s.data = remove(s.data, id)
	model.Walk(s.data, func(survivor model.Entry) {
		survivor.RemoveRef(id)
	})
	return nil
}

// Search yields matching entries in document order.
func (s *Store) Search(c backend.Criteria) (iter.Seq[model.Entry], error) {
	m, err := c.Compile()
	if err != nil {
		return nil, err
	}
	return func(yield func(model.Entry) bool) {
		ok := true
		model.Walk(s.data, func(e model.Entry) {
			if ok && m.Match(e) && !yield(e) {
				ok = false
			}
		})
	}, nil
}

func replace(entries []model.Entry, repl model.Entry) {
	for i, e := range entries {
		if e.ID() == repl.ID() {
			entries[i] = repl
			continue
		}
		if n, ok := e.(model.Nester); ok {
			replace(n.Nested(), repl)
		}
	}
}

func remove(entries []model.Entry, id uuid.UUID) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID() == id {
			continue
		}
		if n, ok := e.(model.Nester); ok {
			n.SetNested(remove(n.Nested(), id))
		}
		out = append(out, e)
	}
	return out
}
