package filestore

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/beamtime/snapvault/pkg/backend"
	"github.com/beamtime/snapvault/pkg/model"
)

// GetEntry looks the id up in the flat cache. Read-only: nothing is written
// back to disk.
func (s *Store) GetEntry(id uuid.UUID) (model.Entry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	e, ok := s.cache[id]
	if !ok {
		return nil, fmt.Errorf("filestore: entry %s: %w", id, backend.ErrNotFound)
	}
	return e, nil
}

// SaveEntry inserts the entry as a new top-level entry of the document and
// persists the result.
func (s *Store) SaveEntry(e model.Entry) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if _, ok := s.cache[e.ID()]; ok {
		return fmt.Errorf("filestore: entry %s: %w", e.ID(), backend.ErrAlreadyExists)
	}
	s.root.Entries = append(s.root.Entries, e)
	s.flatten(e)
	return s.store()
}

// UpdateEntry replaces every tree occurrence of the entry's id with the
// given entry and persists the result. Bare-UUID references pick up the
// replacement automatically through the rebuilt cache.
func (s *Store) UpdateEntry(e model.Entry) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if _, ok := s.cache[e.ID()]; !ok {
		return fmt.Errorf("filestore: entry %s: %w", e.ID(), backend.ErrNotFound)
	}
	replaceInForest(s.root.Entries, e)
	s.rebuildCache()
	return s.store()
}

// DeleteEntry removes every occurrence of the entry's id, both as an owned
// child and as a reference target held by surviving entries. Deleting an id
// that is already absent is a no-op.
func (s *Store) DeleteEntry(e model.Entry) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	id := e.ID()
	s.root.Entries = model.EntryList(removeFromForest(s.root.Entries, id))
	model.Walk(s.root.Entries, func(survivor model.Entry) {
		survivor.RemoveRef(id)
	})
	delete(s.links, id)
	for _, set := range s.links {
		delete(set, id)
	}
	s.rebuildCache()
	return s.store()
}

// Search yields every cached entry matching the criteria. Each call compiles
// the criteria afresh and iterates the cache as it stands now; the returned
// sequence may be ranged over multiple times.
func (s *Store) Search(c backend.Criteria) (iter.Seq[model.Entry], error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	m, err := c.Compile()
	if err != nil {
		return nil, err
	}
	return func(yield func(model.Entry) bool) {
		for _, e := range s.cache {
			if m.Match(e) && !yield(e) {
				return
			}
		}
	}, nil
}

// replaceInForest swaps every node whose id matches repl's for repl itself,
// mutating children slices in place.
func replaceInForest(entries []model.Entry, repl model.Entry) {
	for i, e := range entries {
		if e.ID() == repl.ID() {
			entries[i] = repl
			continue
		}
		if n, ok := e.(model.Nester); ok {
			replaceInForest(n.Nested(), repl)
		}
	}
}

// removeFromForest returns the forest with every node carrying the id
// removed, recursing into the children of survivors.
func removeFromForest(entries []model.Entry, id uuid.UUID) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID() == id {
			continue
		}
		if n, ok := e.(model.Nester); ok {
			n.SetNested(removeFromForest(n.Nested(), id))
		}
		out = append(out, e)
	}
	return out
}
