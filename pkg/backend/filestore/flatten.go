package filestore

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/beamtime/snapvault/pkg/model"
)

// flattenAll runs the flatten engine over every top-level entry.
func (s *Store) flattenAll() {
	for _, e := range s.root.Entries {
		s.flatten(e)
	}
}

// flatten walks depth-first, children before parent. Each entry has its
// reference fields swapped to bare UUIDs, the resulting id set unioned into
// the link cache, and is then inserted into the entry cache if absent.
//
// Running flatten again over an unchanged tree leaves the entry cache as-is.
// The link cache only ever grows: re-flattening a tree whose references
// changed yields a superset of the live reference set until Reset is called.
func (s *Store) flatten(e model.Entry) {
	if n, ok := e.(model.Nester); ok {
		for _, child := range n.Nested() {
			s.flatten(child)
		}
	}
	id := e.ID()
	set := s.links[id]
	if set == nil {
		set = make(map[uuid.UUID]struct{})
		s.links[id] = set
	}
	for _, ref := range e.SwapToIDs() {
		set[ref] = struct{}{}
	}
	s.addToCache(e)
}

// addToCache inserts under the entry's id, first write wins. Duplicate ids
// across the tree are tolerated: the later occurrence stays in the nested
// Root but is invisible to the cache, which is worth a warning since it can
// hide data-integrity problems.
func (s *Store) addToCache(e model.Entry) {
	id := e.ID()
	if existing, ok := s.cache[id]; ok {
		if existing != e {
			slog.Warn("filestore: duplicate entry id, keeping first occurrence", "id", id, "kind", e.Kind())
		}
		return
	}
	s.cache[id] = e
}

// rebuildCache reflattens the whole tree into a fresh entry cache. Used
// after structural mutations; the link cache keeps its grow-only semantics.
func (s *Store) rebuildCache() {
	s.cache = make(map[uuid.UUID]model.Entry)
	s.flattenAll()
}

// Links returns the ids currently recorded as referenced by the given
// entry. The result is a copy.
func (s *Store) Links(id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.links[id]))
	for ref := range s.links[id] {
		out = append(out, ref)
	}
	return out
}
