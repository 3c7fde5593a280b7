// Package model defines the entry tree persisted by snapvault backends.
// Entries form an ownership tree rooted at a single Root document; entries
// may additionally hold non-owning references to other entries, which are
// stored on disk as bare UUIDs so that mutual references cannot form an
// ownership cycle.
package model

import (
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Kind tags the concrete type of an entry in the serialized document.
type Kind string

const (
	KindParameter  Kind = "parameter"
	KindSetpoint   Kind = "setpoint"
	KindReadback   Kind = "readback"
	KindCollection Kind = "collection"
	KindSnapshot   Kind = "snapshot"
)

// Severity mirrors control-system alarm severity.
type Severity string

const (
	SeverityNoAlarm Severity = "no_alarm"
	SeverityMinor   Severity = "minor"
	SeverityMajor   Severity = "major"
	SeverityInvalid Severity = "invalid"
)

// Status mirrors control-system alarm status.
type Status string

const (
	StatusNoAlarm Status = "no_alarm"
	StatusRead    Status = "read"
	StatusWrite   Status = "write"
	StatusHigh    Status = "high"
	StatusLow     Status = "low"
	StatusComm    Status = "comm"
	StatusTimeout Status = "timeout"
	StatusUDF     Status = "udf"
)

// Entry is a uniquely identified node in the tree.
type Entry interface {
	// Kind reports the serialization tag for the concrete type.
	Kind() Kind
	// ID returns the entry's unique identifier.
	ID() uuid.UUID
	// Metadata exposes the fields shared by every entry kind.
	Metadata() *Meta
	// SwapToIDs rewrites every non-owning reference field to hold the bare
	// UUID of its target and returns the set of UUIDs now referenced.
	// Safe to call repeatedly; already-swapped fields are a no-op.
	SwapToIDs() []uuid.UUID
	// RemoveRef drops any reference this entry holds to the given id.
	RemoveRef(id uuid.UUID)
	// Attributes returns a flat view of the entry's fields for searching.
	Attributes() map[string]any
}

// Nester is the capability of owning an ordered sequence of child entries.
type Nester interface {
	Entry
	Nested() []Entry
	SetNested([]Entry)
}

// Meta holds the fields common to all entry kinds.
type Meta struct {
	UUID         uuid.UUID `yaml:"uuid"`
	Description  string    `yaml:"description"`
	CreationTime time.Time `yaml:"creation_time"`
}

// NewMeta returns metadata with a fresh identifier and creation time.
func NewMeta(description string) Meta {
	return Meta{
		UUID:         uuid.New(),
		Description:  description,
		CreationTime: time.Now().UTC(),
	}
}

func (m *Meta) ID() uuid.UUID   { return m.UUID }
func (m *Meta) Metadata() *Meta { return m }

func (m *Meta) baseAttributes(kind Kind) map[string]any {
	return map[string]any{
		"kind":        string(kind),
		"uuid":        m.UUID.String(),
		"description": m.Description,
	}
}

// Ref is a non-owning link to another entry. In memory it may hold the live
// entry; after a swap, and always on disk, it holds only the bare UUID.
type Ref struct {
	UUID  uuid.UUID
	Entry Entry
}

// RefTo builds a live reference to an entry.
func RefTo(e Entry) *Ref { return &Ref{Entry: e} }

// RefToID builds a bare reference from an identifier.
func RefToID(id uuid.UUID) *Ref { return &Ref{UUID: id} }

// Target returns the referenced identifier without modifying the ref.
func (r *Ref) Target() uuid.UUID {
	if r.Entry != nil {
		return r.Entry.ID()
	}
	return r.UUID
}

// Swap collapses the reference to its bare UUID and returns it.
// A no-op when the ref already holds only the UUID.
func (r *Ref) Swap() uuid.UUID {
	if r.Entry != nil {
		r.UUID = r.Entry.ID()
		r.Entry = nil
	}
	return r.UUID
}

func (r *Ref) MarshalYAML() (interface{}, error) {
	return r.Target().String(), nil
}

func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	r.UUID = id
	r.Entry = nil
	return nil
}
