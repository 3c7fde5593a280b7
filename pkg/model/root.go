package model

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DocumentID identifies the top of every snapvault document.
var DocumentID = uuid.MustParse("6b1dbf07-5c4e-4d26-9b3a-1f2e8c90aa54")

// Root is the top-level document holding entries. It is the sole unit of
// durable storage: backends persist the nested Root and derive everything
// else from it.
type Root struct {
	MetaID  uuid.UUID `yaml:"meta_id"`
	Entries EntryList `yaml:"entries"`
}

// NewRoot returns an empty, valid document.
func NewRoot() *Root {
	return &Root{MetaID: DocumentID, Entries: EntryList{}}
}

// EntryList is an ordered sequence of polymorphic entries. Each element is
// serialized as a mapping carrying a "kind" tag naming its concrete type.
type EntryList []Entry

func (l EntryList) MarshalYAML() (interface{}, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range l {
		node, err := encodeEntry(e)
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, node)
	}
	return seq, nil
}

func (l *EntryList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("model: entries must be a sequence, got %v", node.Kind)
	}
	out := make(EntryList, 0, len(node.Content))
	for _, n := range node.Content {
		e, err := decodeEntry(n)
		if err != nil {
			return err
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

func encodeEntry(e Entry) (*yaml.Node, error) {
	var node yaml.Node
	if err := node.Encode(e); err != nil {
		return nil, fmt.Errorf("model: encode %s entry: %w", e.Kind(), err)
	}
	key := &yaml.Node{Kind: yaml.ScalarNode, Value: "kind"}
	val := &yaml.Node{Kind: yaml.ScalarNode, Value: string(e.Kind())}
	node.Content = append([]*yaml.Node{key, val}, node.Content...)
	return &node, nil
}

func decodeEntry(node *yaml.Node) (Entry, error) {
	var probe struct {
		Kind Kind `yaml:"kind"`
	}
	if err := node.Decode(&probe); err != nil {
		return nil, fmt.Errorf("model: read entry kind: %w", err)
	}
	var e Entry
	switch probe.Kind {
	case KindParameter:
		e = &Parameter{}
	case KindSetpoint:
		e = &Setpoint{}
	case KindReadback:
		e = &Readback{}
	case KindCollection:
		e = &Collection{}
	case KindSnapshot:
		e = &Snapshot{}
	default:
		return nil, fmt.Errorf("model: unknown entry kind %q", probe.Kind)
	}
	if err := node.Decode(e); err != nil {
		return nil, fmt.Errorf("model: decode %s entry: %w", probe.Kind, err)
	}
	return e, nil
}

// Walk visits every entry reachable from the given forest, parents before
// children, in document order.
func Walk(entries []Entry, visit func(Entry)) {
	for _, e := range entries {
		visit(e)
		if n, ok := e.(Nester); ok {
			Walk(n.Nested(), visit)
		}
	}
}
