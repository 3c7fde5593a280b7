package model

import "github.com/google/uuid"

// Parameter identifies a process variable to capture, optionally paired with
// a non-owning reference to the Parameter describing its readback PV.
type Parameter struct {
	Meta         `yaml:",inline"`
	PVName       string   `yaml:"pv_name"`
	AbsTolerance *float64 `yaml:"abs_tolerance,omitempty"`
	RelTolerance *float64 `yaml:"rel_tolerance,omitempty"`
	Readback     *Ref     `yaml:"readback,omitempty"`
	ReadOnly     bool     `yaml:"read_only"`
}

func (p *Parameter) Kind() Kind { return KindParameter }

func (p *Parameter) SwapToIDs() []uuid.UUID {
	if p.Readback == nil {
		return nil
	}
	return []uuid.UUID{p.Readback.Swap()}
}

func (p *Parameter) RemoveRef(id uuid.UUID) {
	if p.Readback != nil && p.Readback.Target() == id {
		p.Readback = nil
	}
}

func (p *Parameter) Attributes() map[string]any {
	attrs := p.baseAttributes(KindParameter)
	attrs["pv_name"] = p.PVName
	attrs["read_only"] = p.ReadOnly
	return attrs
}

// Setpoint is a captured, writable PV value.
type Setpoint struct {
	Meta     `yaml:",inline"`
	PVName   string   `yaml:"pv_name"`
	Data     any      `yaml:"data"`
	Status   Status   `yaml:"status"`
	Severity Severity `yaml:"severity"`
	Readback *Ref     `yaml:"readback,omitempty"`
}

func (s *Setpoint) Kind() Kind { return KindSetpoint }

func (s *Setpoint) SwapToIDs() []uuid.UUID {
	if s.Readback == nil {
		return nil
	}
	return []uuid.UUID{s.Readback.Swap()}
}

func (s *Setpoint) RemoveRef(id uuid.UUID) {
	if s.Readback != nil && s.Readback.Target() == id {
		s.Readback = nil
	}
}

func (s *Setpoint) Attributes() map[string]any {
	attrs := s.baseAttributes(KindSetpoint)
	attrs["pv_name"] = s.PVName
	attrs["data"] = s.Data
	attrs["status"] = string(s.Status)
	attrs["severity"] = string(s.Severity)
	return attrs
}

// Readback is a captured, read-only PV value. A restore of a Setpoint is
// complete once the paired Readback is within tolerance.
type Readback struct {
	Meta         `yaml:",inline"`
	PVName       string   `yaml:"pv_name"`
	Data         any      `yaml:"data"`
	Status       Status   `yaml:"status"`
	Severity     Severity `yaml:"severity"`
	AbsTolerance *float64 `yaml:"abs_tolerance,omitempty"`
	RelTolerance *float64 `yaml:"rel_tolerance,omitempty"`
	Timeout      *float64 `yaml:"timeout,omitempty"`
}

func (r *Readback) Kind() Kind { return KindReadback }

func (r *Readback) SwapToIDs() []uuid.UUID { return nil }

func (r *Readback) RemoveRef(uuid.UUID) {}

func (r *Readback) Attributes() map[string]any {
	attrs := r.baseAttributes(KindReadback)
	attrs["pv_name"] = r.PVName
	attrs["data"] = r.Data
	attrs["status"] = string(r.Status)
	attrs["severity"] = string(r.Severity)
	return attrs
}

// Collection is a nestable group of Parameters and Collections.
type Collection struct {
	Meta     `yaml:",inline"`
	Title    string    `yaml:"title"`
	Children EntryList `yaml:"children"`
	Tags     []string  `yaml:"tags,omitempty"`
}

func (c *Collection) Kind() Kind { return KindCollection }

func (c *Collection) SwapToIDs() []uuid.UUID { return nil }

func (c *Collection) RemoveRef(uuid.UUID) {}

func (c *Collection) Nested() []Entry      { return c.Children }
func (c *Collection) SetNested(es []Entry) { c.Children = es }

func (c *Collection) Attributes() map[string]any {
	attrs := c.baseAttributes(KindCollection)
	attrs["title"] = c.Title
	attrs["tags"] = append([]string(nil), c.Tags...)
	return attrs
}

// Snapshot is the data-filled counterpart of a Collection: a nestable group
// of Setpoints, Readbacks and Snapshots, linked back to the Collection it
// was captured from.
type Snapshot struct {
	Meta             `yaml:",inline"`
	Title            string    `yaml:"title"`
	OriginCollection *Ref      `yaml:"origin_collection,omitempty"`
	Children         EntryList `yaml:"children"`
	Tags             []string  `yaml:"tags,omitempty"`
}

func (s *Snapshot) Kind() Kind { return KindSnapshot }

func (s *Snapshot) SwapToIDs() []uuid.UUID {
	if s.OriginCollection == nil {
		return nil
	}
	return []uuid.UUID{s.OriginCollection.Swap()}
}

func (s *Snapshot) RemoveRef(id uuid.UUID) {
	if s.OriginCollection != nil && s.OriginCollection.Target() == id {
		s.OriginCollection = nil
	}
}

func (s *Snapshot) Nested() []Entry      { return s.Children }
func (s *Snapshot) SetNested(es []Entry) { s.Children = es }

func (s *Snapshot) Attributes() map[string]any {
	attrs := s.baseAttributes(KindSnapshot)
	attrs["title"] = s.Title
	attrs["tags"] = append([]string(nil), s.Tags...)
	return attrs
}
