package backend

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gobwas/glob"

	"github.com/beamtime/snapvault/pkg/model"
)

// Criteria selects entries by attribute. All clauses must match. The zero
// value matches every entry.
type Criteria struct {
	// Kind restricts matches to one entry kind when non-empty.
	Kind model.Kind

	// Attrs maps attribute names to glob patterns matched against the
	// stringified attribute value, e.g. {"pv_name": "MOTOR:*:SET"}.
	Attrs map[string]string

	// Filter is an optional expression evaluated against the entry's
	// attribute map, e.g. `read_only == false && data > 3.5`. Entries for
	// which the expression errors or yields non-true do not match.
	Filter string
}

// Matcher is a compiled Criteria.
type Matcher struct {
	kind  model.Kind
	globs map[string]glob.Glob
	prog  *vm.Program
}

// Compile validates the criteria's patterns and filter expression.
func (c Criteria) Compile() (*Matcher, error) {
	m := &Matcher{kind: c.Kind, globs: make(map[string]glob.Glob, len(c.Attrs))}
	for attr, pattern := range c.Attrs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("backend: bad pattern %q for %s: %w", pattern, attr, err)
		}
		m.globs[attr] = g
	}
	if c.Filter != "" {
		prog, err := expr.Compile(c.Filter, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("backend: bad filter %q: %w", c.Filter, err)
		}
		m.prog = prog
	}
	return m, nil
}

// Match reports whether the entry satisfies every clause.
func (m *Matcher) Match(e model.Entry) bool {
	attrs := e.Attributes()
	if m.kind != "" && e.Kind() != m.kind {
		return false
	}
	for attr, g := range m.globs {
		v, ok := attrs[attr]
		if !ok || !g.Match(fmt.Sprint(v)) {
			return false
		}
	}
	if m.prog != nil {
		out, err := expr.Run(m.prog, attrs)
		if err != nil {
			return false
		}
		b, ok := out.(bool)
		return ok && b
	}
	return true
}
