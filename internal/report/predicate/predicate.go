// Package predicate compiles facet selections into parameterized WHERE fragments that carry the
// aliases they depend on and can be re-rendered under a nested scope.
package predicate

import (
	"reflect"
	"sort"
	"strings"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
)

// Unsatisfiable is the fragment an explicitly empty selection compiles to.
const Unsatisfiable = "1 = 0"

// Column is an alias-qualified column reference.
type Column struct {
	Alias joingraph.Alias
	Name  string
}

// Template returns the column as an {alias}.name template.
func (c Column) Template() string { return "{" + string(c.Alias) + "}." + c.Name }

// NamedParam is one bound value. Name is rendered as @Name in SQL.
type NamedParam struct {
	Name  string
	Value any
}

// Predicate is a WHERE fragment template. SQL uses {alias} and @{param} tokens; Params names
// are unscoped.
type Predicate struct {
	SQL     string
	Params  []NamedParam
	Aliases []joingraph.Alias
}

// Rendered is a predicate with aliases and parameter names rewritten for one scope.
type Rendered struct {
	SQL     string
	Params  []NamedParam
	Aliases []joingraph.Alias
}

// Render rewrites the predicate for scope s.
func (p Predicate) Render(s joingraph.Scope) Rendered {
	params := make([]NamedParam, len(p.Params))
	for i, np := range p.Params {
		params[i] = NamedParam{Name: s.Param(np.Name), Value: np.Value}
	}
	return Rendered{
		SQL:     s.Expand(p.SQL),
		Params:  params,
		Aliases: append([]joingraph.Alias(nil), p.Aliases...),
	}
}

// Params collects bound values for one compiled query.
type Params map[string]any

// Add binds values, failing when a name is already bound to a different value.
func (p Params) Add(values ...NamedParam) error {
	for _, np := range values {
		if existing, ok := p[np.Name]; ok {
			if !sameValue(existing, np.Value) {
				return domain.NewError(domain.KindParamCollision, "parameter %q bound twice with different values", np.Name)
			}
			continue
		}
		p[np.Name] = np.Value
	}
	return nil
}

// Merge adds every value of other.
func (p Params) Merge(other Params) error {
	names := make([]string, 0, len(other))
	for name := range other {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.Add(NamedParam{Name: name, Value: other[name]}); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Names returns the bound names in sorted order.
func (p Params) Names() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sameValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Set is the ordered predicate list of one filter state. The tenant predicate is always first.
type Set struct {
	preds []Predicate
}

// NewSet builds a set from predicates in order.
func NewSet(preds ...Predicate) Set {
	return Set{preds: append([]Predicate(nil), preds...)}
}

// Predicates returns a copy of the predicates in order.
func (s Set) Predicates() []Predicate {
	return append([]Predicate(nil), s.preds...)
}

// Aliases returns the union of alias dependencies in first-use order.
func (s Set) Aliases() []joingraph.Alias {
	seen := make(map[joingraph.Alias]struct{})
	var out []joingraph.Alias
	for _, p := range s.preds {
		for _, a := range p.Aliases {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// Where renders the conjunction of all predicates in scope s together with their bound values.
func (s Set) Where(scope joingraph.Scope) (string, Params, error) {
	params := make(Params)
	parts := make([]string, 0, len(s.preds))
	for _, p := range s.preds {
		r := p.Render(scope)
		if err := params.Add(r.Params...); err != nil {
			return "", nil, err
		}
		parts = append(parts, r.SQL)
	}
	return strings.Join(parts, " AND "), params, nil
}
