package joingraph

import "github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"

// Plan is a dependency-safe, de-duplicated join sequence over the base relation.
type Plan struct {
	Base  Node
	Joins []Node
}

// Resolve returns the minimal plan containing every requested alias and its dependency
// closure. The order is a topological order with the registry priority as tie-break, so the
// result does not depend on request order or duplicates. The base alias may be requested and
// is ignored.
func (r *Registry) Resolve(requested ...Alias) (Plan, error) {
	need := make(map[Alias]struct{}, len(requested))

	var include func(a Alias) error
	include = func(a Alias) error {
		if a == r.base.Alias {
			return nil
		}
		if _, ok := need[a]; ok {
			return nil
		}
		node, ok := r.nodes[a]
		if !ok {
			return domain.NewError(domain.KindUnknownAlias, "unknown join alias %q", a)
		}
		need[a] = struct{}{}
		for _, dep := range node.DependsOn {
			if err := include(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, a := range requested {
		if err := include(a); err != nil {
			return Plan{}, err
		}
	}

	joins := make([]Node, 0, len(need))
	placed := make(map[Alias]bool, len(need))
	for len(joins) < len(need) {
		var next Alias
		found := false
		for a := range need {
			if placed[a] || !r.ready(a, placed) {
				continue
			}
			if !found || r.rank[a] < r.rank[next] {
				next = a
				found = true
			}
		}
		if !found {
			// Unreachable for a registry that passed NewRegistry.
			return Plan{}, domain.NewError(domain.KindCyclicDependency, "join graph cycle while resolving")
		}
		placed[next] = true
		joins = append(joins, r.nodes[next])
	}

	return Plan{Base: r.base, Joins: joins}, nil
}

func (r *Registry) ready(a Alias, placed map[Alias]bool) bool {
	for _, dep := range r.nodes[a].DependsOn {
		if dep != r.base.Alias && !placed[dep] {
			return false
		}
	}
	return true
}

// Aliases lists the joined aliases in plan order.
func (p Plan) Aliases() []Alias {
	out := make([]Alias, len(p.Joins))
	for i, n := range p.Joins {
		out[i] = n.Alias
	}
	return out
}

// Has reports whether a is the base or one of the joins.
func (p Plan) Has(a Alias) bool {
	if a == p.Base.Alias {
		return true
	}
	for _, n := range p.Joins {
		if n.Alias == a {
			return true
		}
	}
	return false
}

// FanOut lists joined aliases flagged as one-to-many.
func (p Plan) FanOut() []Alias {
	var out []Alias
	for _, n := range p.Joins {
		if n.FanOut {
			out = append(out, n.Alias)
		}
	}
	return out
}

// From renders the base relation with its scoped alias.
func (p Plan) From(s Scope) string {
	return p.Base.Table + " " + s.Alias(p.Base.Alias)
}

// Clauses renders the JOIN clauses in plan order.
func (p Plan) Clauses(s Scope) []string {
	out := make([]string, len(p.Joins))
	for i, n := range p.Joins {
		out[i] = n.Clause(s)
	}
	return out
}
