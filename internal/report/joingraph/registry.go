package joingraph

import (
	"sort"
	"strings"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
)

// Node is one joinable relation. On is a template using {alias} tokens.
type Node struct {
	Alias     Alias
	Table     string
	On        string
	DependsOn []Alias
	Kind      JoinKind
	// FanOut marks one-to-many relations whose direct join would multiply aggregates.
	FanOut bool
}

// Clause renders the JOIN clause for this node in scope s.
func (n Node) Clause(s Scope) string {
	return n.Kind.String() + " " + n.Table + " " + s.Alias(n.Alias) + " ON " + s.Expand(n.On)
}

// Registry is the validated, immutable join graph for one base relation.
type Registry struct {
	base  Node
	nodes map[Alias]Node
	rank  map[Alias]int
}

// NewRegistry validates the graph once: aliases must be unique, dependencies registered, and the
// dependency graph acyclic. priority fixes the tie-break order among independent aliases;
// aliases it omits rank after it in name order.
func NewRegistry(baseAlias Alias, baseTable string, nodes []Node, priority []Alias) (*Registry, error) {
	if baseAlias == "" || strings.TrimSpace(baseTable) == "" {
		return nil, domain.NewError(domain.KindInvalidReport, "join graph requires a base relation")
	}

	r := &Registry{
		base:  Node{Alias: baseAlias, Table: baseTable},
		nodes: make(map[Alias]Node, len(nodes)),
		rank:  make(map[Alias]int, len(nodes)),
	}
	for _, n := range nodes {
		if n.Alias == baseAlias {
			return nil, domain.NewError(domain.KindInvalidReport, "alias %q is the base relation", n.Alias)
		}
		if _, dup := r.nodes[n.Alias]; dup {
			return nil, domain.NewError(domain.KindInvalidReport, "alias %q registered twice", n.Alias)
		}
		if strings.TrimSpace(n.Table) == "" || strings.TrimSpace(n.On) == "" {
			return nil, domain.NewError(domain.KindInvalidReport, "alias %q needs a table and join condition", n.Alias)
		}
		n.DependsOn = append([]Alias(nil), n.DependsOn...)
		r.nodes[n.Alias] = n
	}
	for _, n := range r.nodes {
		for _, dep := range n.DependsOn {
			if dep == baseAlias {
				continue
			}
			if _, ok := r.nodes[dep]; !ok {
				return nil, domain.NewError(domain.KindUnknownAlias, "alias %q depends on unregistered alias %q", n.Alias, dep)
			}
		}
	}
	if err := r.checkAcyclic(); err != nil {
		return nil, err
	}

	for i, a := range priority {
		if _, ok := r.nodes[a]; !ok {
			return nil, domain.NewError(domain.KindUnknownAlias, "priority lists unregistered alias %q", a)
		}
		if _, dup := r.rank[a]; dup {
			return nil, domain.NewError(domain.KindInvalidReport, "priority lists alias %q twice", a)
		}
		r.rank[a] = i
	}
	var rest []string
	for a := range r.nodes {
		if _, ok := r.rank[a]; !ok {
			rest = append(rest, string(a))
		}
	}
	sort.Strings(rest)
	for i, a := range rest {
		r.rank[Alias(a)] = len(priority) + i
	}

	return r, nil
}

// Base returns the base relation.
func (r *Registry) Base() Node { return r.base }

// Node looks up a registered alias.
func (r *Registry) Node(a Alias) (Node, bool) {
	n, ok := r.nodes[a]
	return n, ok
}

const (
	unvisited = iota
	visiting
	done
)

func (r *Registry) checkAcyclic() error {
	state := make(map[Alias]int, len(r.nodes))
	var stack []Alias

	var visit func(a Alias) error
	visit = func(a Alias) error {
		switch state[a] {
		case done:
			return nil
		case visiting:
			cycle := []string{string(a)}
			for i := len(stack) - 1; i >= 0; i-- {
				cycle = append(cycle, string(stack[i]))
				if stack[i] == a {
					break
				}
			}
			for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
				cycle[i], cycle[j] = cycle[j], cycle[i]
			}
			return domain.NewError(domain.KindCyclicDependency, "join graph cycle: %s", strings.Join(cycle, " -> "))
		}
		state[a] = visiting
		stack = append(stack, a)
		for _, dep := range r.nodes[a].DependsOn {
			if dep == r.base.Alias {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[a] = done
		return nil
	}

	aliases := make([]string, 0, len(r.nodes))
	for a := range r.nodes {
		aliases = append(aliases, string(a))
	}
	sort.Strings(aliases)
	for _, a := range aliases {
		if err := visit(Alias(a)); err != nil {
			return err
		}
	}
	return nil
}
