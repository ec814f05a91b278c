// Package joingraph holds the static registry of joinable relations used by report queries and
// resolves a requested alias set into a dependency-ordered join plan.
package joingraph

import (
	"fmt"
	"strings"
)

// Alias names a relation role inside one query's join plan.
type Alias string

const (
	Tickets          Alias = "tl"
	Schedules        Alias = "sch"
	Events           Alias = "ev"
	Venues           Alias = "ven"
	Cities           Alias = "cty"
	Categories       Alias = "cat"
	TicketCategories Alias = "tc"
	PromoCodes       Alias = "pc"
	PaymentMethods   Alias = "pm"
	Commissions      Alias = "cm"
)

// JoinKind selects INNER or LEFT join semantics.
type JoinKind int

const (
	Inner JoinKind = iota
	Left
)

func (k JoinKind) String() string {
	if k == Left {
		return "LEFT JOIN"
	}
	return "JOIN"
}

// Scope renders aliases and parameter names for one (sub)query. The root scope has an empty
// prefix; nested scopes rewrite every alias and parameter with their prefix so a filter can be
// repeated inside a correlated subquery without clashing with the outer query.
type Scope struct {
	Prefix string
}

// Root is the scope of the outermost query.
var Root = Scope{}

// Nested returns the scope for the n-th nested copy of a filter.
func Nested(n int) Scope {
	return Scope{Prefix: fmt.Sprintf("n%d_", n)}
}

// Alias returns the rendered name of a in this scope.
func (s Scope) Alias(a Alias) string { return s.Prefix + string(a) }

// Param returns the rendered parameter name in this scope.
func (s Scope) Param(name string) string { return s.Prefix + name }

// Expand replaces every {name} token in template with the scoped name. Alias tokens ({tl}) and
// parameter tokens (@{event_0}) share the same syntax.
func (s Scope) Expand(template string) string {
	if !strings.Contains(template, "{") {
		return template
	}
	var b strings.Builder
	b.Grow(len(template) + 8)
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			break
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			b.WriteString(template)
			break
		}
		b.WriteString(template[:open])
		b.WriteString(s.Prefix)
		b.WriteString(template[open+1 : open+end])
		template = template[open+end+1:]
	}
	return b.String()
}
