package querybuild

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/joingraph"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/predicate"
)

// Foundation is the filtered row set every query of a family is built on: a resolved join
// plan plus the predicate set.
type Foundation struct {
	def   ReportDefinition
	plan  joingraph.Plan
	preds predicate.Set
}

// Plan returns the resolved join plan.
func (f *Foundation) Plan() joingraph.Plan { return f.plan }

// Predicates returns the predicate set.
func (f *Foundation) Predicates() predicate.Set { return f.preds }

// Rowset returns a column-less SELECT over the filtered rows in scope s.
func (f *Foundation) Rowset(s joingraph.Scope) (sq.SelectBuilder, predicate.Params, error) {
	where, params, err := f.preds.Where(s)
	if err != nil {
		return sq.SelectBuilder{}, nil, err
	}
	b := sq.Select().From(f.plan.From(s))
	for _, clause := range f.plan.Clauses(s) {
		b = b.JoinClause(clause)
	}
	if where != "" {
		b = b.Where(where)
	}
	return b, params, nil
}

// EntityKey is the entity id expression in scope s.
func (f *Foundation) EntityKey(s joingraph.Scope) string { return s.Expand(f.def.Key.Template()) }

// EntityName is the entity label expression in scope s.
func (f *Foundation) EntityName(s joingraph.Scope) string { return s.Expand(f.def.Name.Template()) }

// Col renders a {alias} template in scope s.
func (f *Foundation) Col(s joingraph.Scope, template string) string { return s.Expand(template) }

// requireAggregateSafe rejects plans that join one-to-many relations directly.
func requireAggregateSafe(plan joingraph.Plan) error {
	if fan := plan.FanOut(); len(fan) > 0 {
		return domain.NewError(domain.KindFanoutJoin, "aggregate plan joins one-to-many alias %q directly", fan[0])
	}
	return nil
}
