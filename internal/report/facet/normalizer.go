// Package facet normalizes raw multi-valued filter input into facet selections and a date range.
package facet

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
)

// Kind describes how a facet's raw values are validated.
type Kind int

const (
	// IDs are positive integer identifiers; non-numeric values are dropped.
	IDs Kind = iota
	// Strings are free-form tokens such as ticket types.
	Strings
	// Enum is a single status token; "all", absent or unknown means no restriction.
	Enum
)

// Definition declares one facet accepted from request input.
type Definition struct {
	Name    domain.FacetName
	Kind    Kind
	Allowed []string
}

// Definitions are the facets accepted by every report.
var Definitions = []Definition{
	{Name: domain.FacetEvent, Kind: IDs},
	{Name: domain.FacetVenue, Kind: IDs},
	{Name: domain.FacetCity, Kind: IDs},
	{Name: domain.FacetCategory, Kind: IDs},
	{Name: domain.FacetTicketType, Kind: Strings},
	{Name: domain.FacetSlotStatus, Kind: Enum, Allowed: []string{StatusActive, StatusInactive}},
	{Name: domain.FacetCheckedIn, Kind: Enum, Allowed: []string{CheckedInYes, CheckedInNo}},
}

// Request keys and reserved tokens.
const (
	AllToken   = "all"
	AppliedKey = "applied"
	RangeKey   = "range"
	StartKey   = "start"
	EndKey     = "end"
	PageKey    = "page"

	StatusActive   = "active"
	StatusInactive = "inactive"
	CheckedInYes   = "yes"
	CheckedInNo    = "no"
)

// Normalizer turns request input into a domain.FilterState.
type Normalizer struct {
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
	defs     []Definition
}

type Option func(*Normalizer)

func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithLocation sets the time zone calendar ranges are computed in.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		logger:   zap.NewNop(),
		location: time.UTC,
		now:      time.Now,
		defs:     Definitions,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize builds the filter state for one report request. The form marker AppliedKey
// distinguishes the first/default view from a submitted filter form.
func (n *Normalizer) Normalize(tenantID int64, values url.Values) (domain.FilterState, error) {
	if tenantID <= 0 {
		return domain.FilterState{}, domain.NewError(domain.KindMissingTenant, "tenant id is required")
	}
	if values == nil {
		values = url.Values{}
	}
	defaultView := !values.Has(AppliedKey)

	facets := make(map[domain.FacetName]domain.FacetSelection, len(n.defs))
	for _, def := range n.defs {
		facets[def.Name] = n.Selection(def, values, defaultView)
	}

	return domain.FilterState{
		TenantID: tenantID,
		Range:    n.DateRange(values.Get(RangeKey), values.Get(StartKey), values.Get(EndKey)),
		Facets:   facets,
		Now:      n.now().In(n.location),
	}, nil
}

// Selection normalizes one facet.
func (n *Normalizer) Selection(def Definition, values url.Values, defaultView bool) domain.FacetSelection {
	raw, present := lookup(values, string(def.Name))
	tokens := split(raw)

	if def.Kind == Enum {
		if present && len(tokens) == 0 {
			return domain.SelectNoValues()
		}
		return n.enumSelection(def, tokens)
	}

	if !present {
		// Unchecked boxes are not submitted, so absence only means "all" on the first view.
		if defaultView {
			return domain.SelectAllValues()
		}
		return domain.SelectNoValues()
	}
	if len(tokens) == 0 {
		return domain.SelectNoValues()
	}
	for _, tok := range tokens {
		if strings.EqualFold(tok, AllToken) {
			return domain.SelectAllValues()
		}
	}
	if def.Kind == Strings {
		return domain.SelectValues(tokens...)
	}

	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil || id <= 0 {
			n.logger.Debug("dropping invalid facet value",
				zap.String("facet", string(def.Name)),
				zap.String("value", tok),
				zap.String("kind", string(domain.KindInvalidFacetValue)))
			continue
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	// Every submitted value was invalid: the user picked something that matches nothing.
	return domain.SelectValues(ids...)
}

func (n *Normalizer) enumSelection(def Definition, tokens []string) domain.FacetSelection {
	picked := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		if tok == AllToken {
			return domain.SelectAllValues()
		}
		if !contains(def.Allowed, tok) {
			n.logger.Debug("ignoring unknown status value",
				zap.String("facet", string(def.Name)),
				zap.String("value", tok))
			continue
		}
		picked = append(picked, tok)
	}
	sel := domain.SelectValues(picked...)
	if sel.Mode() != domain.SelectExplicit || len(sel.Values()) == len(def.Allowed) {
		return domain.SelectAllValues()
	}
	return sel
}

// Page parses the 1-based detail page number, defaulting to 1.
func Page(values url.Values) int {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get(PageKey)))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return math.MaxInt
	}
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// lookup accepts both "event" and the form-style "event[]" keys.
func lookup(values url.Values, key string) ([]string, bool) {
	var out []string
	present := false
	for _, k := range []string{key, key + "[]"} {
		if vs, ok := values[k]; ok {
			present = true
			out = append(out, vs...)
		}
	}
	return out, present
}

func split(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
