package domain

import (
	"sort"
	"time"
)

// ReportKind names the top-level entity a report is grouped by.
type ReportKind string

const (
	ReportKindEvents ReportKind = "events"
	ReportKindVenues ReportKind = "venues"
)

// FacetName identifies one independently selectable filter dimension.
type FacetName string

const (
	FacetEvent      FacetName = "event"
	FacetVenue      FacetName = "venue"
	FacetCity       FacetName = "city"
	FacetCategory   FacetName = "category"
	FacetTicketType FacetName = "ticket_type"
	FacetSlotStatus FacetName = "slot_status"
	FacetCheckedIn  FacetName = "checked_in"
)

// SelectionMode is the normalized meaning of a facet's raw input.
type SelectionMode int

const (
	SelectAll SelectionMode = iota
	SelectNone
	SelectExplicit
)

func (m SelectionMode) String() string {
	switch m {
	case SelectNone:
		return "none"
	case SelectExplicit:
		return "explicit"
	default:
		return "all"
	}
}

// FacetSelection is ALL, NONE or an explicit value set. The zero value is ALL.
type FacetSelection struct {
	mode   SelectionMode
	values []string
}

// SelectAllValues returns the unrestricted selection.
func SelectAllValues() FacetSelection { return FacetSelection{mode: SelectAll} }

// SelectNoValues returns the selection that must match zero rows.
func SelectNoValues() FacetSelection { return FacetSelection{mode: SelectNone} }

// SelectValues returns an explicit selection. Values are de-duplicated and sorted so equal
// inputs always compile to identical SQL. An empty value list yields NONE.
func SelectValues(values ...string) FacetSelection {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return SelectNoValues()
	}
	sort.Strings(out)
	return FacetSelection{mode: SelectExplicit, values: out}
}

func (s FacetSelection) Mode() SelectionMode { return s.mode }

// Values returns a copy of the explicit values.
func (s FacetSelection) Values() []string {
	return append([]string(nil), s.values...)
}

// RangeMode is the date-range token chosen by the user.
type RangeMode string

const (
	RangeToday     RangeMode = "today"
	RangeYesterday RangeMode = "yesterday"
	RangeWeekly    RangeMode = "weekly"
	RangeMonthly   RangeMode = "monthly"
	RangeQuarterly RangeMode = "quarterly"
	RangeCustom    RangeMode = "custom"
)

// DateRange is a half-open [Start, End) interval over booking time.
type DateRange struct {
	Mode     RangeMode `json:"mode"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	FellBack bool      `json:"fell_back"`
}

// FilterState is the single source of truth shared by every query of one report.
type FilterState struct {
	TenantID int64
	Range    DateRange
	Facets   map[FacetName]FacetSelection
	// Now anchors time-relative facets such as slot status.
	Now time.Time
}

// Selection returns the facet's selection, ALL when unset.
func (f FilterState) Selection(name FacetName) FacetSelection {
	if f.Facets == nil {
		return SelectAllValues()
	}
	return f.Facets[name]
}
