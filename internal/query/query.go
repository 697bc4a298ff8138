// Package query filters and orders cached tickets for display. Everything
// here is pure: inputs are never mutated and nothing is persisted.
package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Filters narrows the visible tickets. Agent, Status and Priority match
// exactly; "all" or an empty value disables the constraint. Search is a
// case-insensitive substring of title or description.
type Filters struct {
	Agent    string `json:"agent" yaml:"agent"`
	Status   string `json:"status" yaml:"status"`
	Priority string `json:"priority" yaml:"priority"`
	Search   string `json:"search" yaml:"search"`
}

// DefaultFilters shows everything.
func DefaultFilters() Filters {
	return Filters{Agent: domain.FilterAll, Status: domain.FilterAll, Priority: domain.FilterAll}
}

// Sort keys.
const (
	KeyCreated     = "created"
	KeyID          = "id"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyPriority    = "priority"
	KeyStatus      = "status"
	KeyAgent       = "agent"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sort selects the ordering key and direction. Any order other than "asc"
// sorts descending.
type Sort struct {
	Key   string `json:"key" yaml:"key"`
	Order string `json:"order" yaml:"order"`
}

// DefaultSort shows newest tickets first.
func DefaultSort() Sort {
	return Sort{Key: KeyCreated, Order: OrderDesc}
}

// ValidKey reports whether key is a supported sort key.
func ValidKey(key string) bool {
	switch key {
	case KeyCreated, KeyID, KeyTitle, KeyDescription, KeyPriority, KeyStatus, KeyAgent:
		return true
	}
	return false
}

// Engine projects tickets using the collation rules of a language.
type Engine struct {
	tag language.Tag
}

// NewEngine returns an engine collating text for tag.
func NewEngine(tag language.Tag) *Engine {
	return &Engine{tag: tag}
}

// Project filters then stably sorts tickets with the root collation.
func Project(tickets []domain.Ticket, filters Filters, sort Sort) []domain.Ticket {
	return NewEngine(language.Und).Project(tickets, filters, sort)
}

// Project returns a new slice holding the tickets that pass filters, ordered
// by sort. Ties keep their input order, so applying Project to its own
// output is a no-op. An unknown sort key leaves the filtered order as is.
func (e *Engine) Project(tickets []domain.Ticket, filters Filters, sort Sort) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	search := strings.ToLower(filters.Search)
	for _, t := range tickets {
		if !matches(filters.Agent, t.Agent) ||
			!matches(filters.Status, string(t.Status)) ||
			!matches(filters.Priority, string(t.Priority)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}

	compare := e.comparator(sort.Key)
	if compare == nil {
		return out
	}
	if sort.Order != OrderAsc {
		asc := compare
		compare = func(a, b domain.Ticket) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func (e *Engine) comparator(key string) func(a, b domain.Ticket) int {
	switch key {
	case KeyCreated:
		return func(a, b domain.Ticket) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case KeyID:
		return func(a, b domain.Ticket) int { return cmp.Compare(a.ID, b.ID) }
	}

	field := textField(key)
	if field == nil {
		return nil
	}
	// Collators keep internal buffers and are not safe for concurrent use,
	// so each projection gets its own.
	coll := collate.New(e.tag)
	return func(a, b domain.Ticket) int { return coll.CompareString(field(a), field(b)) }
}

func textField(key string) func(domain.Ticket) string {
	switch key {
	case KeyTitle:
		return func(t domain.Ticket) string { return t.Title }
	case KeyDescription:
		return func(t domain.Ticket) string { return t.Description }
	case KeyPriority:
		return func(t domain.Ticket) string { return string(t.Priority) }
	case KeyStatus:
		return func(t domain.Ticket) string { return string(t.Status) }
	case KeyAgent:
		return func(t domain.Ticket) string { return t.Agent }
	}
	return nil
}

func matches(want, got string) bool {
	return want == "" || want == domain.FilterAll || want == got
}
