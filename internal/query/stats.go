package query

import (
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Stats are the dashboard and report counters for a ticket sequence.
type Stats struct {
	Total      int                           `json:"total" yaml:"total"`
	ByStatus   map[domain.TicketStatus]int   `json:"by_status" yaml:"by_status"`
	ByPriority map[domain.TicketPriority]int `json:"by_priority" yaml:"by_priority"`
	ByAgent    map[string]int                `json:"by_agent" yaml:"by_agent"`
}

// Summarize counts tickets per status, priority and agent. Unassigned
// tickets are counted under the empty agent name. Every known status and
// priority is present, possibly with a zero count.
func Summarize(tickets []domain.Ticket) Stats {
	stats := Stats{
		Total:      len(tickets),
		ByStatus:   make(map[domain.TicketStatus]int, len(domain.TicketStatuses)),
		ByPriority: make(map[domain.TicketPriority]int, len(domain.TicketPriorities)),
		ByAgent:    map[string]int{},
	}
	for _, s := range domain.TicketStatuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range domain.TicketPriorities {
		stats.ByPriority[p] = 0
	}
	for _, t := range tickets {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		stats.ByAgent[t.Agent]++
	}
	return stats
}

// Agents returns the agent names in the stats, sorted.
func (s Stats) Agents() []string {
	names := make([]string, 0, len(s.ByAgent))
	for name := range s.ByAgent {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
