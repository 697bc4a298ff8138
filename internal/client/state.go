// Package client keeps a local cache of helpdesk data between CLI runs and
// keeps it in step with the API server.
package client

import (
	"slices"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
)

const (
	// StateKey is the single key the whole state blob is stored under.
	StateKey = "helpdesk_state"
	// LegacyStateKey is removed on load.
	LegacyStateKey = "skillvision_state"

	// DefaultActivityLimit caps the activity log when no limit is configured.
	DefaultActivityLimit = 200
)

// UserSession is the logged-in user plus the bearer token issued at login.
type UserSession struct {
	domain.Profile `yaml:",inline"`
	Token          string    `json:"token" yaml:"-"`
	ExpiresAt      time.Time `json:"expires_at" yaml:"expires_at"`
}

// Activity is one entry of the activity log.
type Activity struct {
	ID   string    `json:"id" yaml:"id"`
	Msg  string    `json:"msg" yaml:"msg"`
	Time time.Time `json:"time" yaml:"time"`
}

// State is everything the client persists.
type State struct {
	User     *UserSession    `json:"user,omitempty" yaml:"user,omitempty"`
	Tickets  []domain.Ticket `json:"tickets" yaml:"tickets"`
	Agents   []domain.Agent  `json:"agents" yaml:"agents"`
	Activity []Activity      `json:"activity" yaml:"activity"`
	Filters  query.Filters   `json:"filters" yaml:"filters"`
	Sort     query.Sort      `json:"sort" yaml:"sort"`
}

// DefaultState is the state of a client that has never run.
func DefaultState() State {
	return State{
		Tickets:  []domain.Ticket{},
		Agents:   []domain.Agent{},
		Activity: []Activity{},
		Filters:  query.DefaultFilters(),
		Sort:     query.DefaultSort(),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.Tickets = slices.Clone(s.Tickets)
	out.Agents = slices.Clone(s.Agents)
	out.Activity = slices.Clone(s.Activity)
	return out
}

// normalize trims an activity log longer than limit. Keys missing from older
// blobs already hold their defaults because Load decodes over DefaultState;
// values that are present, an empty sort key included, are kept as stored.
func (s *State) normalize(limit int) {
	if len(s.Activity) > limit {
		s.Activity = s.Activity[:limit]
	}
}
