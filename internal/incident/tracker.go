// Package incident collapses per-frame observations of a tracked subject
// into incidents, so each continuous violation yields a single alert.
package incident

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// DefaultRetryInterval bounds how often an unrecorded incident is re-emitted
const DefaultRetryInterval = time.Second

// Identity is who a track has been resolved to. Known=false is Unknown.
type Identity struct {
	EmployeeID string
	Known      bool
}

type PPEState int

const (
	PPEIdle PPEState = iota
	PPEViolating
)

func (s PPEState) String() string {
	if s == PPEViolating {
		return "VIOLATING"
	}
	return "IDLE"
}

type AccessState int

const (
	AccessIdle AccessState = iota
	AccessUnauthorized
)

func (s AccessState) String() string {
	if s == AccessUnauthorized {
		return "UNAUTHORIZED"
	}
	return "IDLE"
}

// Incident is handed to the recorder. The same ID is re-emitted until the
// caller confirms it was recorded.
type Incident struct {
	ID         uuid.UUID
	Kind       domain.AlertKind
	TrackID    string
	Identity   Identity
	Violation  domain.ViolationSet
	OpenedAt   time.Time
	CapturedAt time.Time
	Attempt    int
}

type openIncident struct {
	incident    Incident
	confirmed   bool
	lastAttempt time.Time
}

type session struct {
	identity Identity
	ppe      *openIncident
	access   *openIncident
	firstAt  time.Time
	lastSeen time.Time
}

// Tracker owns the sessions of one camera. It is not safe for concurrent
// use; each camera worker keeps its own.
type Tracker struct {
	grace         time.Duration
	retryInterval time.Duration
	sessions      map[string]*session
	newID         func() uuid.UUID
	logger        *slog.Logger
}

type Option func(*Tracker)

func WithRetryInterval(d time.Duration) Option {
	return func(t *Tracker) { t.retryInterval = d }
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(t *Tracker) { t.newID = fn }
}

func NewTracker(grace time.Duration, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		grace:         grace,
		retryInterval: DefaultRetryInterval,
		sessions:      make(map[string]*session),
		newID:         uuid.New,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seen registers a detection of trackID at time at and returns the identity
// the track resolves to. A gap longer than the grace period starts a fresh
// session. A known identity survives later Unknown frames; a different known
// employee replaces it and discards the previous person's incidents.
func (t *Tracker) Seen(trackID string, id Identity, at time.Time) Identity {
	s, ok := t.sessions[trackID]
	if ok && at.Sub(s.lastSeen) > t.grace {
		t.logger.Debug("track reappeared after grace period, starting new session",
			"track_id", trackID,
			"gap", at.Sub(s.lastSeen),
		)
		ok = false
	}
	if !ok {
		s = &session{firstAt: at, lastSeen: at}
		t.sessions[trackID] = s
	}

	if id.Known {
		if s.identity.Known && s.identity.EmployeeID != id.EmployeeID {
			t.logger.Info("track identity changed, closing open incidents",
				"track_id", trackID,
				"from", s.identity.EmployeeID,
				"to", id.EmployeeID,
			)
			s.ppe = nil
			s.access = nil
		}
		s.identity = id
	}

	if at.After(s.lastSeen) {
		s.lastSeen = at
	}
	return s.identity
}

// ObservePPE feeds the violation set computed for a frame. It returns the
// incident to record, or nil when nothing needs recording. An empty set
// closes the open incident without an alert. Tracks without a known identity
// and tracks with an open unauthorized incident are not PPE-tracked.
func (t *Tracker) ObservePPE(trackID string, v domain.ViolationSet, at, capturedAt time.Time) *Incident {
	s, ok := t.sessions[trackID]
	if !ok || !s.identity.Known || s.access != nil {
		return nil
	}

	if v.Empty() {
		if s.ppe != nil {
			t.logger.Debug("ppe incident cleared", "track_id", trackID, "incident_id", s.ppe.incident.ID)
			s.ppe = nil
		}
		return nil
	}

	if s.ppe != nil && s.ppe.incident.Violation.Equal(v) {
		return t.retry(s.ppe, at)
	}

	s.ppe = t.open(domain.AlertKindPPE, trackID, s.identity, v, at, capturedAt)
	return t.emit(s.ppe, at)
}

// ObserveAccess feeds the authorization decision for a frame. The first
// unauthorized observation opens an incident; an authorized one closes it
// silently. Opening an access incident ends PPE tracking for the track.
func (t *Tracker) ObserveAccess(trackID string, unauthorized bool, at, capturedAt time.Time) *Incident {
	s, ok := t.sessions[trackID]
	if !ok {
		return nil
	}

	if !unauthorized {
		if s.access != nil {
			t.logger.Debug("access incident cleared", "track_id", trackID, "incident_id", s.access.incident.ID)
			s.access = nil
		}
		return nil
	}

	if s.access != nil {
		return t.retry(s.access, at)
	}

	s.ppe = nil
	s.access = t.open(domain.AlertKindUnauthorized, trackID, s.identity, nil, at, capturedAt)
	return t.emit(s.access, at)
}

// Confirm marks the incident as recorded so it is no longer re-emitted
func (t *Tracker) Confirm(trackID string, incidentID uuid.UUID) bool {
	s, ok := t.sessions[trackID]
	if !ok {
		return false
	}
	for _, open := range []*openIncident{s.ppe, s.access} {
		if open != nil && open.incident.ID == incidentID {
			open.confirmed = true
			return true
		}
	}
	return false
}

// Sweep drops sessions unseen for longer than the grace period. No alerts.
func (t *Tracker) Sweep(now time.Time) int {
	evicted := 0
	for trackID, s := range t.sessions {
		if now.Sub(s.lastSeen) > t.grace {
			delete(t.sessions, trackID)
			evicted++
		}
	}
	return evicted
}

// Reset discards every session without emitting anything
func (t *Tracker) Reset() int {
	n := len(t.sessions)
	clear(t.sessions)
	return n
}

// State reports the session state of a track
func (t *Tracker) State(trackID string) (PPEState, AccessState, bool) {
	s, ok := t.sessions[trackID]
	if !ok {
		return PPEIdle, AccessIdle, false
	}
	ppeState, accessState := PPEIdle, AccessIdle
	if s.ppe != nil {
		ppeState = PPEViolating
	}
	if s.access != nil {
		accessState = AccessUnauthorized
	}
	return ppeState, accessState, true
}

func (t *Tracker) Len() int {
	return len(t.sessions)
}

func (t *Tracker) open(kind domain.AlertKind, trackID string, id Identity, v domain.ViolationSet, at, capturedAt time.Time) *openIncident {
	if capturedAt.IsZero() {
		capturedAt = at
	}
	return &openIncident{
		incident: Incident{
			ID:         t.newID(),
			Kind:       kind,
			TrackID:    trackID,
			Identity:   id,
			Violation:  v,
			OpenedAt:   at,
			CapturedAt: capturedAt,
		},
	}
}

func (t *Tracker) emit(open *openIncident, at time.Time) *Incident {
	open.lastAttempt = at
	open.incident.Attempt++
	inc := open.incident
	return &inc
}

func (t *Tracker) retry(open *openIncident, at time.Time) *Incident {
	if open.confirmed || at.Sub(open.lastAttempt) < t.retryInterval {
		return nil
	}
	return t.emit(open, at)
}
