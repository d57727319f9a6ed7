package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/domain"
)

// Registry owns the session table and the per-mode waiting queues.
// One mutex guards both, so every scan-and-mutate is atomic.
type Registry struct {
	mu       sync.Mutex
	sessions map[core.SessionID]*Session
	queues   map[domain.Mode][]core.SessionID
	newID    func() core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*Session),
		queues:   make(map[domain.Mode][]core.SessionID),
		newID:    func() core.SessionID { return core.SessionID(uuid.NewString()) },
	}
}

func (r *Registry) Register(conn core.SignalConnection, user *domain.User, mode domain.Mode) *Session {
	s := &Session{
		ID:   r.newID(),
		User: user,
		Mode: mode,
		conn: conn,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(s.ID)).Str("mode", string(mode)).Msg("registered session")
	return s
}

func (r *Registry) Get(sid core.SessionID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove deletes the session, drops it from its queue and stops its
// background task. A still-linked human partner is unlinked and returned
// so the caller can notify it. Removing twice is a no-op.
func (r *Registry) Remove(sid core.SessionID) (peer *Session, removed bool) {
	r.mu.Lock()
	s, ok := r.sessions[sid]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	peer, stops := r.unpairLocked(s)
	r.dequeueLocked(s)
	delete(r.sessions, sid)
	r.mu.Unlock()

	stopAll(stops)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed session")
	return peer, true
}

// Shutdown stops every background task. Sessions stay registered until
// their transports close.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	stops := make([]core.Task, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.task != nil {
			stops = append(stops, s.task)
			s.task = nil
		}
	}
	r.mu.Unlock()
	stopAll(stops)
	log.Info().Str("module", "app.registry").Int("tasks", len(stops)).Msg("stopped background tasks")
}

// Waiting returns a copy of the queue for mode.
func (r *Registry) Waiting(mode domain.Mode) []core.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.SessionID(nil), r.queues[mode]...)
}

// UserView is the admin-facing view of one session.
type UserView struct {
	Nickname     string      `json:"nickname"`
	Mode         domain.Mode `json:"mode"`
	HasPartner   bool        `json:"has_partner"`
	PartnerIsBot bool        `json:"partner_is_bot"`
}

// Snapshot holds live counts at one instant.
type Snapshot struct {
	Total         int
	TextMode      int
	VideoMode     int
	Waiting       int
	WithHuman     int
	WithSimulated int
	TextQueue     int
	VideoQueue    int
	Users         []UserView
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := lo.Values(r.sessions)
	return Snapshot{
		Total:         len(all),
		TextMode:      lo.CountBy(all, func(s *Session) bool { return s.Mode == domain.ModeText }),
		VideoMode:     lo.CountBy(all, func(s *Session) bool { return s.Mode == domain.ModeVideo }),
		Waiting:       lo.CountBy(all, func(s *Session) bool { return s.partner.IsNone() }),
		WithHuman:     lo.CountBy(all, func(s *Session) bool { return s.partner.Kind() == core.PartnerReal }),
		WithSimulated: lo.CountBy(all, func(s *Session) bool { return s.partner.Kind() == core.PartnerSimulated }),
		TextQueue:     len(r.queues[domain.ModeText]),
		VideoQueue:    len(r.queues[domain.ModeVideo]),
		Users: lo.Map(all, func(s *Session, _ int) UserView {
			return UserView{
				Nickname:     s.Nickname(),
				Mode:         s.Mode,
				HasPartner:   !s.partner.IsNone(),
				PartnerIsBot: s.partner.Kind() == core.PartnerSimulated,
			}
		}),
	}
}

func (r *Registry) dequeueLocked(s *Session) {
	r.queues[s.Mode] = lo.Without(r.queues[s.Mode], s.ID)
}

func stopAll(tasks []core.Task) {
	for _, t := range tasks {
		t.Stop()
	}
}
