package app

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Strangers/internal/core"
)

// FindPartner pairs sid with the oldest eligible waiter of the same mode.
// Waiters that disconnected or already hold a partner are pruned; the
// human sid just left is skipped but stays queued. When nobody is eligible
// sid is queued (once) and ok is false.
func (r *Registry) FindPartner(sid core.SessionID) (partner *Session, ok bool) {
	r.mu.Lock()
	s, found := r.sessions[sid]
	if !found || !s.partner.IsNone() {
		r.mu.Unlock()
		return nil, false
	}

	queue := r.queues[s.Mode]
	kept := make([]core.SessionID, 0, len(queue))
	for _, cand := range queue {
		c, alive := r.sessions[cand]
		if !alive || !c.partner.IsNone() {
			continue
		}
		if partner == nil && cand != sid && cand != s.lastPartner {
			partner = c
			continue
		}
		kept = append(kept, cand)
	}

	if partner == nil {
		if !lo.Contains(kept, sid) {
			kept = append(kept, sid)
		}
		r.queues[s.Mode] = kept
		r.mu.Unlock()
		log.Info().Str("module", "app.matchmaker").Str("sid", string(sid)).Str("mode", string(s.Mode)).Int("waiting", len(kept)).Msg("queued")
		return nil, false
	}

	r.queues[s.Mode] = lo.Without(kept, sid)
	s.partner = core.RealPartner(partner.ID)
	partner.partner = core.RealPartner(s.ID)
	s.lastPartner, partner.lastPartner = "", ""
	stops := lo.Compact([]core.Task{s.task, partner.task})
	s.task, partner.task = nil, nil
	r.mu.Unlock()

	// a waiter may still be in its grace delay
	stopAll(stops)
	log.Info().Str("module", "app.matchmaker").Str("sid", string(sid)).Str("partner", string(partner.ID)).Msg("paired")
	return partner, true
}

// AttachTask hands an unpaired session its simulated-partner task,
// replacing any previous one.
func (r *Registry) AttachTask(sid core.SessionID, t core.Task) bool {
	r.mu.Lock()
	s, ok := r.sessions[sid]
	if !ok || !s.partner.IsNone() {
		r.mu.Unlock()
		return false
	}
	old := s.task
	s.task = t
	r.mu.Unlock()
	if old != nil && old != t {
		old.Stop()
	}
	return true
}

// ClaimSimulated links sid to a persona if t is still its task and it is
// still unmatched.
func (r *Registry) ClaimSimulated(sid core.SessionID, t core.Task, persona string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok || s.task != t || !s.partner.IsNone() {
		return false
	}
	r.dequeueLocked(s)
	s.partner = core.SimulatedPartner(persona)
	s.lastPartner = ""
	log.Info().Str("module", "app.matchmaker").Str("sid", string(sid)).Str("persona", persona).Msg("paired with simulated partner")
	return true
}

// SimulatedLinked reports whether t still drives sid's simulated partner.
func (r *Registry) SimulatedLinked(sid core.SessionID, t core.Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	return ok && s.task == t && s.partner.Kind() == core.PartnerSimulated
}

// Route is what the relay needs to know about a sender.
type Route struct {
	Self    *Session
	Partner core.Partner
	// Peer is set only while a real partner is still registered.
	Peer *Session
	Task core.Task
}

func (r *Registry) Route(sid core.SessionID) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return Route{}, false
	}
	rt := Route{Self: s, Partner: s.partner, Task: s.task}
	if psid, real := s.partner.Real(); real {
		rt.Peer = r.sessions[psid]
	}
	return rt, true
}

// PartnerOf returns the current partner reference of sid.
func (r *Registry) PartnerOf(sid core.SessionID) core.Partner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		return s.partner
	}
	return core.NoPartner
}

// Unpair clears sid's partner link on both sides and stops the tasks of
// both sessions. It returns the human partner that lost its link, at most
// once per link. Unpairing an idle session forgets its last partner.
func (r *Registry) Unpair(sid core.SessionID) *Session {
	r.mu.Lock()
	s, ok := r.sessions[sid]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if s.partner.IsNone() {
		s.lastPartner = ""
	}
	peer, stops := r.unpairLocked(s)
	r.mu.Unlock()
	stopAll(stops)
	if peer != nil {
		log.Info().Str("module", "app.matchmaker").Str("sid", string(sid)).Str("partner", string(peer.ID)).Msg("unpaired")
	}
	return peer
}

func (r *Registry) unpairLocked(s *Session) (peer *Session, stops []core.Task) {
	if psid, real := s.partner.Real(); real {
		s.lastPartner = psid
		if p, ok := r.sessions[psid]; ok {
			if back, _ := p.partner.Real(); back == s.ID {
				p.partner = core.NoPartner
				p.lastPartner = s.ID
				peer = p
				if p.task != nil {
					stops = append(stops, p.task)
					p.task = nil
				}
			}
		}
	}
	if s.task != nil {
		stops = append(stops, s.task)
		s.task = nil
	}
	s.partner = core.NoPartner
	return peer, stops
}
