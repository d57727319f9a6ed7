package orch

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Strangers/internal/app"
	"github.com/dkeye/Strangers/internal/app/sim"
	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/protocol"
)

var errSessionGone = errors.New("session gone")

// match pairs sess with a waiting human, or arms a simulated partner for
// text sessions that stay alone through the grace delay.
func (o *Orchestrator) match(sess *app.Session) {
	if partner, ok := o.Registry.FindPartner(sess.ID); ok {
		o.send(sess, protocol.NewPartnerFound(partner.Nickname(), true))
		o.send(partner, protocol.NewPartnerFound(sess.Nickname(), false))
		o.Events.Paired(core.PairHuman)
		return
	}
	if !sess.Mode.HasSimulatedFallback() || o.Sim == nil {
		return
	}
	p := o.Sim.New(o.ctx, simHost{o: o, sid: sess.ID})
	if !o.Registry.AttachTask(sess.ID, p) {
		p.Stop()
		return
	}
	p.Start()
}

// DisconnectPartner clears the session's link. A human partner is told
// once that it was left.
func (o *Orchestrator) DisconnectPartner(sid core.SessionID) *app.Session {
	peer := o.Registry.Unpair(sid)
	o.notifyDisconnected(peer)
	return peer
}

// Next drops the current partner and searches again. A human left behind
// goes back to matching as well.
func (o *Orchestrator) Next(sid core.SessionID) {
	sess, ok := o.Registry.Get(sid)
	if !ok {
		return
	}
	peer := o.DisconnectPartner(sid)
	o.send(sess, protocol.NewSearching())
	o.match(sess)
	if peer != nil {
		o.match(peer)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("next")
}

func (o *Orchestrator) notifyDisconnected(peer *app.Session) {
	if peer == nil {
		return
	}
	o.send(peer, protocol.NewSignal(protocol.TypePartnerDisconnected))
}

// simHost binds a persona to one session.
type simHost struct {
	o   *Orchestrator
	sid core.SessionID
}

func (h simHost) Claim(p *sim.Persona, name string) bool {
	if !h.o.Registry.ClaimSimulated(h.sid, p, name) {
		return false
	}
	h.o.Events.Paired(core.PairSimulated)
	return true
}

func (h simHost) Linked(p *sim.Persona) bool {
	return h.o.Registry.SimulatedLinked(h.sid, p)
}

func (h simHost) Deliver(_ *sim.Persona, v any) error {
	sess, ok := h.o.Registry.Get(h.sid)
	if !ok {
		return errSessionGone
	}
	b, err := protocol.Encode(v)
	if err != nil {
		return err
	}
	return sess.Signal().TrySend(b)
}
