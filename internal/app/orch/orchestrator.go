package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Strangers/internal/app"
	"github.com/dkeye/Strangers/internal/app/sim"
	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/domain"
	"github.com/dkeye/Strangers/internal/protocol"
)

// Orchestrator drives sessions through matchmaking, relay and teardown.
// Construct one per process with New and call Shutdown on exit.
type Orchestrator struct {
	Registry *app.Registry
	Sim      *sim.Engine
	Policy   app.Policy
	Events   core.EventSink

	ctx    context.Context
	cancel context.CancelFunc
}

func New(reg *app.Registry, engine *sim.Engine, policy app.Policy, events core.EventSink) *Orchestrator {
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	if events == nil {
		events = core.NopSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		Registry: reg,
		Sim:      engine,
		Policy:   policy,
		Events:   events,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect registers a new participant and starts looking for a partner.
func (o *Orchestrator) Connect(conn core.SignalConnection, user *domain.User, mode domain.Mode) *app.Session {
	sess := o.Registry.Register(conn, user, mode)
	o.Events.Connected(mode)
	o.send(sess, protocol.NewConnected(string(sess.ID)))
	o.match(sess)
	return sess
}

// Disconnect tears down everything the session holds. It is safe to call
// more than once.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	o.DisconnectPartner(sid)
	sess, ok := o.Registry.Get(sid)
	if !ok {
		return
	}
	peer, removed := o.Registry.Remove(sid)
	if !removed {
		return
	}
	o.notifyDisconnected(peer)
	o.Events.Disconnected(sess.Mode)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
}

// Shutdown cancels and awaits every simulated partner.
func (o *Orchestrator) Shutdown() {
	o.cancel()
	o.Registry.Shutdown()
}

func (o *Orchestrator) send(sess *app.Session, v any) {
	b, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return
	}
	if err := sess.Signal().TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sess.ID)).Msg("send dropped")
	}
}
