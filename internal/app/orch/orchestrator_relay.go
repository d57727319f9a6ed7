package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Strangers/internal/app"
	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/protocol"
)

// replier is implemented by simulated partners.
type replier interface {
	Reply(text string)
}

// OnFrame handles one inbound frame. Frames of one session must be passed
// in arrival order.
func (o *Orchestrator) OnFrame(sid core.SessionID, data core.Frame) {
	typ, err := protocol.Peek(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad frame")
		return
	}

	switch typ.Class() {
	case protocol.ClassChat:
		o.onChat(sid, data)
	case protocol.ClassTyping:
		o.onTyping(sid, typ)
	case protocol.ClassSignaling:
		o.Relay(sid, data)
	case protocol.ClassNext:
		o.Next(sid)
	case protocol.ClassPing:
		if sess, ok := o.Registry.Get(sid); ok {
			o.send(sess, protocol.NewSignal(protocol.TypePong))
		}
	default:
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("type", string(typ)).Msg("unknown frame")
	}
}

// Relay forwards data unchanged to the human partner of sid. It reports
// whether the frame was handed to the partner's transport.
func (o *Orchestrator) Relay(sid core.SessionID, data core.Frame) bool {
	rt, ok := o.Registry.Route(sid)
	if !ok {
		return false
	}
	return o.forward(rt, data)
}

func (o *Orchestrator) onChat(sid core.SessionID, data core.Frame) {
	text, err := protocol.DecodeChat(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad chat frame")
		return
	}
	rt, ok := o.Registry.Route(sid)
	if !ok {
		return
	}
	o.Events.MessageReceived()

	switch rt.Partner.Kind() {
	case core.PartnerReal:
		b, err := protocol.Encode(protocol.NewChatMessage(rt.Self.Nickname(), text))
		if err != nil {
			return
		}
		o.forward(rt, b)
	case core.PartnerSimulated:
		if r, ok := rt.Task.(replier); ok {
			r.Reply(text)
		}
	}
}

func (o *Orchestrator) onTyping(sid core.SessionID, typ protocol.Type) {
	rt, ok := o.Registry.Route(sid)
	if !ok || rt.Partner.Kind() != core.PartnerReal {
		// personas do not react to typing
		return
	}
	b, err := protocol.Encode(protocol.NewSignal(typ))
	if err != nil {
		return
	}
	o.forward(rt, b)
}

func (o *Orchestrator) forward(rt app.Route, data core.Frame) bool {
	if rt.Peer == nil {
		return false
	}
	err := rt.Peer.Signal().TrySend(data)
	if err == nil {
		return true
	}

	log.Warn().Err(err).Str("module", "orch").Str("sid", string(rt.Self.ID)).Str("dst_sid", string(rt.Peer.ID)).Msg("relay send failed")
	switch o.Policy.OnBackPressure(rt.Peer) {
	case app.KickMember:
		// the adapter's read loop exits and disconnects the peer
		rt.Peer.Signal().Close()
	case app.DropFrame, app.NoAction:
	}
	return false
}
