// Package sim impersonates a stranger when no human is available.
package sim

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Strangers/internal/protocol"
)

type State int32

const (
	StateIdle State = iota
	StateAssigned
	StateGreeting
	StateConversing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAssigned:
		return "assigned"
	case StateGreeting:
		return "greeting"
	case StateConversing:
		return "conversing"
	default:
		return "terminated"
	}
}

// Host is the session side of a persona.
type Host interface {
	// Claim links the persona to its session if the session is still
	// unmatched. It is called once, after the grace delay.
	Claim(p *Persona, name string) bool
	// Linked reports whether the session still talks to p.
	Linked(p *Persona) bool
	// Deliver sends a frame to the human.
	Deliver(p *Persona, v any) error
}

type Engine struct {
	script *Script
	timing Timing
	rnd    Rand
	sleep  Sleeper
}

func NewEngine(script *Script, timing Timing, rnd Rand, sleep Sleeper) *Engine {
	return &Engine{script: script, timing: timing, rnd: rnd, sleep: sleep}
}

// Persona is one simulated partner bound to one session. Its conversation
// loop and every reply run on a task group that Stop cancels and awaits.
type Persona struct {
	e    *Engine
	host Host

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	name    string
	wg      conc.WaitGroup

	state atomic.Int32
}

// New prepares a persona in the idle state; Start runs it.
func (e *Engine) New(ctx context.Context, host Host) *Persona {
	ctx, cancel := context.WithCancel(ctx)
	return &Persona{
		e:      e,
		host:   host,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Name is empty until the persona is assigned after the grace delay.
func (p *Persona) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *Persona) State() State { return State(p.state.Load()) }

func (p *Persona) Start() { p.spawn(p.run) }

// Reply answers a message from the human on its own schedule, alongside
// the conversation loop.
func (p *Persona) Reply(text string) {
	p.spawn(func() { p.reply(text) })
}

// Stop cancels every pending timer and waits for all sends to settle.
func (p *Persona) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	if r := p.wg.WaitAndRecover(); r != nil {
		log.Error().Str("module", "sim").Str("persona", p.Name()).Str("panic", r.String()).Msg("persona task panicked")
	}
	p.state.Store(int32(StateTerminated))
}

func (p *Persona) spawn(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.wg.Go(fn)
}

func (p *Persona) run() {
	defer p.state.Store(int32(StateTerminated))
	t := p.e.timing

	if !p.wait(t.Grace) {
		return
	}
	name := p.e.script.Name(p.e.rnd)
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
	if !p.host.Claim(p, name) {
		return
	}
	p.state.Store(int32(StateAssigned))
	if !p.send(protocol.NewPartnerFound(p.Name(), false)) || !p.wait(t.Opening) {
		return
	}

	p.state.Store(int32(StateGreeting))
	if !p.compose(t.Typing) || !p.send(protocol.NewChatMessage(p.Name(), p.e.script.Greeting(p.e.rnd))) {
		return
	}

	p.state.Store(int32(StateConversing))
	for count := 0; count < t.MaxFollowUps; count++ {
		if !p.wait(t.FollowUp) || !p.host.Linked(p) {
			return
		}
		if !p.compose(t.FollowUpTyping) || !p.send(protocol.NewChatMessage(p.Name(), p.e.script.FollowUp(p.e.rnd))) {
			return
		}
	}
	log.Debug().Str("module", "sim").Str("persona", p.Name()).Msg("persona went quiet")
}

func (p *Persona) reply(text string) {
	t := p.e.timing
	if !p.wait(Range{Min: t.think(text, p.e.rnd)}) || !p.host.Linked(p) {
		return
	}
	if !p.compose(t.ReplyTyping) {
		return
	}
	p.send(protocol.NewChatMessage(p.Name(), p.e.script.Reply(text, p.Name(), p.e.rnd)))
}

// compose shows the typing indicator for a while.
func (p *Persona) compose(r Range) bool {
	return p.send(protocol.NewSignal(protocol.TypeTyping)) &&
		p.wait(r) &&
		p.send(protocol.NewSignal(protocol.TypeStopTyping))
}

func (p *Persona) wait(r Range) bool {
	return p.e.sleep.Sleep(p.ctx, r.Pick(p.e.rnd)) == nil
}

// send reports whether the persona may go on. Delivery errors are
// dropped: a persona never fails its session.
func (p *Persona) send(v any) bool {
	if p.ctx.Err() != nil {
		return false
	}
	if err := p.host.Deliver(p, v); err != nil {
		log.Debug().Err(err).Str("module", "sim").Str("persona", p.Name()).Msg("deliver dropped")
	}
	return p.ctx.Err() == nil
}
