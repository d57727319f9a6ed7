package core

import "github.com/dkeye/Strangers/internal/domain"

type SessionID string

// Task is a background process owned by one session.
// Stop cancels it and waits for it to exit; calling it twice is safe.
type Task interface {
	Stop()
}

// PairKind labels what a session was paired with.
type PairKind string

const (
	PairHuman     PairKind = "human"
	PairSimulated PairKind = "simulated"
)

// EventSink observes lifecycle events. The core never depends on what
// the sink does with them.
type EventSink interface {
	Visited()
	Connected(mode domain.Mode)
	Disconnected(mode domain.Mode)
	MessageReceived()
	Paired(kind PairKind)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Visited() {}

func (NopSink) Connected(domain.Mode) {}

func (NopSink) Disconnected(domain.Mode) {}

func (NopSink) MessageReceived() {}

func (NopSink) Paired(PairKind) {}
