package sim

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Rand is the randomness the engine draws from. Implementations must be
// safe for concurrent use.
type Rand interface {
	IntN(n int) int
	Int64N(n int64) int64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a deterministic source for the given seeds.
func NewRand(seed1, seed2 uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// DefaultRand is seeded from the runtime's random source.
func DefaultRand() Rand {
	return NewRand(rand.Uint64(), rand.Uint64())
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper waits on a real timer.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Range is a closed-open interval of durations picked uniformly.
type Range struct {
	Min time.Duration
	Max time.Duration
}

func (r Range) Pick(rnd Rand) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rnd.Int64N(int64(r.Max-r.Min)))
}

type Timing struct {
	// Grace is how long an unmatched session waits for a human.
	Grace          Range
	Opening        Range
	Typing         Range
	FollowUp       Range
	FollowUpTyping Range
	MaxFollowUps   int

	ReplyPerChar  time.Duration
	ReplyJitter   Range
	ReplyThinkMax time.Duration
	ReplyTyping   Range
}

func DefaultTiming() Timing {
	return Timing{
		Grace:          Range{3 * time.Second, 6 * time.Second},
		Opening:        Range{2 * time.Second, 4 * time.Second},
		Typing:         Range{1 * time.Second, 2 * time.Second},
		FollowUp:       Range{8 * time.Second, 15 * time.Second},
		FollowUpTyping: Range{1500 * time.Millisecond, 3 * time.Second},
		MaxFollowUps:   3,
		ReplyPerChar:   50 * time.Millisecond,
		ReplyJitter:    Range{1 * time.Second, 2 * time.Second},
		ReplyThinkMax:  4 * time.Second,
		ReplyTyping:    Range{1 * time.Second, 2 * time.Second},
	}
}

// think is the pause before the persona starts composing a reply.
func (t Timing) think(text string, rnd Rand) time.Duration {
	d := time.Duration(len([]rune(text)))*t.ReplyPerChar + t.ReplyJitter.Pick(rnd)
	return min(d, t.ReplyThinkMax)
}
