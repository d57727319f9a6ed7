package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownMode = errors.New("unknown mode")

// Mode selects the waiting queue a participant joins.
type Mode string

const (
	ModeText  Mode = "text"
	ModeVideo Mode = "video"
)

// Modes lists every mode in queue order.
var Modes = []Mode{ModeText, ModeVideo}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeText, ModeVideo:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// HasSimulatedFallback reports whether an unmatched participant in this mode
// may be given a simulated partner.
func (m Mode) HasSimulatedFallback() bool { return m == ModeText }
