package app

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a session whose transport cannot keep up
// with relayed frames.
type Policy interface {
	OnBackPressure(slow *Session) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(*Session) BackpressureAction {
	return KickMember
}
