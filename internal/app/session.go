package app

import (
	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/domain"
)

// Session is one connected participant. Identity fields are immutable;
// partner and task are guarded by the owning Registry.
type Session struct {
	ID   core.SessionID
	User *domain.User
	Mode domain.Mode

	conn core.SignalConnection

	partner core.Partner
	task    core.Task
	// lastPartner is the human this session just left; it is not offered
	// again until the session pairs elsewhere or asks for next while idle.
	lastPartner core.SessionID
}

// Signal returns the transport; it is owned by the adapter.
func (s *Session) Signal() core.SignalConnection { return s.conn }

func (s *Session) Nickname() string { return s.User.Username }
