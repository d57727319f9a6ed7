// Package protocol defines the frames exchanged with clients.
package protocol

// Type is the discriminant carried by every frame.
type Type string

const (
	TypeConnected           Type = "connected"
	TypePartnerFound        Type = "partner_found"
	TypePartnerDisconnected Type = "partner_disconnected"
	TypeSearching           Type = "searching"
	TypeTyping              Type = "typing"
	TypeStopTyping          Type = "stop_typing"
	TypeChatMessage         Type = "chat_message"
	TypeOffer               Type = "offer"
	TypeAnswer              Type = "answer"
	TypeICECandidate        Type = "ice_candidate"
	TypeNext                Type = "next"
	TypePing                Type = "ping"
	TypePong                Type = "pong"
)

// Class groups inbound types by how they are routed.
type Class int

const (
	ClassUnknown Class = iota
	ClassChat
	ClassTyping
	ClassSignaling
	ClassNext
	ClassPing
)

func (t Type) Class() Class {
	switch t {
	case TypeChatMessage:
		return ClassChat
	case TypeTyping, TypeStopTyping:
		return ClassTyping
	case TypeOffer, TypeAnswer, TypeICECandidate:
		return ClassSignaling
	case TypeNext:
		return ClassNext
	case TypePing:
		return ClassPing
	default:
		return ClassUnknown
	}
}

const (
	ConnectedText = "Connected! Looking for a partner..."
	SearchingText = "Looking for a new partner..."
)

type Connected struct {
	Type    Type   `json:"type"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type PartnerFound struct {
	Type            Type   `json:"type"`
	PartnerNickname string `json:"partner_nickname"`
	Initiator       bool   `json:"initiator"`
}

type Searching struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

type ChatMessage struct {
	Type     Type   `json:"type"`
	Nickname string `json:"nickname,omitempty"`
	Message  string `json:"message"`
}

// Signal is a frame with no fields besides its type.
type Signal struct {
	Type Type `json:"type"`
}

func NewConnected(userID string) Connected {
	return Connected{Type: TypeConnected, UserID: userID, Message: ConnectedText}
}

func NewPartnerFound(nickname string, initiator bool) PartnerFound {
	return PartnerFound{Type: TypePartnerFound, PartnerNickname: nickname, Initiator: initiator}
}

func NewSearching() Searching {
	return Searching{Type: TypeSearching, Message: SearchingText}
}

func NewChatMessage(nickname, text string) ChatMessage {
	return ChatMessage{Type: TypeChatMessage, Nickname: nickname, Message: text}
}

func NewSignal(t Type) Signal { return Signal{Type: t} }
