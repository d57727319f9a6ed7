package protocol

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var ErrNoType = errors.New("frame has no type")

type envelope struct {
	Type Type `json:"type"`
}

// Peek reads only the discriminant of a frame.
func Peek(data []byte) (Type, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return "", ErrNoType
	}
	return env.Type, nil
}

// DecodeChat extracts the text of an inbound chat_message. A missing
// message field decodes as empty text.
func DecodeChat(data []byte) (string, error) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", fmt.Errorf("decode chat: %w", err)
	}
	return msg.Message, nil
}

func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}

// MustEncode is for frames built from this package's own types, which
// always marshal.
func MustEncode(v any) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}
