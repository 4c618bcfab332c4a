package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/wtask/chatrelay/internal/chat/message"
)

const (
	tagMessages     = "Messages"
	tagMessageAdded = "MessageAdded"
)

// Response - one of Messages, Acknowledged or Invalid.
type Response interface {
	json.Marshaler
	response()
}

// Messages - reply to FetchSince.
type Messages []message.Message

// Acknowledged - reply to Send, written only after the message became visible in history.
type Acknowledged struct{}

// Invalid - reply to any request which could not be decoded or executed.
type Invalid struct{}

func (Messages) response()     {}
func (Acknowledged) response() {}
func (Invalid) response()      {}

// MarshalJSON - encodes reply as {"Messages":[...]}, empty list is encoded as [].
func (r Messages) MarshalJSON() ([]byte, error) {
	list := []message.Message(r)
	if list == nil {
		list = []message.Message{}
	}
	return json.Marshal(map[string][]message.Message{tagMessages: list})
}

// MarshalJSON - encodes reply as {"MessageAdded":[]}.
func (Acknowledged) MarshalJSON() ([]byte, error) {
	return []byte(`{"` + tagMessageAdded + `":[]}`), nil
}

// MarshalJSON - encodes reply as "Invalid".
func (Invalid) MarshalJSON() ([]byte, error) {
	return []byte(`"` + tagInvalid + `"`), nil
}

// DecodeResponse - decodes single server reply line.
func DecodeResponse(line []byte) (Response, error) {
	unit := ""
	if err := json.Unmarshal(line, &unit); err == nil {
		if unit == tagInvalid {
			return Invalid{}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownResponse, unit)
	}

	var variant map[string]json.RawMessage
	if err := json.Unmarshal(line, &variant); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownResponse, err)
	}
	if len(variant) != 1 {
		return nil, fmt.Errorf("%w: %d variants", ErrUnknownResponse, len(variant))
	}
	for tag, raw := range variant {
		switch tag {
		case tagMessageAdded:
			return Acknowledged{}, nil
		case tagMessages:
			list := []message.Message{}
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnknownResponse, err)
			}
			if list == nil {
				list = []message.Message{}
			}
			return Messages(list), nil
		default:
			return nil, fmt.Errorf("%w: variant %q", ErrUnknownResponse, tag)
		}
	}
	return nil, ErrUnknownResponse
}
