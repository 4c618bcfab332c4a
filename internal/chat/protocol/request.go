// Package protocol implements chat wire format: one JSON value per line in both directions.
//
// Client requests:
//
//	{"Send":{"author":"alice","content":"hi"}}
//	{"FetchSince":0}
//
// Server responses:
//
//	{"Messages":[{"id":0,"author":"alice","content":"hi"}]}
//	{"MessageAdded":[]}
//	"Invalid"
package protocol

import (
	"bytes"
	"encoding/json"
	"io"
	"unicode/utf8"
)

const (
	tagSend       = "Send"
	tagFetchSince = "FetchSince"
	tagInvalid    = "Invalid"
)

// Reasons used by DecodeRequest for malformed input.
const (
	ReasonNotObject      = "request is not a JSON object with single variant"
	ReasonNotUTF8        = "request is not valid UTF-8"
	ReasonUnknownVariant = "unknown request variant"
	ReasonBadSend        = "Send requires string author and content"
	ReasonBadFetchSince  = "FetchSince requires unsigned integer"
	ReasonLineTooLong    = "request line is too long"
)

// Request - one of Send, FetchSince or InvalidRequest.
type Request interface {
	json.Marshaler
	request()
}

// Send - asks server to append message into chat history.
type Send struct {
	Author  string
	Content string
}

// FetchSince - asks server for all messages with ID greater or equal to Since.
type FetchSince struct {
	Since uint64
}

// InvalidRequest - result of decoding input which is not a valid request.
type InvalidRequest struct {
	Reason string
}

func (Send) request()           {}
func (FetchSince) request()     {}
func (InvalidRequest) request() {}

type sendBody struct {
	Author  *string `json:"author"`
	Content *string `json:"content"`
}

// MarshalJSON - encodes request as {"Send":{"author":...,"content":...}}.
func (r Send) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]sendBody{
		tagSend: {Author: &r.Author, Content: &r.Content},
	})
}

// MarshalJSON - encodes request as {"FetchSince":N}.
func (r FetchSince) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]uint64{tagFetchSince: r.Since})
}

// MarshalJSON - encodes request as {"Invalid":"reason"}.
func (r InvalidRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{tagInvalid: r.Reason})
}

// DecodeRequest - decodes single request line.
// It never fails: any input which does not represent a valid request is returned as InvalidRequest.
// Object keys are matched exactly, duplicate keys make the request invalid.
func DecodeRequest(line []byte) Request {
	if !utf8.Valid(line) {
		// encoding/json would silently replace bad bytes with U+FFFD
		return InvalidRequest{Reason: ReasonNotUTF8}
	}
	variant, ok := objectFields(line)
	if !ok || len(variant) != 1 {
		return InvalidRequest{Reason: ReasonNotObject}
	}

	for tag, raw := range variant {
		switch tag {
		case tagSend:
			return decodeSend(raw)
		case tagFetchSince:
			return decodeFetchSince(raw)
		case tagInvalid:
			reason, ok := decodeString(raw)
			if !ok {
				return InvalidRequest{Reason: ReasonNotObject}
			}
			return InvalidRequest{Reason: reason}
		}
	}
	return InvalidRequest{Reason: ReasonUnknownVariant}
}

func decodeSend(raw json.RawMessage) Request {
	fields, ok := objectFields(raw)
	if !ok {
		return InvalidRequest{Reason: ReasonBadSend}
	}
	author, ok := decodeString(fields["author"])
	if !ok {
		return InvalidRequest{Reason: ReasonBadSend}
	}
	content, ok := decodeString(fields["content"])
	if !ok {
		return InvalidRequest{Reason: ReasonBadSend}
	}
	return Send{Author: author, Content: content}
}

func decodeFetchSince(raw json.RawMessage) Request {
	if isNull(raw) {
		return InvalidRequest{Reason: ReasonBadFetchSince}
	}
	var since uint64
	if err := json.Unmarshal(raw, &since); err != nil {
		return InvalidRequest{Reason: ReasonBadFetchSince}
	}
	return FetchSince{Since: since}
}

// objectFields - splits JSON object into raw values by exact key.
// Returns false if data is not a single object or has duplicate keys.
func objectFields(data []byte) (map[string]json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if t, err := dec.Token(); err != nil || t != json.Delim('{') {
		return nil, false
	}
	fields := map[string]json.RawMessage{}
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := t.(string)
		if !ok {
			return nil, false
		}
		if _, duplicate := fields[key]; duplicate {
			return nil, false
		}
		value := json.RawMessage{}
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		fields[key] = value
	}
	if t, err := dec.Token(); err != nil || t != json.Delim('}') {
		return nil, false
	}
	// nothing but whitespace may follow the object
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return fields, true
}

// decodeString - decodes JSON string, missing value and null are rejected.
func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || isNull(raw) {
		return "", false
	}
	s := ""
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
