package mqtt

import (
	"bytes"
	"encoding/json"
)

// Message is an inbound broker message after opportunistic decoding.
//
// Raw always holds the untouched payload bytes. Value is populated only
// when the payload looks like a structured value (leading brace or
// bracket) and parses as JSON; otherwise it is nil and the payload should
// be treated as text.
type Message struct {
	Topic string
	Raw   []byte
	Value any
}

// decodeMessage builds a Message, attempting a structured decode only if
// the raw text looks like a JSON object or array.
func decodeMessage(topic string, raw []byte) Message {
	msg := Message{Topic: topic, Raw: raw}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return msg
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return msg
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		msg.Value = v
	}
	return msg
}
