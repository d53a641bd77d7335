package mqtt

import (
	"encoding/json"
	"fmt"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a message to the specified MQTT topic.
//
// Payload encoding: []byte and string values pass through unchanged;
// anything else is JSON-encoded. The call does not wait for broker
// acknowledgment beyond transport-level delivery — callers needing
// confirmation must rely on a subsequent inbound status update.
//
// Returns ErrNotConnected if the connection state is not connected.
//
// Example:
//
//	topic := mqtt.Topics{}.DeviceCommand("b1")
//	err := client.Publish(topic, blind.CommandMessage{Action: blind.ActionChangeStatus})
func (c *Client) Publish(topic string, payload any) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	data, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	if len(data) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(data), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, byte(c.cfg.QoS), false, data)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// encodePayload serializes a publish payload: byte slices and strings pass
// through unchanged, structured values are encoded as JSON text.
func encodePayload(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
		return data, nil
	}
}
