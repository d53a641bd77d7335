package controller

import (
	"errors"
	"fmt"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/blind"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/mqtt"
)

// SubscribeToDeviceUpdates reconciles live subscriptions with the device
// collection: one status topic per known device plus the shared status
// topic. Devices already subscribed are left alone, so repeated calls are
// idempotent; subscriptions for devices no longer in the collection are
// removed. Safe to call while the transport is disconnected, since the
// transport defers registrations until the connection is up.
func (c *Controller) SubscribeToDeviceUpdates() error {
	c.mu.Lock()
	var toAdd []string
	for id := range c.blinds {
		if _, ok := c.subs[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	var toRemove []string
	for id := range c.subs {
		if _, ok := c.blinds[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	needShared := c.sharedSub == nil
	c.mu.Unlock()

	var firstErr error

	for _, id := range toRemove {
		c.mu.Lock()
		sub := c.subs[id]
		delete(c.subs, id)
		c.mu.Unlock()

		if sub == nil {
			continue
		}
		if err := c.transport.Unsubscribe(sub); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unsubscribing %s: %w", sub.Topic, err)
		}
	}

	for _, id := range toAdd {
		topic := c.topics.DeviceStatus(id)
		sub, err := c.transport.Subscribe(topic, c.handleStatusMessage)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("subscribing %s: %w", topic, err)
			}
			continue
		}
		c.mu.Lock()
		c.subs[id] = sub
		c.mu.Unlock()
	}

	if needShared {
		sub, err := c.transport.Subscribe(c.topics.SharedStatus(), c.handleStatusMessage)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("subscribing %s: %w", c.topics.SharedStatus(), err)
			}
		} else {
			c.mu.Lock()
			c.sharedSub = sub
			c.mu.Unlock()
		}
	}

	return firstErr
}

// handleStatusMessage merges one inbound status payload into the device
// collection. The target device comes from the topic when the topic is
// device-scoped, otherwise from the payload's deviceId field. Updates for
// unknown devices are dropped. Returned errors are logged by the
// transport and never interrupt message dispatch.
func (c *Controller) handleStatusMessage(msg mqtt.Message) error {
	patch, err := blind.DecodeStatusPatch(msg.Raw)
	if err != nil {
		return fmt.Errorf("status payload on %s: %w", msg.Topic, err)
	}

	id, scoped := c.topics.DeviceIDFromStatusTopic(msg.Topic)
	if !scoped {
		id = patch.BlindID
	}
	if id == "" {
		return fmt.Errorf("status payload on %s: missing device id: %w", msg.Topic, blind.ErrMalformedPayload)
	}
	if patch.IsEmpty() {
		return nil
	}

	c.mu.Lock()
	b, ok := c.blinds[id]
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("status update for unknown device dropped", "device_id", id, "topic", msg.Topic)
		return nil
	}
	b.Apply(patch, c.now())
	state := b.State
	level := b.OpeningLevel
	c.mu.Unlock()

	c.recordTelemetry(id, patch, state, level)
	c.notify()
	return nil
}

// recordTelemetry forwards merged fields to the history writer. Climate
// points carry only the fields present in the patch; position points are
// written whenever the patch moved the blind.
func (c *Controller) recordTelemetry(id string, patch blind.StatusPatch, state blind.State, level int) {
	if c.history == nil {
		return
	}
	if patch.Temperature != nil || patch.Humidity != nil {
		c.history.WriteClimate(id, patch.Temperature, patch.Humidity)
	}
	if patch.State != nil || patch.OpeningLevel != nil {
		c.history.WritePosition(id, string(state), level)
	}
}

// dropSubscriptions releases every live subscription token. Called when
// a device leaves the collection wholesale, e.g. on shutdown.
func (c *Controller) dropSubscriptions() {
	c.mu.Lock()
	subs := make([]*mqtt.Subscription, 0, len(c.subs)+1)
	for id, sub := range c.subs {
		subs = append(subs, sub)
		delete(c.subs, id)
	}
	if c.sharedSub != nil {
		subs = append(subs, c.sharedSub)
		c.sharedSub = nil
	}
	c.mu.Unlock()

	for _, sub := range subs {
		if err := c.transport.Unsubscribe(sub); err != nil && !errors.Is(err, mqtt.ErrNotConnected) {
			c.logger.Warn("releasing subscription failed", "topic", sub.Topic, "error", err)
		}
	}
}

// Close releases live subscriptions. The transport connection itself is
// owned by the caller.
func (c *Controller) Close() {
	c.dropSubscriptions()
}
