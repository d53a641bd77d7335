package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/blind"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/mqtt"
)

// IssueCommand sends a control command to a device and applies the target
// state optimistically.
//
// The publish is best-effort: a disconnected transport skips the publish
// without failing, the in-memory blind still moves to the command's
// target and the device reconciles when it reconnects. Persistence tries
// the remote store first and falls back to the cache, flipping the
// offline flag accordingly. Returns ErrBlindNotFound for unknown ids and
// a validation error for commands with no usable target.
func (c *Controller) IssueCommand(ctx context.Context, id string, cmd blind.Command) error {
	c.mu.Lock()
	if _, ok := c.blinds[id]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", blind.ErrBlindNotFound, id)
	}
	c.mu.Unlock()

	target, err := cmd.Target()
	if err != nil {
		return err
	}

	c.publishCommand(id, blind.CommandMessage{
		Action:       blind.ActionChangeStatus,
		State:        target.State,
		OpeningLevel: target.OpeningLevel,
	})

	c.mu.Lock()
	b, ok := c.blinds[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", blind.ErrBlindNotFound, id)
	}
	b.Apply(target, c.now())
	state := b.State
	level := b.OpeningLevel
	c.mu.Unlock()

	c.persistStatus(ctx, id, target)
	if c.history != nil {
		c.history.WritePosition(id, string(state), level)
	}

	c.notify()
	return nil
}

// publishCommand publishes a control message to the device's command
// topic. Failures are logged, never returned: the optimistic state change
// proceeds regardless.
func (c *Controller) publishCommand(id string, msg blind.CommandMessage) {
	topic := c.topics.DeviceCommand(id)
	if err := c.transport.Publish(topic, msg); err != nil {
		if errors.Is(err, mqtt.ErrNotConnected) {
			c.logger.Debug("transport disconnected, command not published", "device_id", id, "action", msg.Action)
		} else {
			c.logger.Warn("publishing command failed", "topic", topic, "error", err)
		}
	}
}

// persistStatus writes a status change to the remote store, falling back
// to a full cache snapshot when the remote is unreachable.
func (c *Controller) persistStatus(ctx context.Context, id string, patch blind.StatusPatch) {
	err := c.remote.UpdateDeviceStatus(ctx, id, patch)
	c.setOffline(err != nil)
	if err != nil {
		c.logger.Warn("persisting status to remote store failed, caching instead", "device_id", id, "error", err)
	}
	// The cache always receives the snapshot so a restart during an
	// outage resumes from the optimistic state.
	c.persistCollection(ctx)
}

func (c *Controller) setOffline(offline bool) {
	c.mu.Lock()
	c.offline = offline
	c.mu.Unlock()
}

// CreateDevice registers a new blind. A missing ID is generated, the
// blind is validated and normalized, announced on its control topic,
// persisted remote-first and added to the collection, and the
// subscription set is reconciled to cover it.
func (c *Controller) CreateDevice(ctx context.Context, b *blind.Blind) error {
	if b == nil {
		return blind.ErrInvalidBlind
	}
	if b.ID == "" {
		b.ID = blind.GenerateID()
	}
	b.Normalize()
	if err := blind.Validate(b); err != nil {
		return err
	}

	c.mu.Lock()
	if _, exists := c.blinds[b.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", blind.ErrBlindExists, b.ID)
	}
	c.mu.Unlock()

	c.publishCommand(b.ID, blind.CommandMessage{
		Action:   blind.ActionUpdate,
		Name:     &b.Name,
		Location: &b.Location,
	})

	if err := c.remote.CreateDevice(ctx, b); err != nil {
		c.setOffline(true)
		c.logger.Warn("creating device on remote store failed, caching instead", "device_id", b.ID, "error", err)
	} else {
		c.setOffline(false)
	}

	stored := *b.Copy()
	stored.UpdatedAt = c.now()
	c.mu.Lock()
	c.blinds[stored.ID] = &stored
	c.mu.Unlock()

	c.persistCollection(ctx)

	if err := c.SubscribeToDeviceUpdates(); err != nil {
		c.logger.Warn("subscription pass after create failed", "error", err)
	}

	c.notify()
	return nil
}

// DeviceFields is the editable metadata of a blind. Nil fields are left
// unchanged.
type DeviceFields struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
}

// UpdateDevice edits a blind's metadata, announces the change on the
// control topic and persists it remote-first with cache fallback.
func (c *Controller) UpdateDevice(ctx context.Context, id string, fields DeviceFields) error {
	c.mu.Lock()
	b, ok := c.blinds[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", blind.ErrBlindNotFound, id)
	}
	updated := *b.Copy()
	c.mu.Unlock()

	if fields.Name != nil {
		updated.Name = *fields.Name
	}
	if fields.Location != nil {
		updated.Location = *fields.Location
	}
	if err := blind.Validate(&updated); err != nil {
		return err
	}
	updated.UpdatedAt = c.now()

	c.publishCommand(id, blind.CommandMessage{
		Action:   blind.ActionUpdate,
		Name:     fields.Name,
		Location: fields.Location,
	})

	if err := c.remote.UpdateDevice(ctx, &updated); err != nil {
		c.setOffline(true)
		c.logger.Warn("updating device on remote store failed, caching instead", "device_id", id, "error", err)
	} else {
		c.setOffline(false)
	}

	c.mu.Lock()
	c.blinds[id] = updated.Copy()
	c.mu.Unlock()

	c.persistCollection(ctx)
	c.notify()
	return nil
}

// DeleteDevice removes a blind: announces the removal on the control
// topic, deletes it remote-first with cache fallback, drops it from the
// collection and releases its subscription.
func (c *Controller) DeleteDevice(ctx context.Context, id string) error {
	c.mu.Lock()
	if _, ok := c.blinds[id]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", blind.ErrBlindNotFound, id)
	}
	c.mu.Unlock()

	c.publishCommand(id, blind.CommandMessage{Action: blind.ActionDelete})

	if err := c.remote.DeleteDevice(ctx, id); err != nil {
		c.setOffline(true)
		c.logger.Warn("deleting device on remote store failed, caching instead", "device_id", id, "error", err)
	} else {
		c.setOffline(false)
	}

	c.mu.Lock()
	delete(c.blinds, id)
	if c.selected == id {
		c.selected = ""
	}
	c.mu.Unlock()

	c.persistCollection(ctx)

	if err := c.SubscribeToDeviceUpdates(); err != nil {
		c.logger.Warn("subscription pass after delete failed", "error", err)
	}

	c.notify()
	return nil
}
