package controller

import (
	"context"
	"fmt"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/blind"
)

// LoadSchedules populates the schedule collection, remote-first with
// cache fallback. Like LoadDevices it never fails; an unreachable remote
// with an empty cache yields an empty collection.
func (c *Controller) LoadSchedules(ctx context.Context) error {
	schedules, err := c.remote.ListSchedules(ctx)
	if err != nil {
		c.logger.Warn("remote store unavailable, serving cached schedules", "error", err)
		schedules, err = c.cache.Schedules(ctx)
		if err != nil {
			c.logger.Error("reading schedule cache failed", "error", err)
			schedules = nil
		}
	} else if cacheErr := c.cache.SetSchedules(ctx, schedules); cacheErr != nil {
		c.logger.Warn("writing schedules through to cache failed", "error", cacheErr)
	}

	c.mu.Lock()
	c.schedules = schedules
	c.mu.Unlock()

	c.notify()
	return nil
}

// Schedules returns a snapshot of the schedule collection.
func (c *Controller) Schedules() []blind.Schedule {
	c.mu.Lock()
	defer c.mu.Unlock()
	schedules := make([]blind.Schedule, len(c.schedules))
	copy(schedules, c.schedules)
	return schedules
}

// CreateSchedule adds a schedule. Schedule mutations go through the
// remote store only; the cache mirror is refreshed on success, there is
// no offline fallback for them.
func (c *Controller) CreateSchedule(ctx context.Context, s *blind.Schedule) error {
	if s == nil {
		return fmt.Errorf("%w: nil schedule", blind.ErrInvalidBlind)
	}
	if s.ID == "" {
		s.ID = blind.GenerateID()
	}
	if err := c.remote.CreateSchedule(ctx, s); err != nil {
		return fmt.Errorf("creating schedule: %w", err)
	}

	c.mu.Lock()
	c.schedules = append(c.schedules, *s)
	c.mu.Unlock()

	c.mirrorSchedules(ctx)
	c.notify()
	return nil
}

// UpdateSchedule replaces a schedule by id.
func (c *Controller) UpdateSchedule(ctx context.Context, s *blind.Schedule) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("%w: missing schedule id", blind.ErrScheduleNotFound)
	}
	if err := c.remote.UpdateSchedule(ctx, s); err != nil {
		return fmt.Errorf("updating schedule %s: %w", s.ID, err)
	}

	c.mu.Lock()
	for i := range c.schedules {
		if c.schedules[i].ID == s.ID {
			c.schedules[i] = *s
			break
		}
	}
	c.mu.Unlock()

	c.mirrorSchedules(ctx)
	c.notify()
	return nil
}

// DeleteSchedule removes a schedule by id.
func (c *Controller) DeleteSchedule(ctx context.Context, id string) error {
	if err := c.remote.DeleteSchedule(ctx, id); err != nil {
		return fmt.Errorf("deleting schedule %s: %w", id, err)
	}

	c.mu.Lock()
	kept := c.schedules[:0]
	for _, s := range c.schedules {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.schedules = kept
	c.mu.Unlock()

	c.mirrorSchedules(ctx)
	c.notify()
	return nil
}

func (c *Controller) mirrorSchedules(ctx context.Context) {
	c.mu.Lock()
	snapshot := make([]blind.Schedule, len(c.schedules))
	copy(snapshot, c.schedules)
	c.mu.Unlock()

	if err := c.cache.SetSchedules(ctx, snapshot); err != nil {
		c.logger.Warn("mirroring schedules to cache failed", "error", err)
	}
}
