package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/blind"
)

// Fixed cache keys for the collections the sync layer persists.
const (
	KeyDevices   = "devices"
	KeySchedules = "schedules"
)

// Store is a durable key-value cache backed by SQLite.
//
// It holds the last-known device and schedule collections so the service
// keeps working when the remote store is unreachable. Values are JSON
// snapshots; a missing key is a miss, not an error.
type Store struct {
	db *sql.DB
}

// New creates a cache store over an open SQLite connection.
// The kv_cache table must exist (created by migrations).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get retrieves the raw value for a key.
// The second return value is false when the key has never been set.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv_cache WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache key %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set stores the raw value for a key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_cache (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key,
		string(value),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache key %q: %w", key, err)
	}
	return nil
}

// Devices returns the cached device collection.
// An unset key yields an empty collection, never an error.
func (s *Store) Devices(ctx context.Context) ([]blind.Blind, error) {
	data, ok, err := s.Get(ctx, KeyDevices)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var devices []blind.Blind
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("decoding cached devices: %w", err)
	}
	return devices, nil
}

// SetDevices replaces the cached device collection.
func (s *Store) SetDevices(ctx context.Context, devices []blind.Blind) error {
	data, err := json.Marshal(devices)
	if err != nil {
		return fmt.Errorf("encoding devices: %w", err)
	}
	return s.Set(ctx, KeyDevices, data)
}

// Schedules returns the cached schedule collection.
// An unset key yields an empty collection, never an error.
func (s *Store) Schedules(ctx context.Context) ([]blind.Schedule, error) {
	data, ok, err := s.Get(ctx, KeySchedules)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var schedules []blind.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, fmt.Errorf("decoding cached schedules: %w", err)
	}
	return schedules, nil
}

// SetSchedules replaces the cached schedule collection.
func (s *Store) SetSchedules(ctx context.Context, schedules []blind.Schedule) error {
	data, err := json.Marshal(schedules)
	if err != nil {
		return fmt.Errorf("encoding schedules: %w", err)
	}
	return s.Set(ctx, KeySchedules, data)
}
