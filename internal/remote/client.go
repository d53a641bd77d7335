package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/blind"
)

// maxResponseSize bounds decoded response bodies (4MB).
const maxResponseSize = 4 << 20

// TokenSource supplies the opaque bearer credential for the remote store.
// The credential comes from the external auth collaborator; this package
// only attaches it to requests.
type TokenSource func() string

// Client is a stateless request/response wrapper over the remote store's
// HTTP API for device and schedule resources.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
}

// New creates a remote store client.
//
// Parameters:
//   - baseURL: Root of the remote API, e.g. "https://host/api"
//   - timeout: Per-request timeout
//   - token: Bearer credential source; may be nil for unauthenticated stores
func New(baseURL string, timeout time.Duration, token TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListDevices retrieves all devices from the remote store.
func (c *Client) ListDevices(ctx context.Context) ([]blind.Blind, error) {
	var devices []blind.Blind
	if err := c.do(ctx, http.MethodGet, "/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice retrieves a single device by ID.
func (c *Client) GetDevice(ctx context.Context, id string) (*blind.Blind, error) {
	var device blind.Blind
	if err := c.do(ctx, http.MethodGet, "/devices/"+id, nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// CreateDevice stores a new device.
func (c *Client) CreateDevice(ctx context.Context, b *blind.Blind) error {
	return c.do(ctx, http.MethodPost, "/devices", b, b)
}

// UpdateDevice replaces a device record.
func (c *Client) UpdateDevice(ctx context.Context, b *blind.Blind) error {
	return c.do(ctx, http.MethodPut, "/devices/"+b.ID, b, nil)
}

// DeleteDevice removes a device record.
func (c *Client) DeleteDevice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/devices/"+id, nil, nil)
}

// UpdateDeviceStatus persists only a device's status fields.
func (c *Client) UpdateDeviceStatus(ctx context.Context, id string, patch blind.StatusPatch) error {
	return c.do(ctx, http.MethodPut, "/devices/"+id+"/status", patch, nil)
}

// ListSchedules retrieves all schedules from the remote store.
func (c *Client) ListSchedules(ctx context.Context) ([]blind.Schedule, error) {
	var schedules []blind.Schedule
	if err := c.do(ctx, http.MethodGet, "/schedules", nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// CreateSchedule stores a new schedule.
func (c *Client) CreateSchedule(ctx context.Context, s *blind.Schedule) error {
	return c.do(ctx, http.MethodPost, "/schedules", s, s)
}

// UpdateSchedule replaces a schedule record.
func (c *Client) UpdateSchedule(ctx context.Context, s *blind.Schedule) error {
	return c.do(ctx, http.MethodPut, "/schedules/"+s.ID, s, nil)
}

// DeleteSchedule removes a schedule record.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/schedules/"+id, nil, nil)
}

// do executes one JSON round-trip against the remote store.
//
// Transport-level failures (refused connection, DNS, timeout) are wrapped
// in ErrUnavailable so callers can fall back to the local cache; HTTP 404
// maps to ErrNotFound; other non-2xx statuses map to ErrRequestFailed.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-side close, nothing to recover

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode >= http.StatusInternalServerError:
		// Server-side failures count as unavailability: the store cannot
		// currently answer, so cache fallback applies.
		return fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, path, resp.StatusCode)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("%w: %s %s: status %d", ErrRequestFailed, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrUnavailable, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrRequestFailed, err)
	}
	return nil
}
