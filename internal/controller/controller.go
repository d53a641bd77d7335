package controller

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/blind"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/mqtt"
)

// Logger defines the logging interface used by the Controller.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Transport is the live publish/subscribe connection the controller
// manages subscriptions and commands through. *mqtt.Client satisfies it;
// tests substitute a fake.
type Transport interface {
	Subscribe(topic string, handler mqtt.MessageHandler) (*mqtt.Subscription, error)
	Unsubscribe(sub *mqtt.Subscription) error
	Publish(topic string, payload any) error
	IsConnected() bool
}

// RemoteStore is the persistent store reached over HTTP.
// *remote.Client satisfies it.
type RemoteStore interface {
	ListDevices(ctx context.Context) ([]blind.Blind, error)
	CreateDevice(ctx context.Context, b *blind.Blind) error
	UpdateDevice(ctx context.Context, b *blind.Blind) error
	DeleteDevice(ctx context.Context, id string) error
	UpdateDeviceStatus(ctx context.Context, id string, patch blind.StatusPatch) error

	ListSchedules(ctx context.Context) ([]blind.Schedule, error)
	CreateSchedule(ctx context.Context, s *blind.Schedule) error
	UpdateSchedule(ctx context.Context, s *blind.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// Cache is the durable local store used when the network is unavailable.
// *cache.Store satisfies it.
type Cache interface {
	Devices(ctx context.Context) ([]blind.Blind, error)
	SetDevices(ctx context.Context, devices []blind.Blind) error
	Schedules(ctx context.Context) ([]blind.Schedule, error)
	SetSchedules(ctx context.Context, schedules []blind.Schedule) error
}

// History receives telemetry points after merges. *influxdb.Client
// satisfies it; a nil History disables recording.
type History interface {
	WriteClimate(deviceID string, temperature, humidity *float64)
	WritePosition(deviceID string, state string, openingLevel int)
}

// Observer is notified after every change to the device collection,
// schedules or selection. Callbacks run outside the controller lock and
// must not block for long.
type Observer func()

// Phase is the controller's load state for a logical session.
type Phase int

// Phases. Offline is not a phase: it is a flag reachable from Ready when
// the remote store is unreachable, during which cached data is served and
// commands apply optimistically.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "idle"
	}
}

// Controller reconciles the three sources of truth for blind state: the
// remote store, the local cache and the live transport. It owns the
// authoritative in-memory device collection.
//
// All merges and optimistic command applications serialize on one mutex,
// so no two merges interleave field-by-field. Cross-device updates are
// independent and carry no ordering guarantee relative to each other.
type Controller struct {
	transport Transport
	remote    RemoteStore
	cache     Cache
	history   History
	logger    Logger
	topics    mqtt.Topics

	mu        sync.Mutex
	blinds    map[string]*blind.Blind
	schedules []blind.Schedule
	selected  string
	phase     Phase
	offline   bool

	// subs holds the live status-topic token per device id, plus the
	// shared topic token. Reconciled by SubscribeToDeviceUpdates.
	subs      map[string]*mqtt.Subscription
	sharedSub *mqtt.Subscription

	observerMu sync.Mutex
	observers  []Observer

	// now is the merge clock; replaced in tests for deterministic timestamps.
	now func() time.Time
}

// New creates a synchronization controller over the given collaborators.
// history may be nil to disable telemetry recording.
func New(transport Transport, remote RemoteStore, cache Cache, history History) *Controller {
	return &Controller{
		transport: transport,
		remote:    remote,
		cache:     cache,
		history:   history,
		logger:    noopLogger{},
		blinds:    make(map[string]*blind.Blind),
		subs:      make(map[string]*mqtt.Subscription),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// AddObserver registers a change-notification callback.
func (c *Controller) AddObserver(fn Observer) {
	if fn == nil {
		return
	}
	c.observerMu.Lock()
	c.observers = append(c.observers, fn)
	c.observerMu.Unlock()
}

// notify invokes every observer. Never called with c.mu held.
func (c *Controller) notify() {
	c.observerMu.Lock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.observerMu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// LoadDevices populates the device collection.
//
// The remote store is attempted first; on success the collection is
// replaced and written through to the cache. On remote failure the
// last-known cache contents are served instead, and an empty cache yields
// an empty collection. The call never fails and always leaves the
// controller in the Ready phase; repeated calls are safe, the newest one
// simply replaces the collection again.
func (c *Controller) LoadDevices(ctx context.Context) error {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.mu.Unlock()

	devices, err := c.remote.ListDevices(ctx)
	offline := false
	if err != nil {
		offline = true
		c.logger.Warn("remote store unavailable, serving cached devices", "error", err)

		devices, err = c.cache.Devices(ctx)
		if err != nil {
			c.logger.Error("reading device cache failed", "error", err)
			devices = nil
		}
	} else if cacheErr := c.cache.SetDevices(ctx, devices); cacheErr != nil {
		c.logger.Warn("writing devices through to cache failed", "error", cacheErr)
	}

	c.mu.Lock()
	c.blinds = make(map[string]*blind.Blind, len(devices))
	for i := range devices {
		d := devices[i]
		d.Normalize()
		c.blinds[d.ID] = &d
	}
	if _, ok := c.blinds[c.selected]; !ok {
		c.selected = ""
	}
	c.offline = offline
	c.phase = PhaseReady
	c.mu.Unlock()

	c.logger.Info("device collection loaded", "count", len(devices), "offline", offline)

	if err := c.SubscribeToDeviceUpdates(); err != nil {
		c.logger.Warn("subscription pass after load failed", "error", err)
	}

	c.notify()
	return nil
}

// SelectDevice changes the current selection. Selecting an unknown id
// clears the selection; the call never fails.
func (c *Controller) SelectDevice(id string) {
	c.mu.Lock()
	if _, ok := c.blinds[id]; ok {
		c.selected = id
	} else {
		c.selected = ""
	}
	c.mu.Unlock()

	c.notify()
}

// Devices returns an independent snapshot of the device collection,
// ordered by name for stable presentation.
func (c *Controller) Devices() []blind.Blind {
	c.mu.Lock()
	devices := make([]blind.Blind, 0, len(c.blinds))
	for _, b := range c.blinds {
		devices = append(devices, *b.Copy())
	}
	c.mu.Unlock()

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Name != devices[j].Name {
			return devices[i].Name < devices[j].Name
		}
		return devices[i].ID < devices[j].ID
	})
	return devices
}

// Device returns a copy of one device by id.
func (c *Controller) Device(id string) (*blind.Blind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.blinds[id]
	if !ok {
		return nil, false
	}
	return b.Copy(), true
}

// Selected returns a copy of the currently selected device, if any.
func (c *Controller) Selected() (*blind.Blind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == "" {
		return nil, false
	}
	b, ok := c.blinds[c.selected]
	if !ok {
		return nil, false
	}
	return b.Copy(), true
}

// Phase returns the controller's current load phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Offline reports whether the last remote interaction failed and the
// controller is serving cached data.
func (c *Controller) Offline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offline
}

// Status is a point-in-time summary for observability surfaces.
type Status struct {
	Phase       string `json:"phase"`
	Offline     bool   `json:"offline"`
	Connected   bool   `json:"connected"`
	DeviceCount int    `json:"deviceCount"`
	Selected    string `json:"selected,omitempty"`
}

// GetStatus returns the current controller status.
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	s := Status{
		Phase:       c.phase.String(),
		Offline:     c.offline,
		DeviceCount: len(c.blinds),
		Selected:    c.selected,
	}
	c.mu.Unlock()

	s.Connected = c.transport.IsConnected()
	return s
}

// snapshotLocked returns the full collection as values for persistence.
// Caller must hold c.mu.
func (c *Controller) snapshotLocked() []blind.Blind {
	devices := make([]blind.Blind, 0, len(c.blinds))
	for _, b := range c.blinds {
		devices = append(devices, *b.Copy())
	}
	return devices
}

// persistCollection writes the full in-memory collection to the cache.
// Used as the fallback when the remote store cannot be reached.
func (c *Controller) persistCollection(ctx context.Context) {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if err := c.cache.SetDevices(ctx, snapshot); err != nil {
		c.logger.Error("writing device collection to cache failed", "error", err)
	}
}
