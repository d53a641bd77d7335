package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/config"
)

// ConnState is the connection state of the transport client.
type ConnState int

// Connection states.
const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

// String returns the lowercase name of the state.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Client maintains exactly one logical connection to an MQTT broker and
// provides topic-scoped message delivery.
//
// The client is explicitly constructed with New and never connects on its
// own; the owner drives the lifecycle through Connect and Disconnect.
// Handlers registered while disconnected are deferred and honored
// automatically when a connection is later established.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Subscriptions are automatically restored on reconnection.
type Client struct {
	cfg            config.MQTTConfig
	reconnectDelay time.Duration

	// connMu guards client, state, reconnectTimer and retryEnabled.
	connMu         sync.Mutex
	client         pahomqtt.Client
	state          ConnState
	reconnectTimer *time.Timer
	retryEnabled   bool

	// registry tracks handlers per topic; see registry.go.
	regMu    sync.RWMutex
	registry map[string]*registryEntry
	nextID   uint64

	// onStateChange is invoked on every connection state transition.
	onStateChange func(ConnState)
	callbackMu    sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked sequentially per message; a panic or error in one
// handler is logged and does not prevent other handlers for the same
// message from running.
type MessageHandler func(msg Message) error

// newPahoClient builds the underlying paho client. Tests replace it to
// drive the connection lifecycle without a broker.
var newPahoClient = func(opts *pahomqtt.ClientOptions) pahomqtt.Client {
	return pahomqtt.NewClient(opts)
}

// New creates a transport client for the given broker configuration.
// The client starts disconnected; call Connect to establish the session.
func New(cfg config.MQTTConfig) *Client {
	c := &Client{
		cfg:            cfg,
		reconnectDelay: time.Duration(cfg.Reconnect.Delay) * time.Second,
		registry:       make(map[string]*registryEntry),
	}
	if c.reconnectDelay <= 0 {
		c.reconnectDelay = defaultReconnectDelay
	}

	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleConnectionLost(err)
	})

	c.client = newPahoClient(opts)
	return c
}

// Connect establishes the broker session.
//
// It is idempotent: if the client is already connected it returns
// immediately. On success every topic currently present in the registry is
// live-subscribed, which also covers restoration after a connection drop.
// On failure the client stays disconnected and no retry is scheduled; the
// caller decides whether to try again.
func (c *Client) Connect() error {
	c.connMu.Lock()
	if c.state == StateConnected {
		c.connMu.Unlock()
		return nil
	}
	if c.state == StateConnecting {
		c.connMu.Unlock()
		return nil
	}
	c.setStateLocked(StateConnecting)
	client := c.client
	c.connMu.Unlock()

	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		c.connMu.Lock()
		c.setStateLocked(StateDisconnected)
		c.connMu.Unlock()
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		c.connMu.Lock()
		c.setStateLocked(StateDisconnected)
		c.connMu.Unlock()
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnectHandler runs asynchronously and may not have executed
	// yet; set the state here so IsConnected() is true on return. The
	// handler performs subscription restoration, guarded by the per-topic
	// live flag so running both paths cannot double-subscribe.
	c.connMu.Lock()
	c.setStateLocked(StateConnected)
	c.retryEnabled = false
	c.connMu.Unlock()

	c.restoreSubscriptions()
	c.publishOnlineStatus()

	return nil
}

// Disconnect closes the broker session.
//
// It is idempotent and cancels any pending reconnection attempt so a
// scheduled retry cannot race a deliberate shutdown. The subscription
// registry is kept, so a subsequent Connect restores every topic.
func (c *Client) Disconnect() {
	c.connMu.Lock()
	c.retryEnabled = false
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	wasConnected := c.state == StateConnected
	c.setStateLocked(StateDisconnected)
	client := c.client
	c.connMu.Unlock()

	if wasConnected {
		topic := Topics{}.SystemStatus()
		payload := buildOfflinePayload(c.cfg.Broker.ClientID)
		token := client.Publish(topic, byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(defaultPublishTimeout)
	}

	client.Disconnect(defaultDisconnectQuiesce)
	c.clearLiveFlags()
}

// handleConnect is called by paho when the connection is established.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.setStateLocked(StateConnected)
	c.retryEnabled = false
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.connMu.Unlock()

	c.restoreSubscriptions()
	c.publishOnlineStatus()
}

// handleConnectionLost is called by paho when the broker drops the session.
// One timed reconnection attempt is scheduled at a fixed delay; failed
// attempts reschedule themselves at the same interval until the connection
// is re-established or Disconnect is called.
func (c *Client) handleConnectionLost(err error) {
	if logger := c.getLogger(); logger != nil {
		logger.Warn("mqtt connection lost", "error", err)
	}

	c.clearLiveFlags()

	c.connMu.Lock()
	c.setStateLocked(StateDisconnected)
	c.retryEnabled = true
	c.scheduleReconnectLocked()
	c.connMu.Unlock()
}

// scheduleReconnectLocked arms the reconnect timer if none is pending.
// Caller must hold connMu.
func (c *Client) scheduleReconnectLocked() {
	if c.reconnectTimer != nil {
		return
	}
	c.reconnectTimer = time.AfterFunc(c.reconnectDelay, c.reconnectAttempt)
}

// reconnectAttempt runs a single scheduled reconnection.
func (c *Client) reconnectAttempt() {
	c.connMu.Lock()
	c.reconnectTimer = nil
	if !c.retryEnabled || c.state != StateDisconnected {
		c.connMu.Unlock()
		return
	}
	c.connMu.Unlock()

	if err := c.Connect(); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("mqtt reconnect attempt failed", "error", err)
		}
		c.connMu.Lock()
		if c.retryEnabled {
			c.scheduleReconnectLocked()
		}
		c.connMu.Unlock()
	}
}

// setStateLocked updates the state and fires the state-change callback.
// Caller must hold connMu.
func (c *Client) setStateLocked(next ConnState) {
	if c.state == next {
		return
	}
	c.state = next

	c.callbackMu.RLock()
	callback := c.onStateChange
	c.callbackMu.RUnlock()
	if callback != nil {
		// Run outside the lock path; callbacks may call back into the client.
		go callback(next)
	}
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.state
}

// IsConnected reports whether the client currently holds a live session.
func (c *Client) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.state == StateConnected && c.client.IsConnected()
}

// SetOnStateChange sets a callback invoked on every connection state
// transition. Used by the synchronization controller to observe
// connectivity without polling.
func (c *Client) SetOnStateChange(callback func(ConnState)) {
	c.callbackMu.Lock()
	c.onStateChange = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for handler errors and connection events.
// If not set, failures in handlers are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// publishOnlineStatus publishes the service's online status (retained).
func (c *Client) publishOnlineStatus() {
	topic := Topics{}.SystemStatus()
	payload := buildOnlinePayload(c.cfg.Broker.ClientID)
	c.client.Publish(topic, byte(c.cfg.QoS), true, payload)
}
