package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// registryEntry tracks the handler set for one topic.
//
// live marks whether a broker-side subscription currently exists for the
// topic, so a topic is never live-subscribed twice and deferred
// registrations are picked up on (re)connect.
type registryEntry struct {
	handlers map[uint64]MessageHandler
	live     bool
}

// Subscription is the token returned by Subscribe. It identifies a single
// handler registration so that exactly that handler can be removed later.
type Subscription struct {
	// Topic the handler was registered under.
	Topic string

	id uint64
}

// Subscribe registers the handler under the topic.
//
// Registration never duplicates: each call adds one independent handler to
// the topic's set and returns a token for removing it. If the client is
// connected and this is the first handler for the topic, a live subscribe
// is issued; if not connected, registration is deferred and honored
// automatically when a connection is later established.
//
// A live subscribe failure leaves the registration in place (it behaves
// like a deferred registration) and returns the error.
func (c *Client) Subscribe(topic string, handler MessageHandler) (*Subscription, error) {
	if topic == "" {
		return nil, ErrInvalidTopic
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	c.regMu.Lock()
	entry, ok := c.registry[topic]
	if !ok {
		entry = &registryEntry{handlers: make(map[uint64]MessageHandler)}
		c.registry[topic] = entry
	}
	c.nextID++
	id := c.nextID
	entry.handlers[id] = handler
	needsLive := !entry.live
	c.regMu.Unlock()

	sub := &Subscription{Topic: topic, id: id}

	if needsLive && c.IsConnected() {
		if err := c.liveSubscribe(topic); err != nil {
			return sub, err
		}
	}

	return sub, nil
}

// Unsubscribe removes a single handler registration.
//
// When the last handler for the topic is removed, the topic itself is
// dropped from the registry and, if the client is connected, a live
// unsubscribe is issued.
func (c *Client) Unsubscribe(sub *Subscription) error {
	if sub == nil || sub.Topic == "" {
		return ErrInvalidTopic
	}

	c.regMu.Lock()
	entry, ok := c.registry[sub.Topic]
	if !ok {
		c.regMu.Unlock()
		return nil
	}
	delete(entry.handlers, sub.id)
	empty := len(entry.handlers) == 0
	wasLive := entry.live
	if empty {
		delete(c.registry, sub.Topic)
	}
	c.regMu.Unlock()

	if empty && wasLive {
		return c.liveUnsubscribe(sub.Topic)
	}
	return nil
}

// UnsubscribeTopic removes every handler for the topic and, if the client
// is connected, issues a live unsubscribe.
func (c *Client) UnsubscribeTopic(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	c.regMu.Lock()
	entry, ok := c.registry[topic]
	if !ok {
		c.regMu.Unlock()
		return nil
	}
	wasLive := entry.live
	delete(c.registry, topic)
	c.regMu.Unlock()

	if wasLive {
		return c.liveUnsubscribe(topic)
	}
	return nil
}

// SubscriptionCount returns the number of registered topics.
func (c *Client) SubscriptionCount() int {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	return len(c.registry)
}

// HasSubscription checks if any handler is registered for the given topic.
func (c *Client) HasSubscription(topic string) bool {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	_, exists := c.registry[topic]
	return exists
}

// HandlerCount returns the number of handlers registered for the topic.
func (c *Client) HandlerCount(topic string) int {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	entry, ok := c.registry[topic]
	if !ok {
		return 0
	}
	return len(entry.handlers)
}

// liveSubscribe issues the broker-side subscribe for a topic.
//
// The live flag is claimed before the network call: a concurrent caller
// (Connect's returning path racing paho's OnConnect handler both run
// restoration) sees the claim and skips, so a topic is never subscribed
// twice. On failure the claim is released and the topic behaves like a
// deferred registration again.
func (c *Client) liveSubscribe(topic string) error {
	c.regMu.Lock()
	entry, ok := c.registry[topic]
	if !ok || entry.live {
		c.regMu.Unlock()
		return nil
	}
	entry.live = true
	c.regMu.Unlock()

	token := c.client.Subscribe(topic, byte(c.cfg.QoS), c.pahoHandler())
	subscribeErr := error(nil)
	if !token.WaitTimeout(defaultPublishTimeout) {
		subscribeErr = fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	} else if err := token.Error(); err != nil {
		subscribeErr = fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	if subscribeErr != nil {
		c.regMu.Lock()
		if entry, ok := c.registry[topic]; ok {
			entry.live = false
		}
		c.regMu.Unlock()
		return subscribeErr
	}
	return nil
}

// liveUnsubscribe issues the broker-side unsubscribe for a topic.
func (c *Client) liveUnsubscribe(topic string) error {
	if !c.IsConnected() {
		return nil
	}
	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}
	return nil
}

// restoreSubscriptions live-subscribes every registered topic that is not
// already live. Runs after every successful (re)connect.
func (c *Client) restoreSubscriptions() {
	c.regMu.RLock()
	pending := make([]string, 0, len(c.registry))
	for topic, entry := range c.registry {
		if !entry.live {
			pending = append(pending, topic)
		}
	}
	c.regMu.RUnlock()

	for _, topic := range pending {
		if err := c.liveSubscribe(topic); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("restoring subscription failed", "topic", topic, "error", err)
			}
		}
	}
}

// clearLiveFlags marks every topic as no longer broker-subscribed.
// Called when the connection drops so the next connect re-subscribes.
func (c *Client) clearLiveFlags() {
	c.regMu.Lock()
	for _, entry := range c.registry {
		entry.live = false
	}
	c.regMu.Unlock()
}

// pahoHandler adapts inbound paho messages into the dispatch path.
func (c *Client) pahoHandler() pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.dispatch(msg.Topic(), msg.Payload())
	}
}

// dispatch decodes the payload once and invokes every handler registered
// for the topic. A handler panic or error is logged and must not prevent
// other handlers for the same message from running.
func (c *Client) dispatch(topic string, payload []byte) {
	msg := decodeMessage(topic, payload)

	c.regMu.RLock()
	entry, ok := c.registry[topic]
	var handlers []MessageHandler
	if ok {
		handlers = make([]MessageHandler, 0, len(entry.handlers))
		for _, h := range entry.handlers {
			handlers = append(handlers, h)
		}
	}
	c.regMu.RUnlock()

	for _, handler := range handlers {
		c.invoke(handler, msg)
	}
}

// invoke runs one handler with panic recovery.
func (c *Client) invoke(handler MessageHandler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Error("message handler panic recovered",
					"topic", msg.Topic,
					"panic", r,
				)
			}
		}
	}()

	if err := handler(msg); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("message handler returned error",
				"topic", msg.Topic,
				"error", err,
			)
		}
	}
}
