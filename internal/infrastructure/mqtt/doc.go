// Package mqtt provides the live-transport client for the blind sync service.
//
// This package manages:
//   - One logical connection to the MQTT broker, driven explicitly via
//     Connect/Disconnect (no singleton, no implicit connection)
//   - A subscription registry mapping each topic to a set of handlers,
//     with deferred registration while disconnected
//   - Automatic restoration of every registered topic after a reconnect
//   - Fixed-delay scheduled reconnection, cancellable by Disconnect
//   - Opportunistic JSON decoding of inbound payloads
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// The synchronization controller owns a Client instance and uses it for
// per-device status subscriptions and outbound command publishes. The
// broker (e.g. Mosquitto) decouples the service from the devices:
//
//	Blind Sync Service ↔ MQTT Broker ↔ Blind Devices
//
// # Delivery semantics
//
// Publishing does not wait for device acknowledgment; delivery is
// confirmed only through a later inbound status update. Inbound handling
// tolerates duplicates and out-of-order messages - the merge layer above
// assigns its own timestamps.
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT)
//	client.SetLogger(logger)
//	if err := client.Connect(); err != nil { ... }
//	defer client.Disconnect()
//
//	sub, err := client.Subscribe(mqtt.Topics{}.DeviceStatus("b1"),
//	    func(msg mqtt.Message) error {
//	        log.Printf("status for %s: %s", msg.Topic, msg.Raw)
//	        return nil
//	    })
//
//	client.Publish(mqtt.Topics{}.DeviceCommand("b1"),
//	    blind.CommandMessage{Action: blind.ActionChangeStatus})
package mqtt
