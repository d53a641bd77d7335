package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the blind sync MQTT scheme.
//
// Device topics are scoped per device id; the shared status topic carries
// updates for any device and the payload identifies the target.
const (
	// TopicPrefixDevice is the base for per-device topics.
	TopicPrefixDevice = "device"

	// TopicSharedStatus carries status updates for all devices; payloads
	// on this topic must include a deviceId field.
	TopicSharedStatus = "devices/status"

	// TopicPrefixSystem is the base for service status topics.
	TopicPrefixSystem = "blindsync/system"
)

// Topics provides builders for blind sync MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.DeviceStatus("b1")
//	// Returns: "device/b1/status"
type Topics struct{}

// DeviceStatus returns the inbound status topic for a device.
//
// Example: device/b1/status
func (Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixDevice, deviceID)
}

// DeviceCommand returns the outbound control topic for a device.
//
// Example: device/b1/command
func (Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefixDevice, deviceID)
}

// SharedStatus returns the shared "all devices" status topic.
//
// Example: devices/status
func (Topics) SharedStatus() string {
	return TopicSharedStatus
}

// SystemStatus returns the service status topic used for the LWT and
// online/offline announcements.
//
// Example: blindsync/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// DeviceIDFromStatusTopic extracts the device id from a device-scoped
// status topic. Returns false for the shared topic or any other shape.
func (Topics) DeviceIDFromStatusTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != TopicPrefixDevice || parts[2] != "status" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
