package mqtt

import (
	"testing"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantObject bool
		wantValue  bool
	}{
		{"json object", `{"state":"open","openingLevel":80}`, true, true},
		{"json array", `[1,2,3]`, false, true},
		{"leading whitespace object", "  \n\t{\"a\":1}", true, true},
		{"plain text", `hello`, false, false},
		{"numeric text", `42`, false, false},
		{"quoted string stays text", `"open"`, false, false},
		{"malformed json kept raw", `{"state":`, false, false},
		{"empty payload", ``, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := decodeMessage("device/b1/status", []byte(tt.raw))

			if string(msg.Raw) != tt.raw {
				t.Errorf("Raw = %q, want raw payload preserved", msg.Raw)
			}
			if got := msg.Value != nil; got != tt.wantValue {
				t.Errorf("Value decoded = %v, want %v", got, tt.wantValue)
			}
			_, isObject := msg.Value.(map[string]any)
			if isObject != tt.wantObject {
				t.Errorf("Value is object = %v, want %v", isObject, tt.wantObject)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	topics := Topics{}

	if got := topics.DeviceStatus("b1"); got != "device/b1/status" {
		t.Errorf("DeviceStatus() = %q", got)
	}
	if got := topics.DeviceCommand("b1"); got != "device/b1/command" {
		t.Errorf("DeviceCommand() = %q", got)
	}
	if got := topics.SharedStatus(); got != "devices/status" {
		t.Errorf("SharedStatus() = %q", got)
	}
	if got := topics.SystemStatus(); got != "blindsync/system/status" {
		t.Errorf("SystemStatus() = %q", got)
	}
}

func TestDeviceIDFromStatusTopic(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		topic  string
		wantID string
		wantOK bool
	}{
		{"device/b1/status", "b1", true},
		{"devices/status", "", false},
		{"device/b1/command", "", false},
		{"device//status", "", false},
		{"device/b1/status/extra", "", false},
		{"blindsync/system/status", "", false},
	}

	for _, tt := range tests {
		id, ok := topics.DeviceIDFromStatusTopic(tt.topic)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("DeviceIDFromStatusTopic(%q) = (%q, %v), want (%q, %v)",
				tt.topic, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
