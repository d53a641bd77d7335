package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/blind"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(srv.URL, 2*time.Second, func() string { return "test-token" })
	return c, srv
}

func TestListDevices(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/devices" {
			t.Errorf("request = %s %s, want GET /devices", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer credential", got)
		}
		json.NewEncoder(w).Encode([]blind.Blind{
			{ID: "b1", Name: "Living Room", State: blind.StateOpen, OpeningLevel: 100},
			{ID: "b2", Name: "Bedroom", State: blind.StateClosed},
		})
	})
	defer srv.Close()

	devices, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 2 || devices[0].ID != "b1" {
		t.Errorf("devices = %+v, want two devices starting with b1", devices)
	}
}

func TestListDevices_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // Nothing listening anymore.

	c := New(srv.URL, time.Second, nil)
	_, err := c.ListDevices(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"server error is unavailability", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway is unavailability", http.StatusBadGateway, ErrUnavailable},
		{"client error is request failure", http.StatusUnprocessableEntity, ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			defer srv.Close()

			_, err := c.GetDevice(context.Background(), "b1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateDevice_RoundTrip(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/devices" {
			t.Errorf("request = %s %s, want POST /devices", r.Method, r.URL.Path)
		}
		var b blind.Blind
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		// The store assigns server-side fields and echoes the record.
		b.UpdatedAt = time.Now().UTC()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(b)
	})
	defer srv.Close()

	b := &blind.Blind{ID: "b9", Name: "Kitchen"}
	if err := c.CreateDevice(context.Background(), b); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if b.UpdatedAt.IsZero() {
		t.Error("server-assigned fields not merged back into the record")
	}
}

func TestUpdateDeviceStatus_SendsPatchOnly(t *testing.T) {
	var received map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/b1/status" {
			t.Errorf("path = %s, want /devices/b1/status", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	lvl := 40
	patch := blind.StatusPatch{OpeningLevel: &lvl}
	if err := c.UpdateDeviceStatus(context.Background(), "b1", patch); err != nil {
		t.Fatalf("UpdateDeviceStatus() error = %v", err)
	}

	if received["openingLevel"] != float64(40) {
		t.Errorf("body = %v, want openingLevel 40", received)
	}
	if _, ok := received["state"]; ok {
		t.Error("absent fields must be omitted from the patch body")
	}
}

func TestDeleteSchedule(t *testing.T) {
	called := false
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodDelete || r.URL.Path != "/schedules/s1" {
			t.Errorf("request = %s %s, want DELETE /schedules/s1", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	if err := c.DeleteSchedule(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSchedule() error = %v", err)
	}
	if !called {
		t.Error("no request issued")
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		w.Write([]byte(`[]`))
	})
	defer srv.Close()
	c.token = nil

	if _, err := c.ListDevices(context.Background()); err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
}
