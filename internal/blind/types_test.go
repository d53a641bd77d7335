package blind

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Blind
		wantState State
		wantLevel int
	}{
		{"closed forces level zero", Blind{State: StateClosed, OpeningLevel: 60}, StateClosed, 0},
		{"open with zero promotes to full", Blind{State: StateOpen, OpeningLevel: 0}, StateOpen, 100},
		{"partial at zero becomes closed", Blind{State: StatePartial, OpeningLevel: 0}, StateClosed, 0},
		{"partial at hundred becomes open", Blind{State: StatePartial, OpeningLevel: 100}, StateOpen, 100},
		{"partial midway untouched", Blind{State: StatePartial, OpeningLevel: 50}, StatePartial, 50},
		{"missing state derived from level", Blind{OpeningLevel: 30}, StatePartial, 30},
		{"missing state at zero derived closed", Blind{}, StateClosed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.in
			b.Normalize()
			if b.State != tt.wantState || b.OpeningLevel != tt.wantLevel {
				t.Errorf("normalized = %s/%d, want %s/%d", b.State, b.OpeningLevel, tt.wantState, tt.wantLevel)
			}
		})
	}
}

func TestCopy_Independent(t *testing.T) {
	temp := 21.0
	orig := &Blind{ID: "b1", Name: "Living Room", Temperature: &temp}

	cpy := orig.Copy()
	*cpy.Temperature = 99
	cpy.Name = "changed"

	if *orig.Temperature != 21.0 {
		t.Errorf("original Temperature = %v, mutated through copy", *orig.Temperature)
	}
	if orig.Name != "Living Room" {
		t.Errorf("original Name = %q, mutated through copy", orig.Name)
	}
}

func TestCopy_Nil(t *testing.T) {
	var b *Blind
	if b.Copy() != nil {
		t.Error("Copy() of nil blind should be nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		blind   Blind
		wantErr error
	}{
		{"valid", Blind{ID: "b1", Name: "Living Room", State: StateOpen, OpeningLevel: 100}, nil},
		{"missing id", Blind{Name: "Living Room"}, ErrInvalidBlind},
		{"blank name", Blind{ID: "b1", Name: "   "}, ErrInvalidName},
		{"name too long", Blind{ID: "b1", Name: strings.Repeat("x", 101)}, ErrInvalidName},
		{"bad state", Blind{ID: "b1", Name: "ok", State: "ajar"}, ErrInvalidState},
		{"level out of range", Blind{ID: "b1", Name: "ok", OpeningLevel: 101}, ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.blind)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateID_Unique(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("GenerateID() = %q, %q; want distinct non-empty ids", a, b)
	}
}
