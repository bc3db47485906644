package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type slot struct {
	Date string `json:"date" validate:"required,booking_date"`
	Time string `json:"time" validate:"required,booking_time"`
}

func TestIsBookingDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025-03-10", true},
		{"2024-02-29", true},
		{"2025-02-29", false},
		{"2025-3-10", false},
		{"10/03/2025", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsBookingDate(tt.in); got != tt.want {
			t.Errorf("IsBookingDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsBookingTime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"00:00", true},
		{"23:59", true},
		{"24:00", false},
		{"12:60", false},
		{"9:30", false},
		{"09:30:00", false},
	}
	for _, tt := range tests {
		if got := IsBookingTime(tt.in); got != tt.want {
			t.Errorf("IsBookingTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRegister_Struct(t *testing.T) {
	v := validator.New()
	if err := Register(v); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := v.Struct(slot{Date: "2025-03-10", Time: "10:00"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := v.Struct(slot{Date: "2025-13-01", Time: "10:0"})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validator errors, got %v", err)
	}
	if len(verrs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(verrs))
	}
	if msg := Message(verrs[0]); !strings.Contains(msg, "YYYY-MM-DD") {
		t.Errorf("unexpected date message %q", msg)
	}
	if msg := Message(verrs[1]); !strings.Contains(msg, "HH:MM") {
		t.Errorf("unexpected time message %q", msg)
	}
}
