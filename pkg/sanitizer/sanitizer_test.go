package sanitizer

import (
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Jane   Doe ", "Jane Doe"},
		{"Main\tSalon", "Main Salon"},
		{"Hair\x00cut", "Haircut"},
		{"Dana\r\nLevi", "Dana Levi"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeName(got); again != got {
				t.Errorf("SanitizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeNotes(t *testing.T) {
	if got := SanitizeNotes("  first line\nsecond line  "); got != "first line\nsecond line" {
		t.Errorf("unexpected notes: %q", got)
	}

	long := strings.Repeat("a", MaxNotesLength+50)
	if got := SanitizeNotes(long); len([]rune(got)) != MaxNotesLength {
		t.Errorf("expected notes capped at %d runes, got %d", MaxNotesLength, len([]rune(got)))
	}
}

func TestSanitizeCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hair Color", "hair_color"},
		{"  NAILS ", "nails"},
		{"hair--cut!!", "hair_cut"},
		{"123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeCategory(tt.input); got != tt.want {
				t.Errorf("SanitizeCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already e164", "+972541234567", "+972541234567"},
		{"israeli local", "054-123-4567", "+972541234567"},
		{"israeli formatted", "+972 50-123-4567", "+972501234567"},
		{"us e164", "+14155552671", "+14155552671"},
		{"too short", "+972 12", ""},
		{"us with country code", "+1 (650) 253-0000", "+16502530000"},
		{"garbage", "not-a-phone", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIDs(t *testing.T) {
	got := SanitizeIDs([]string{" s1", "s2", "", "s1 ", "s3"})
	want := []string{"s1", "s2", "s3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeIDs() = %v, want %v", got, want)
	}
}

func TestClampRating(t *testing.T) {
	for input, want := range map[float64]float64{-1: 0, 3.5: 3.5, 7: 5} {
		if got := ClampRating(input); got != want {
			t.Errorf("ClampRating(%v) = %v, want %v", input, got, want)
		}
	}
}
