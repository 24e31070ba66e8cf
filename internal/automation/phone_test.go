package automation

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(555) 123-4567", "15551234567"},
		{"555-123-4567", "15551234567"},
		{"15551234567", "15551234567"},
		{"+1 555 123 4567", "15551234567"},
		{"+44 20 7946 0958", "442079460958"},
		{"911", "911"},
	}
	for _, tt := range tests {
		got, err := NormalizeNumber(tt.in)
		if err != nil {
			t.Errorf("NormalizeNumber(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeNumberNoDigits(t *testing.T) {
	for _, in := range []string{"", "abc", "+-() "} {
		if _, err := NormalizeNumber(in); !errors.Is(err, ErrNoDigits) {
			t.Errorf("NormalizeNumber(%q): expected ErrNoDigits, got %v", in, err)
		}
	}
}

func TestDialURL(t *testing.T) {
	got := DialURL("https://voice.google.com", "15551234567")
	want := "https://voice.google.com/u/0/calls?a=nc,%2B15551234567"
	if got != want {
		t.Fatalf("DialURL = %q, want %q", got, want)
	}
}

func TestDialURLTrailingSlash(t *testing.T) {
	got := DialURL("https://voice.google.com/", "911")
	if strings.Contains(got, "com//") {
		t.Fatalf("double slash in %q", got)
	}
	if !strings.Contains(got, "%2B911") {
		t.Fatalf("expected encoded plus prefix in %q", got)
	}
}
