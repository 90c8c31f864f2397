package handlers

import (
	"testing"
	"time"
)

func TestDepartureInPast(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	now := time.Date(2026, 8, 30, 23, 30, 0, 0, paris)

	formDate := func(value string) time.Time {
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			t.Fatalf("Failed to parse date %s: %v", value, err)
		}
		return d
	}

	if !departureInPast(formDate("2026-08-29"), now) {
		t.Error("Expected yesterday's departure to be rejected")
	}
	if departureInPast(formDate("2026-08-30"), now) {
		t.Error("Expected today's departure to be accepted")
	}
	if departureInPast(formDate("2026-08-31"), now) {
		t.Error("Expected tomorrow's departure to be accepted")
	}
}

func TestDepartureInPastUsesLocalDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	// Shortly after midnight in Paris it is still the previous day in UTC;
	// the guard follows the server's local date.
	now := time.Date(2026, 8, 31, 0, 30, 0, 0, paris)

	formDate := func(value string) time.Time {
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			t.Fatalf("Failed to parse date %s: %v", value, err)
		}
		return d
	}

	if !departureInPast(formDate("2026-08-30"), now) {
		t.Error("Expected a departure before the local date to be rejected")
	}
	if departureInPast(formDate("2026-08-31"), now) {
		t.Error("Expected a departure on the local date to be accepted")
	}
}
