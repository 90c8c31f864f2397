package models

import (
	"testing"
	"time"
)

func TestCostPerWear(t *testing.T) {
	price := 50.0
	g := &Garment{PurchasePrice: &price, WearCount: 10}

	cpw := g.CostPerWear()
	if cpw == nil {
		t.Fatal("Expected cost per wear to be defined")
	}
	if *cpw != 5.0 {
		t.Errorf("Expected cost per wear 5.00, got %.2f", *cpw)
	}
}

func TestCostPerWearUndefinedWhenNeverWorn(t *testing.T) {
	price := 20.0
	g := &Garment{Name: "Black T-shirt", PurchasePrice: &price, WearCount: 0}

	if g.CostPerWear() != nil {
		t.Error("Expected cost per wear to be undefined at zero wears")
	}
	if !g.RarelyWorn() {
		t.Error("Expected an unworn garment to be rarely worn")
	}
}

func TestCostPerWearUndefinedWithoutPrice(t *testing.T) {
	g := &Garment{WearCount: 5}
	if g.CostPerWear() != nil {
		t.Error("Expected cost per wear to be undefined without a price")
	}
}

func TestRarelyWornThreshold(t *testing.T) {
	cases := []struct {
		wearCount int
		expected  bool
	}{
		{0, true},
		{2, true},
		{3, false},
		{50, false},
	}

	for _, tc := range cases {
		g := &Garment{WearCount: tc.wearCount}
		if g.RarelyWorn() != tc.expected {
			t.Errorf("WearCount %d: expected rarely worn %v", tc.wearCount, tc.expected)
		}
	}
}

func TestNeedsCare(t *testing.T) {
	g := &Garment{}
	if g.NeedsCare() {
		t.Error("Expected no care needed with all flags clear")
	}

	g.NeedsIron = true
	if !g.NeedsCare() {
		t.Error("Expected care needed when iron flag is set")
	}
}

func TestSuitcaseDuration(t *testing.T) {
	s := &Suitcase{
		DepartureDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate:    time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
	}

	if got := s.DurationDays(); got != 5 {
		t.Errorf("Expected duration 5 days, got %d", got)
	}
}

func TestSuitcaseDurationSingleDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s := &Suitcase{DepartureDate: day, ReturnDate: day}

	if got := s.DurationDays(); got != 1 {
		t.Errorf("Expected duration 1 day, got %d", got)
	}
}

func TestSuitcaseTemporalState(t *testing.T) {
	now := time.Now()

	past := &Suitcase{
		DepartureDate: now.AddDate(0, 0, -10),
		ReturnDate:    now.AddDate(0, 0, -5),
	}
	if !past.IsPast() || past.IsOngoing() || past.IsUpcoming() {
		t.Error("Expected suitcase to be past")
	}

	ongoing := &Suitcase{
		DepartureDate: now.AddDate(0, 0, -1),
		ReturnDate:    now.AddDate(0, 0, 1),
	}
	if !ongoing.IsOngoing() || ongoing.IsPast() || ongoing.IsUpcoming() {
		t.Error("Expected suitcase to be ongoing")
	}

	upcoming := &Suitcase{
		DepartureDate: now.AddDate(0, 0, 5),
		ReturnDate:    now.AddDate(0, 0, 10),
	}
	if !upcoming.IsUpcoming() || upcoming.IsPast() || upcoming.IsOngoing() {
		t.Error("Expected suitcase to be upcoming")
	}
}

func TestPackingPercentage(t *testing.T) {
	cases := []struct {
		packed, total, expected int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{2, 4, 50},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
	}

	for _, tc := range cases {
		if got := PackingPercentage(tc.packed, tc.total); got != tc.expected {
			t.Errorf("PackingPercentage(%d, %d): expected %d, got %d", tc.packed, tc.total, tc.expected, got)
		}
	}
}
