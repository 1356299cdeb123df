package config

import "testing"

func TestNewDefaultsAxisIdentifiers(t *testing.T) {
	cfg := New(nil)
	if len(cfg.AxisIdentifiers) != len(DefaultAxisIdentifiers()) {
		t.Fatalf("New(nil) axes = %v, want defaults", cfg.AxisIdentifiers)
	}
	if cfg.AxisIdentifiers[0] != "N" {
		t.Errorf("AxisIdentifiers[0] = %q, want N (the default list leads with the block-number axis)", cfg.AxisIdentifiers[0])
	}
	if cfg.IterationLimit != DefaultIterationLimit {
		t.Errorf("IterationLimit = %d, want %d", cfg.IterationLimit, DefaultIterationLimit)
	}
	if cfg.ModalGroups["G90"] != "distance_mode" {
		t.Errorf("ModalGroups[G90] = %q, want distance_mode", cfg.ModalGroups["G90"])
	}
	if cfg.NonModalGroups["G4"] != "dwell" {
		t.Errorf("NonModalGroups[G4] = %q, want dwell", cfg.NonModalGroups["G4"])
	}
}

func TestNewWithCustomAxes(t *testing.T) {
	cfg := New([]string{"X", "Y"})
	if len(cfg.AxisIdentifiers) != 2 || cfg.AxisIdentifiers[0] != "X" || cfg.AxisIdentifiers[1] != "Y" {
		t.Fatalf("New([X,Y]) axes = %v", cfg.AxisIdentifiers)
	}
}

func TestResolvedAxesAppendsExtras(t *testing.T) {
	cfg := New([]string{"X", "Y"})
	cfg.ExtraAxes = []string{"Q"}
	want := []string{"X", "Y", "Q"}
	got := cfg.ResolvedAxes()
	if len(got) != len(want) {
		t.Fatalf("ResolvedAxes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolvedAxes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolvedAxesNoExtras(t *testing.T) {
	cfg := New([]string{"X"})
	got := cfg.ResolvedAxes()
	if len(got) != 1 || got[0] != "X" {
		t.Fatalf("ResolvedAxes() = %v, want [X]", got)
	}
}
