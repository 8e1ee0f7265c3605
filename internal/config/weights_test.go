package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWeightProfilesBuiltins(t *testing.T) {
	profiles, err := loadWeightProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to builtins: %v", err)
	}
	if _, ok := profiles["balanced"]; !ok {
		t.Error("expected builtin balanced profile")
	}
	if profiles["frugal"]["cost"] != 1.5 {
		t.Errorf("unexpected frugal cost weight: %v", profiles["frugal"]["cost"])
	}
}

func TestLoadWeightProfilesFileOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "weights.yaml")
	content := `
profiles:
  balanced:
    vibe: 2.0
    access: 1.0
    cost: 1.0
  date_night:
    vibe: 3.0
    cost: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write weights file: %v", err)
	}

	profiles, err := loadWeightProfiles(path)
	if err != nil {
		t.Fatalf("loadWeightProfiles() error = %v", err)
	}

	if profiles["balanced"]["vibe"] != 2.0 {
		t.Errorf("file should override builtin: %v", profiles["balanced"])
	}
	if profiles["date_night"]["vibe"] != 3.0 {
		t.Errorf("custom profile not loaded: %v", profiles["date_night"])
	}
	// Untouched builtin survives the merge.
	if profiles["social"]["vibe"] != 1.5 {
		t.Errorf("builtin social profile lost: %v", profiles["social"])
	}
}

func TestLoadWeightProfilesRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte("profiles: [not a map"), 0600); err != nil {
		t.Fatalf("failed to write weights file: %v", err)
	}
	if _, err := loadWeightProfiles(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
