package config

import (
	"os"
	"testing"
	"time"
)

func TestMigrateV1SingleVehicle(t *testing.T) {
	raw := map[string]any{
		"version":    1,
		"created_at": "2025-03-01T10:00:00Z",
		"vehicle": map[string]any{
			"plate":     "7ABC123",
			"vin_last5": "12345",
		},
		"state": "CA",
	}

	out := migrate(raw)

	if out["version"] != CurrentVersion {
		t.Fatalf("version = %v, want %d", out["version"], CurrentVersion)
	}
	if _, still := out["vehicle"]; still {
		t.Error("v1 vehicle key should be removed")
	}
	list, ok := out["vehicles"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("vehicles = %v", out["vehicles"])
	}
	entry := list[0].(map[string]any)
	if entry["is_default"] != true {
		t.Error("migrated sole vehicle should be the default")
	}
	if entry["added_at"] != "2025-03-01T10:00:00Z" {
		t.Errorf("added_at = %v, want created_at carried over", entry["added_at"])
	}
	vid := entry["vehicle"].(map[string]any)
	if vid["plate"] != "7ABC123" {
		t.Errorf("plate = %v", vid["plate"])
	}
}

func TestMigrateCurrentVersionUntouched(t *testing.T) {
	raw := map[string]any{
		"version": CurrentVersion,
		"vehicles": []any{
			map[string]any{"vehicle": map[string]any{"plate": "8XYZ999", "vin_last5": "67890"}, "is_default": true},
		},
	}

	out := migrate(raw)

	if out["version"] != CurrentVersion {
		t.Errorf("version = %v", out["version"])
	}
	if len(out["vehicles"].([]any)) != 1 {
		t.Errorf("vehicles changed: %v", out["vehicles"])
	}
}

func TestMigrateMissingVersionTreatedAsV1(t *testing.T) {
	raw := map[string]any{
		"created_at": "2024-01-15T08:30:00Z",
		"vehicle":    map[string]any{"plate": "5DEF456", "vin_last5": "APRZ9"},
	}

	out := migrate(raw)

	if out["version"] != CurrentVersion {
		t.Fatalf("version = %v", out["version"])
	}
	if _, ok := out["vehicles"]; !ok {
		t.Error("expected vehicles list after migration")
	}
}

// End-to-end: a v1 document saved by hand loads through the Store and comes
// back as a valid current-version configuration.
func TestLoadMigratesV1Document(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	doc := []byte(`version: 1
created_at: 2025-03-01T10:00:00Z
updated_at: 2025-03-01T10:00:00Z
vehicle:
  plate: 7ABC123
  vin_last5: "12345"
state: CA
`)
	c, err := newCrypter("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	encrypted, err := c.encrypt(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), encrypted, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := store.Load("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d", cfg.Version)
	}
	if len(cfg.Vehicles) != 1 || cfg.Vehicles[0].Vehicle.Plate != "7ABC123" {
		t.Fatalf("Vehicles = %+v", cfg.Vehicles)
	}
	if !cfg.Vehicles[0].IsDefault {
		t.Error("sole vehicle should be default after migration")
	}
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if !cfg.Vehicles[0].AddedAt.Equal(want) {
		t.Errorf("AddedAt = %v", cfg.Vehicles[0].AddedAt)
	}
}
