package main

import (
	"testing"

	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/dmv"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/vehicle"
)

func testConfig(t *testing.T) config.UserConfiguration {
	t.Helper()
	id, err := vehicle.NewIdentity("7ABC123", "12345")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.New(id, "daily driver", nil, "CA")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := vehicle.NewIdentity("8XYZ999", "67890")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err = cfg.AddVehicle(id2, "")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestExitCodeForError(t *testing.T) {
	if got := exitCodeForError(nil); got != exitOK {
		t.Errorf("nil error: exit code = %d", got)
	}
	if got := exitCodeForError(errors.VehicleNotFound("7ABC123")); got != exitError {
		t.Errorf("domain error: exit code = %d", got)
	}
	if got := exitCodeForError(usageError(errors.New(errors.ErrCodeInvalidInput, "bad flag"))); got != exitUsage {
		t.Errorf("usage error: exit code = %d", got)
	}
	if got := exitCodeForError(withExitCode(errors.ConfigNotFound(), 7)); got != 7 {
		t.Errorf("withExitCode: exit code = %d", got)
	}
}

func TestSelectVehicleDefault(t *testing.T) {
	entry, err := selectVehicle(testConfig(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Vehicle.Plate != "7ABC123" {
		t.Errorf("default plate = %q", entry.Vehicle.Plate)
	}
}

func TestSelectVehicleByPlate(t *testing.T) {
	entry, err := selectVehicle(testConfig(t), "8xyz999")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Vehicle.Plate != "8XYZ999" {
		t.Errorf("plate = %q", entry.Vehicle.Plate)
	}
}

func TestSelectVehicleUnknownPlate(t *testing.T) {
	_, err := selectVehicle(testConfig(t), "NOPE123")
	if err == nil {
		t.Fatal("expected error for unregistered plate")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %q", code)
	}
}

func TestRegisteredPlates(t *testing.T) {
	plates := registeredPlates(testConfig(t))
	if len(plates) != 2 || plates[0] != "7ABC123" || plates[1] != "8XYZ999" {
		t.Errorf("plates = %v", plates)
	}
}

func TestParseExpiry(t *testing.T) {
	month, year, err := parseExpiry("09/2028")
	if err != nil {
		t.Fatal(err)
	}
	if month != 9 || year != 2028 {
		t.Errorf("parsed %d/%d", month, year)
	}

	for _, bad := range []string{"", "092028", "9-2028", "aa/bbbb", "9/2028/1"} {
		if _, _, err := parseExpiry(bad); err == nil {
			t.Errorf("parseExpiry(%q) accepted", bad)
		}
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status dmv.StatusType
		want   string
	}{
		{dmv.StatusCurrent, "✓"},
		{dmv.StatusExpiringSoon, "⚠"},
		{dmv.StatusPending, "⚠"},
		{dmv.StatusHold, "⚠"},
		{dmv.StatusExpired, "✗"},
	}
	for _, tt := range tests {
		if got := statusIcon(tt.status); got != tt.want {
			t.Errorf("statusIcon(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestLastTwo(t *testing.T) {
	if got := lastTwo("12345"); got != "45" {
		t.Errorf("lastTwo = %q", got)
	}
	if got := lastTwo("4"); got != "4" {
		t.Errorf("lastTwo short = %q", got)
	}
}
