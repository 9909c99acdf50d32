package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"strings"

	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/vehicle"
)

// runVehiclesCommand manages the registered vehicle list:
//
//	platewise vehicles             list vehicles
//	platewise vehicles add         add a vehicle interactively
//	platewise vehicles remove P    remove by plate
//	platewise vehicles set-default P
func runVehiclesCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("vehicles", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	rest := fs.Args()

	store, err := openStore()
	if err != nil {
		return err
	}
	cfg, passphrase, err := loadConfig(store)
	if err != nil {
		return err
	}

	if len(rest) == 0 {
		displayVehicleList(cfg)
		return nil
	}

	switch rest[0] {
	case "list":
		displayVehicleList(cfg)
		return nil
	case "add":
		return addVehicle(store, cfg, passphrase)
	case "remove":
		if len(rest) < 2 {
			return usageError(fmt.Errorf("usage: platewise vehicles remove <plate>"))
		}
		return removeVehicle(store, cfg, passphrase, rest[1])
	case "set-default":
		if len(rest) < 2 {
			return usageError(fmt.Errorf("usage: platewise vehicles set-default <plate>"))
		}
		return setDefaultVehicle(store, cfg, passphrase, rest[1])
	default:
		return usageError(fmt.Errorf("unknown vehicles subcommand %q", rest[0]))
	}
}

func displayVehicleList(cfg config.UserConfiguration) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-3s %-10s %-8s %-16s %s\n", "#", "Plate", "VIN", "Nickname", "Default")
	for i, entry := range cfg.Vehicles {
		nickname := entry.Nickname
		if nickname == "" {
			nickname = "-"
		}
		def := ""
		if entry.IsDefault {
			def = "✓"
		}
		fmt.Fprintf(&b, "%-3d %-10s %-8s %-16s %s\n", i+1, entry.Vehicle.Plate, entry.Vehicle.MaskedVIN(), nickname, def)
	}

	termOut.Println("")
	termOut.Panel("Registered Vehicles", strings.TrimRight(b.String(), "\n"))
	termOut.Dim("  %d vehicle(s) registered.", len(cfg.Vehicles))
}

// promptVehicleIdentity re-asks until the plate and VIN validate.
func promptVehicleIdentity() (vehicle.Identity, error) {
	for {
		plate, err := promptRequired("License plate number")
		if err != nil {
			return vehicle.Identity{}, err
		}
		vin, err := promptRequired("Last 5 digits of VIN")
		if err != nil {
			return vehicle.Identity{}, err
		}

		id, err := vehicle.NewIdentity(plate, vin)
		if err == nil {
			return id, nil
		}
		termOut.Error("  %s", displayMessage(err))
		termOut.Dim("  Please try again.")
		termOut.Println("")
	}
}

func addVehicle(store *config.Store, cfg config.UserConfiguration, passphrase string) error {
	termOut.Println("")
	termOut.Info("--- Add Vehicle ---")
	termOut.Println("")

	id, err := promptVehicleIdentity()
	if err != nil {
		return err
	}
	if _, exists := cfg.FindVehicle(id.Plate); exists {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("vehicle %s already registered", id.Plate)).
			WithUserMessage(fmt.Sprintf("Vehicle %s is already registered.", id.Plate))
	}

	nickname, err := promptLine("Nickname (optional)", "")
	if err != nil {
		return err
	}

	updated, err := cfg.AddVehicle(id, nickname)
	if err != nil {
		return err
	}

	makeDefault, err := promptConfirm("Set as default vehicle?", false)
	if err != nil {
		return err
	}
	if makeDefault {
		updated, err = updated.SetDefault(id.Plate)
		if err != nil {
			return err
		}
	}

	if err := store.Save(updated, passphrase); err != nil {
		return err
	}
	termOut.Println("")
	termOut.SuccessPanel(fmt.Sprintf("Vehicle %s added.", id.Plate))
	return nil
}

func removeVehicle(store *config.Store, cfg config.UserConfiguration, passphrase, plate string) error {
	normalized := vehicle.NormalizePlate(plate)
	entry, ok := cfg.FindVehicle(normalized)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("vehicle %q not found", plate)).
			WithUserMessage(fmt.Sprintf("Vehicle %q not found.", plate)).
			WithRemediation("Registered plates: " + strings.Join(registeredPlates(cfg), ", "))
	}

	termOut.Println("")
	confirmed, err := promptConfirm(fmt.Sprintf("Remove vehicle %s?", entry.Label()), false)
	if err != nil {
		return err
	}
	if !confirmed {
		termOut.Dim("  Cancelled.")
		return nil
	}

	updated, err := cfg.RemoveVehicle(normalized)
	if err != nil {
		return err
	}
	if err := store.Save(updated, passphrase); err != nil {
		return err
	}

	termOut.Println("")
	termOut.SuccessPanel(fmt.Sprintf("Vehicle %s removed.", entry.Vehicle.Plate))
	if entry.IsDefault {
		if newDefault, ok := updated.DefaultVehicle(); ok {
			termOut.Dim("  New default: %s", newDefault.Vehicle.Plate)
		}
	}
	return nil
}

func setDefaultVehicle(store *config.Store, cfg config.UserConfiguration, passphrase, plate string) error {
	updated, err := cfg.SetDefault(vehicle.NormalizePlate(plate))
	if err != nil {
		return err
	}
	if err := store.Save(updated, passphrase); err != nil {
		return err
	}
	termOut.Println("")
	termOut.SuccessPanel(fmt.Sprintf("Default vehicle set to %s.", vehicle.NormalizePlate(plate)))
	return nil
}

// displayMessage prefers the user-facing form of structured errors.
func displayMessage(err error) string {
	var pe *errors.Error
	if stderrors.As(err, &pe) {
		return pe.Display()
	}
	return err.Error()
}
