package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/platewise/platewise/pkg/browser"
	"github.com/platewise/platewise/pkg/captcha"
	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/logging"
	"github.com/platewise/platewise/pkg/provider"
	"github.com/platewise/platewise/pkg/vehicle"
)

// captchaKeyEnv holds the 2Captcha credential for automated solving.
const captchaKeyEnv = "CAPTCHA_API_KEY"

func openStore() (*config.Store, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	return config.NewStore(dir)
}

// loadConfig prompts for the passphrase and decrypts the configuration.
func loadConfig(store *config.Store) (config.UserConfiguration, string, error) {
	if !store.Exists() {
		return config.UserConfiguration{}, "", errors.ConfigNotFound()
	}
	passphrase, err := promptPassphrase("Enter your passphrase")
	if err != nil {
		return config.UserConfiguration{}, "", err
	}
	cfg, err := store.Load(passphrase)
	if err != nil {
		return config.UserConfiguration{}, "", err
	}
	return cfg, passphrase, nil
}

// newRunLogger sets up per-run JSONL debug logging under the config dir.
// Logging failures degrade to a no-op logger rather than block the command.
func newRunLogger(verbose bool) (*logging.Logger, func()) {
	dir, err := config.DefaultDir()
	if err != nil {
		return logging.Nop(), func() {}
	}
	log, err := logging.NewLogger(filepath.Join(dir, "logs"), uuid.NewString())
	if err != nil {
		return logging.Nop(), func() {}
	}
	if verbose {
		log.SetMinLevel(logging.LevelDebug)
	}
	return log, func() { _ = log.Close() }
}

// selectVehicle picks the vehicle to operate on: --plate when given,
// otherwise the default entry.
func selectVehicle(cfg config.UserConfiguration, plateFlag string) (config.VehicleEntry, error) {
	if plateFlag != "" {
		entry, ok := cfg.FindVehicle(vehicle.NormalizePlate(plateFlag))
		if !ok {
			return config.VehicleEntry{}, errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("vehicle %q is not registered", plateFlag)).
				WithUserMessage(fmt.Sprintf("Vehicle %q is not registered.", plateFlag)).
				WithRemediation("Registered plates: " + strings.Join(registeredPlates(cfg), ", "))
		}
		return entry, nil
	}
	entry, ok := cfg.DefaultVehicle()
	if !ok {
		return config.VehicleEntry{}, errors.New(errors.ErrCodeConfigInvalid, "no default vehicle configured")
	}
	return entry, nil
}

func registeredPlates(cfg config.UserConfiguration) []string {
	plates := make([]string, 0, len(cfg.Vehicles))
	for _, v := range cfg.Vehicles {
		plates = append(plates, v.Vehicle.Plate)
	}
	return plates
}

// withSession launches a browser, opens a page, and runs fn with provider
// deps wired. The session is fully torn down on every path, including
// Ctrl-C, before the error propagates.
func withSession(ctx context.Context, headed bool, log *logging.Logger, fn func(provider.Deps) error) error {
	opts := browser.DefaultOptions()
	opts.Headless = !headed

	sess, err := browser.Launch(ctx, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	pg, err := sess.NewPage(ctx)
	if err != nil {
		return err
	}

	solver := captcha.NewSolver(os.Getenv(captchaKeyEnv), headed, log)
	return fn(provider.Deps{
		Page:    pg,
		Solver:  solver,
		Metrics: sess.Metrics(),
		Log:     log,
		Timeout: opts.Timeout,
	})
}
