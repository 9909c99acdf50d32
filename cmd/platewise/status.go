package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/dmv"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/logging"
	"github.com/platewise/platewise/pkg/provider"
	"github.com/platewise/platewise/pkg/terminal"
)

// runStatusCommand checks registration status against the state portal.
func runStatusCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	headed := fs.Bool("headed", false, "show the browser window")
	verbose := fs.Bool("verbose", false, "show detailed output")
	plate := fs.String("plate", "", "check a specific plate")
	all := fs.Bool("all", false, "check every registered vehicle")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(store)
	if err != nil {
		return err
	}

	log, closeLog := newRunLogger(*verbose)
	defer closeLog()

	var entries []config.VehicleEntry
	if *all {
		entries = cfg.Vehicles
	} else {
		entry, err := selectVehicle(cfg, *plate)
		if err != nil {
			return err
		}
		entries = []config.VehicleEntry{entry}
	}

	if *verbose {
		termOut.Dim("  Provider: %s", cfg.State)
	}

	// Vehicles are processed strictly one at a time; withSession tears the
	// browser down completely between entries.
	var firstErr error
	for i, entry := range entries {
		if i > 0 {
			termOut.Println("")
		}
		if *all {
			termOut.Bold("%s", entry.Label())
		}

		err := checkVehicleStatus(ctx, cfg.State, entry, *headed, *verbose, log)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return err
		}
		if !*all {
			return err
		}
		// With --all, a per-vehicle domain failure is reported and the
		// remaining vehicles are still checked.
		renderError(err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func checkVehicleStatus(ctx context.Context, state string, entry config.VehicleEntry, headed, verbose bool, log *logging.Logger) error {
	return withSession(ctx, headed, log, func(deps provider.Deps) error {
		p, err := provider.New(state, deps)
		if err != nil {
			return err
		}

		sp := terminal.NewSpinner("Checking registration status...")
		sp.Start()
		result, err := p.GetRegistrationStatus(ctx, entry.Vehicle.Plate, entry.Vehicle.VINLast5)
		sp.Stop()
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeCaptchaUnresolved) && !headed {
				log.Info(logging.CategoryCLI, "captcha_blocked", "status check blocked by CAPTCHA in headless mode", nil)
			}
			return err
		}

		displayStatus(result, verbose)
		return nil
	})
}

func displayStatus(result *dmv.RegistrationStatus, verbose bool) {
	icon := statusIcon(result.Status)

	var b strings.Builder
	if result.VehicleDescription != "" {
		fmt.Fprintf(&b, "%s\n", result.VehicleDescription)
	}
	fmt.Fprintf(&b, "Plate:      %s\n", result.Plate)
	fmt.Fprintf(&b, "Status:     %s %s", icon, result.Status.Display())

	if result.ExpirationDate != nil {
		fmt.Fprintf(&b, "\nExpires:    %s", result.ExpirationDate.Format("January 02, 2006"))
		if result.DaysUntilExpiry != nil {
			switch days := *result.DaysUntilExpiry; {
			case days > 0:
				fmt.Fprintf(&b, "\nDays left:  %d", days)
			case days == 0:
				fmt.Fprintf(&b, "\nDays left:  TODAY")
			default:
				fmt.Fprintf(&b, "\nOverdue:    %d days", -days)
			}
		}
	}
	if result.LastUpdated != nil {
		fmt.Fprintf(&b, "\nAs of:      %s", result.LastUpdated.Format("January 02, 2006"))
	}
	if result.HoldReason != "" {
		fmt.Fprintf(&b, "\nReason:     %s", result.HoldReason)
	}
	if result.StatusMessage != "" {
		fmt.Fprintf(&b, "\n\n%s", result.StatusMessage)
	}

	termOut.Println("")
	termOut.Panel("Registration Status", b.String())

	if verbose {
		renewable := "No"
		if result.IsRenewable() {
			renewable = "Yes"
		}
		termOut.Dim("  Checked via %s / ***%s", result.Plate, lastTwo(result.VINLast5))
		termOut.Dim("  Renewable: %s", renewable)
	}
}

func statusIcon(s dmv.StatusType) string {
	switch s {
	case dmv.StatusCurrent:
		return "✓"
	case dmv.StatusExpired:
		return "✗"
	default:
		return "⚠"
	}
}

func lastTwo(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[len(s)-2:]
}
