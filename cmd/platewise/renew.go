package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/dmv"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/keychain"
	"github.com/platewise/platewise/pkg/logging"
	"github.com/platewise/platewise/pkg/provider"
	"github.com/platewise/platewise/pkg/terminal"
)

const renewSteps = 6

// runRenewCommand runs the full renewal flow: eligibility, fees, payment
// confirmation, submission.
func runRenewCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("renew", flag.ContinueOnError)
	headed := fs.Bool("headed", false, "show the browser window")
	verbose := fs.Bool("verbose", false, "show detailed output")
	plate := fs.String("plate", "", "renew a specific plate")
	dryRun := fs.Bool("dry-run", false, "stop before payment confirmation")
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

	entry, err := selectVehicle(cfg, *plate)
	if err != nil {
		return err
	}

	// Card data only ever comes from the OS keychain.
	pay, havePayment, err := keychain.Retrieve()
	if err != nil {
		return err
	}
	if !havePayment && !*dryRun {
		return errors.New(errors.ErrCodePayment, "payment information not found").
			WithUserMessage("Payment information not found.").
			WithRemediation("Run 'platewise register --payment' to add payment info.")
	}
	if havePayment {
		if pay.IsExpired() {
			return errors.New(errors.ErrCodePayment, "payment card is expired").
				WithUserMessage(fmt.Sprintf("Card %s expired %s.", pay.MaskedNumber(), pay.ExpiryDisplay())).
				WithRemediation("Run 'platewise register --payment' to update.")
		}
		cfg = cfg.WithPayment(pay)
	}

	log, closeLog := newRunLogger(*verbose)
	defer closeLog()

	termOut.Println("")
	termOut.Step(1, renewSteps, "Loading configuration...")
	if *verbose {
		termOut.Dim("    Vehicle: %s / %s", entry.Vehicle.Plate, entry.Vehicle.MaskedVIN())
		if cfg.Owner != nil {
			termOut.Dim("    Owner: %s", cfg.Owner.FullName)
		}
		if havePayment {
			termOut.Dim("    Card: %s (%s)", pay.MaskedNumber(), pay.CardType())
		}
	}
	log.Info(logging.CategoryCLI, "renew_start", "renewal started", map[string]any{
		"plate":   entry.Vehicle.Plate,
		"dry_run": *dryRun,
		"headed":  *headed,
	})

	return withSession(ctx, *headed, log, func(deps provider.Deps) error {
		p, err := provider.New(cfg.State, deps)
		if err != nil {
			return err
		}
		return runRenewalFlow(ctx, p, cfg, entry, *dryRun)
	})
}

func runRenewalFlow(ctx context.Context, p provider.Provider, cfg config.UserConfiguration, entry config.VehicleEntry, dryRun bool) error {
	termOut.Step(2, renewSteps, fmt.Sprintf("Connecting to %s DMV portal...", p.StateCode()))

	termOut.Step(3, renewSteps, "Submitting vehicle info...")
	eligibility, err := p.ValidateEligibility(ctx, entry.Vehicle.Plate, entry.Vehicle.VINLast5)
	if err != nil {
		return err
	}

	termOut.Step(4, renewSteps, "Checking eligibility...")
	displayEligibility(eligibility)

	termOut.Step(5, renewSteps, "Retrieving fees...")
	fees, err := p.GetFeeBreakdown(ctx)
	if err != nil {
		return err
	}
	displayFees(fees)

	if dryRun {
		termOut.Println("")
		termOut.SuccessPanel("Dry run complete. Ready for actual renewal.")
		termOut.Dim("Run 'platewise renew' (without --dry-run) to proceed.")
		return nil
	}

	// Payment confirmation. Declining is a successful outcome: nothing has
	// been submitted yet and no card data has left the machine.
	termOut.Println("")
	if cfg.Payment != nil {
		termOut.Println("  Card: %s (exp %s)", cfg.Payment.MaskedNumber(), cfg.Payment.ExpiryDisplay())
	}
	confirmed, err := promptConfirm(fmt.Sprintf("⚠ Pay %s now?", fees.TotalDisplay()), false)
	if err != nil {
		return err
	}
	if !confirmed {
		termOut.Println("")
		termOut.Warn("Aborted. No payment was made.")
		return nil
	}

	termOut.Println("")
	sp := terminal.NewSpinner("Processing payment...")
	sp.Start()
	result, err := p.SubmitRenewal(ctx, &cfg)
	sp.Stop()
	if err != nil {
		return err
	}

	termOut.Step(6, renewSteps, "Payment processed!")
	displayRenewalResult(result)
	return nil
}

func displayEligibility(e *dmv.EligibilityResult) {
	termOut.Println("")
	if e.Smog.Passed {
		detail := ""
		if e.Smog.CheckDate != nil {
			detail = " (" + e.Smog.CheckDate.Format("01/02/2006") + ")"
		}
		termOut.Success("  ✓ Smog Check: Passed%s", detail)
	} else {
		termOut.Error("  ✗ Smog Check: Failed")
	}
	if e.Insurance.Verified {
		detail := ""
		if e.Insurance.Provider != "" {
			detail = " (" + e.Insurance.Provider + ")"
		}
		termOut.Success("  ✓ Insurance: Verified%s", detail)
	} else {
		termOut.Error("  ✗ Insurance: Not Verified")
	}
	termOut.Println("")
}

func displayFees(fees *dmv.FeeBreakdown) {
	var b strings.Builder
	for _, item := range fees.Items {
		fmt.Fprintf(&b, "%-28s %10s\n", item.Description, item.AmountDisplay())
	}
	fmt.Fprintf(&b, "%s\n", strings.Repeat("─", 39))
	fmt.Fprintf(&b, "%-28s %10s", "Total", fees.TotalDisplay())

	termOut.Println("")
	termOut.Panel("Registration Fees", b.String())
}

func displayRenewalResult(result *dmv.RenewalResult) {
	termOut.Println("")
	if !result.Success {
		termOut.ErrorPanel("Renewal failed.", result.ErrorMessage)
		return
	}

	termOut.SuccessPanel("Payment successful!")
	if result.ConfirmationNumber != "" {
		termOut.Println("  Confirmation: %s", result.ConfirmationNumber)
	}
	if result.ReceiptPath != "" {
		termOut.SuccessPanel("Receipt saved to " + result.ReceiptPath)
	}
	if result.NewExpirationDate != nil {
		termOut.Println("")
		termOut.Success("  Your registration is now valid through %s.", result.NewExpirationDate.Format("January 2006"))
	}
}
