package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/keychain"
	"github.com/platewise/platewise/pkg/payment"
	"github.com/platewise/platewise/pkg/provider"
)

// runRegisterCommand sets up or updates the local configuration. The card
// number and CVV go to the OS keychain only, never into the config file.
func runRegisterCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	paymentOnly := fs.Bool("payment", false, "store or update payment info in the OS keychain")
	verify := fs.Bool("verify", false, "display the saved configuration")
	reset := fs.Bool("reset", false, "delete all saved configuration and payment data")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	switch {
	case *reset:
		return resetConfig(store)
	case *verify:
		return verifyConfig(store)
	case *paymentOnly:
		return registerPayment(store)
	default:
		return registerFull(store)
	}
}

func registerFull(store *config.Store) error {
	termOut.Println("")
	termOut.Panel("Welcome to platewise!", "Let's set up your vehicle registration.")
	termOut.Println("")

	termOut.Info("--- Vehicle Information ---")
	termOut.Println("")
	id, err := promptVehicleIdentity()
	if err != nil {
		return err
	}
	nickname, err := promptLine("Nickname (optional)", "")
	if err != nil {
		return err
	}
	termOut.Println("")

	owner, err := promptOwnerInfo()
	if err != nil {
		return err
	}

	state, err := promptState()
	if err != nil {
		return err
	}

	cfg, err := config.New(id, nickname, &owner, state)
	if err != nil {
		return err
	}

	// Payment is optional here; renewals need it but status checks don't.
	termOut.Info("--- Payment (Optional) ---")
	termOut.Println("")
	termOut.Dim("  Payment info is only needed for renewals.")
	termOut.Dim("  You can add it later with 'platewise register --payment'.")
	termOut.Println("")
	addPayment, err := promptConfirm("Add payment information now?", false)
	if err != nil {
		return err
	}
	var pay *payment.Info
	if addPayment {
		termOut.Println("")
		p, err := promptPaymentInfo()
		if err != nil {
			return err
		}
		pay = &p
	}

	passphrase, err := promptNewPassphrase()
	if err != nil {
		return err
	}
	if err := store.Save(cfg, passphrase); err != nil {
		return err
	}
	if pay != nil {
		if err := keychain.Store(*pay); err != nil {
			return err
		}
	}

	termOut.Println("")
	termOut.SuccessPanel("Configuration saved securely.")
	termOut.Println("")
	termOut.Dim("Run 'platewise status' to check your registration.")
	return nil
}

func registerPayment(store *config.Store) error {
	if !store.Exists() {
		return errors.ConfigNotFound()
	}

	termOut.Println("")
	termOut.Panel("Updating payment information", "")
	termOut.Println("")

	pay, err := promptPaymentInfo()
	if err != nil {
		return err
	}
	if err := keychain.Store(pay); err != nil {
		return err
	}

	termOut.Println("")
	termOut.SuccessPanel(fmt.Sprintf("Card %s stored in the OS keychain.", pay.MaskedNumber()))
	return nil
}

func verifyConfig(store *config.Store) error {
	cfg, _, err := loadConfig(store)
	if err != nil {
		return err
	}

	var b strings.Builder
	if entry, ok := cfg.DefaultVehicle(); ok {
		fmt.Fprintf(&b, "Vehicle:  %s / %s\n", entry.Vehicle.Plate, entry.Vehicle.MaskedVIN())
	}
	if len(cfg.Vehicles) > 1 {
		fmt.Fprintf(&b, "Vehicles: %d registered\n", len(cfg.Vehicles))
	}
	if cfg.Owner != nil {
		fmt.Fprintf(&b, "Owner:    %s\n", cfg.Owner.FullName)
		fmt.Fprintf(&b, "Phone:    %s\n", cfg.Owner.FormattedPhone())
		fmt.Fprintf(&b, "Email:    %s\n", cfg.Owner.MaskedEmail())
		fmt.Fprintf(&b, "Address:  %s\n", cfg.Owner.Address.Formatted())
	}
	fmt.Fprintf(&b, "State:    %s\n", cfg.State)

	if pay, ok, err := keychain.Retrieve(); err == nil && ok {
		fmt.Fprintf(&b, "Card:     %s (exp %s, %s)", pay.MaskedNumber(), pay.ExpiryDisplay(), pay.CardType())
	} else {
		fmt.Fprintf(&b, "Card:     not found in keychain")
	}

	termOut.Println("")
	termOut.Panel("Saved Configuration", b.String())
	termOut.Println("")
	termOut.SuccessPanel("All fields valid.")
	return nil
}

func resetConfig(store *config.Store) error {
	termOut.Println("")
	confirmed, err := promptConfirm("Delete all saved configuration?", false)
	if err != nil {
		return err
	}
	if !confirmed {
		termOut.Dim("  Cancelled.")
		return nil
	}

	deleted, err := store.Delete()
	if err != nil {
		return err
	}
	if err := keychain.Delete(); err != nil {
		return err
	}

	if deleted {
		termOut.SuccessPanel("Configuration and payment data deleted.")
	} else {
		termOut.Dim("No configuration found to delete.")
	}
	return nil
}

func promptOwnerInfo() (config.OwnerInfo, error) {
	for {
		termOut.Info("--- Owner Information ---")
		termOut.Println("")

		name, err := promptRequired("Full name")
		if err != nil {
			return config.OwnerInfo{}, err
		}
		phone, err := promptRequired("Phone number")
		if err != nil {
			return config.OwnerInfo{}, err
		}
		email, err := promptRequired("Email")
		if err != nil {
			return config.OwnerInfo{}, err
		}
		street, err := promptRequired("Street address")
		if err != nil {
			return config.OwnerInfo{}, err
		}
		city, err := promptRequired("City")
		if err != nil {
			return config.OwnerInfo{}, err
		}
		st, err := promptLine("State", "CA")
		if err != nil {
			return config.OwnerInfo{}, err
		}
		zip, err := promptRequired("ZIP code")
		if err != nil {
			return config.OwnerInfo{}, err
		}

		address, err := config.NewAddress(street, city, st, zip)
		if err == nil {
			owner, oerr := config.NewOwnerInfo(name, phone, email, address)
			if oerr == nil {
				termOut.Println("")
				return owner, nil
			}
			err = oerr
		}
		termOut.Error("  %s", displayMessage(err))
		termOut.Dim("  Please try again.")
		termOut.Println("")
	}
}

// promptState asks for the registration state and validates it against
// the supported providers.
func promptState() (string, error) {
	supported := provider.List()
	for {
		st, err := promptLine("Registration state", "CA")
		if err != nil {
			return "", err
		}
		st = strings.ToUpper(strings.TrimSpace(st))
		for _, code := range supported {
			if st == code {
				return st, nil
			}
		}
		termOut.Error("  State %q is not supported.", st)
		termOut.Dim("  Supported states: %s", strings.Join(supported, ", "))
		termOut.Println("")
	}
}

func promptPaymentInfo() (payment.Info, error) {
	termOut.Info("--- Payment Information ---")
	termOut.Println("")
	for {
		number, err := promptRequired("Card number")
		if err != nil {
			return payment.Info{}, err
		}
		expiry, err := promptRequired("Expiry (MM/YYYY)")
		if err != nil {
			return payment.Info{}, err
		}
		cvv, err := promptRequired("CVV")
		if err != nil {
			return payment.Info{}, err
		}
		zip, err := promptRequired("Billing ZIP")
		if err != nil {
			return payment.Info{}, err
		}

		month, year, perr := parseExpiry(expiry)
		if perr == nil {
			p, err := payment.New(number, month, year, cvv, zip)
			if err == nil {
				termOut.Println("")
				return p, nil
			}
			perr = err
		}
		termOut.Error("  %s", displayMessage(perr))
		termOut.Dim("  Please try again.")
		termOut.Println("")
	}
}

func parseExpiry(s string) (month, year int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "expiry must be MM/YYYY")
	}
	month, merr := strconv.Atoi(parts[0])
	year, yerr := strconv.Atoi(parts[1])
	if merr != nil || yerr != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "expiry must be MM/YYYY")
	}
	return month, year, nil
}
