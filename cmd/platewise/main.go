// Command platewise automates vehicle registration renewal against state
// DMV portals. Configuration is encrypted locally; card data lives only in
// the OS credential store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	stderrors "errors"

	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/terminal"

	// Register state providers.
	_ "github.com/platewise/platewise/pkg/provider/california"
)

// Version information - set via ldflags during build
var (
	version   = "1.0.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// termOut is the terminal writer for styled output.
var termOut = terminal.New()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printHelp()
		return exitUsage
	}

	switch args[0] {
	case "--version", "-v", "version":
		printVersion()
		return exitOK
	case "--help", "-h", "help":
		printHelp()
		return exitOK
	case "register":
		return runCommand(runRegisterCommand, args[1:])
	case "status":
		return runCommand(runStatusCommand, args[1:])
	case "vehicles":
		return runCommand(runVehiclesCommand, args[1:])
	case "renew":
		return runCommand(runRenewCommand, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printHelp()
		return exitUsage
	}
}

// runCommand runs a handler under a signal-aware context so Ctrl-C during
// any portal operation still tears down the browser session via defers.
func runCommand(handler func(context.Context, []string) error, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := handler(ctx, args)
	if err == nil {
		return exitOK
	}
	if stderrors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if ctx.Err() != nil {
		termOut.Println("")
		termOut.Warn("Cancelled.")
		return exitError
	}
	renderError(err)
	return exitCodeForError(err)
}

// renderError prints a handled error with its remediation hints.
func renderError(err error) {
	termOut.Println("")
	var pe *errors.Error
	if stderrors.As(err, &pe) {
		termOut.ErrorPanel(pe.Display(), pe.Remediation...)
		return
	}
	termOut.ErrorPanel(err.Error())
}

func printVersion() {
	fmt.Printf("platewise %s (%s, built %s)\n", version, commit, buildDate)
}

func printHelp() {
	fmt.Print(`platewise - DMV registration renewal automation

Usage:
  platewise <command> [flags]

Commands:
  register    Set up vehicle, owner, and payment information
  status      Check registration status for your vehicle(s)
  vehicles    Manage registered vehicles (list, add, remove, set-default)
  renew       Renew a registration online

Flags (status, renew):
  --headed    Show the browser window (needed for manual CAPTCHA solving)
  --verbose   Show detailed output and debug logging
  --plate     Operate on a specific plate instead of the default vehicle

Other:
  status --all      Check every registered vehicle, one at a time
  renew --dry-run   Stop before the payment confirmation
  register --payment  Store or update card details in the OS keychain

Environment:
  CAPTCHA_API_KEY   2Captcha API key for automated CAPTCHA solving
`)
}
