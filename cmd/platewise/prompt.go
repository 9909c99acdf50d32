package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/platewise/platewise/pkg/errors"
)

var stdinReader = bufio.NewReader(os.Stdin)

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptLine reads one trimmed line. An empty answer returns def.
func promptLine(label, def string) (string, error) {
	if def != "" {
		termOut.Print("  %s [%s]: ", label, def)
	} else {
		termOut.Print("  %s: ", label)
	}
	line, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read input")
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// promptRequired re-asks until the answer is non-empty.
func promptRequired(label string) (string, error) {
	for {
		v, err := promptLine(label, "")
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		termOut.Dim("  This field is required.")
	}
}

// promptPassphrase reads a passphrase without echo. Falls back to a plain
// line read when stdin is not a terminal (tests, pipes).
func promptPassphrase(label string) (string, error) {
	if !stdinIsTerminal() {
		return promptLine(label, "")
	}
	termOut.Print("  %s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	termOut.Println("")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read passphrase")
	}
	return strings.TrimSpace(string(raw)), nil
}

// promptNewPassphrase asks for a passphrase twice and requires a match.
func promptNewPassphrase() (string, error) {
	for {
		first, err := promptPassphrase("Choose a passphrase")
		if err != nil {
			return "", err
		}
		if first == "" {
			termOut.Dim("  Passphrase must not be empty.")
			continue
		}
		second, err := promptPassphrase("Confirm passphrase")
		if err != nil {
			return "", err
		}
		if first == second {
			return first, nil
		}
		termOut.Dim("  Passphrases do not match, try again.")
	}
}

// promptConfirm asks a yes/no question.
func promptConfirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := promptLine(fmt.Sprintf("%s (%s)", label, hint), "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
