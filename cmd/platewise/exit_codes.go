package main

import "errors"

// Exit code policy: 0 success or user-declined, 1 handled error, 2 usage.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type exitCoder interface {
	ExitCode() int
}

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

func (e exitCodeError) ExitCode() int {
	if e.code == 0 {
		return exitError
	}
	return e.code
}

func withExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return exitCodeError{code: code, err: err}
}

func usageError(err error) error {
	return withExitCode(err, exitUsage)
}

func exitCodeForError(err error) int {
	if err == nil {
		return exitOK
	}
	var coded exitCoder
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return exitError
}
