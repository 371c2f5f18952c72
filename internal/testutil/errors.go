// Package testutil provides testing utilities for sigil.
//
// This package contains mock errors and certificate factories used across
// test files. It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockKeystore indicates a mock keystore failure (used in tests).
	ErrMockKeystore = errors.New("keystore unavailable")

	// ErrMockSigning indicates a mock signing failure (used in tests).
	ErrMockSigning = errors.New("signing failed")

	// ErrMockStore indicates a mock ledger store failure (used in tests).
	ErrMockStore = errors.New("store unavailable")

	// ErrMockNotFound indicates a mock resource was not found (used in tests).
	ErrMockNotFound = errors.New("not found")

	// ErrMockIO indicates a mock I/O error occurred (used in tests).
	ErrMockIO = errors.New("i/o error")
)
