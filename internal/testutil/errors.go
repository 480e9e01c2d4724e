// Package testutil provides testing utilities for conform.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
var (
	// ErrMockScenarioBug simulates an unexpected failure in scenario-author code.
	ErrMockScenarioBug = errors.New("scenario implementation bug")

	// ErrMockCleanupFailed simulates a failure while cleaning up test resources.
	ErrMockCleanupFailed = errors.New("cleanup failed")

	// ErrMockNetwork simulates a transport failure reported by the query layer.
	ErrMockNetwork = errors.New("network error")
)
