package chain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is the neutral "does not exist yet" signal. Callers
// render it as an empty or zero state, never as a failure.
var ErrUnavailable = errors.New("unavailable")

// ErrPhaseMismatch means a query valid only in one phase was issued
// against a contract that has since transitioned. Callers should correct
// their phase belief instead of reporting a fault.
var ErrPhaseMismatch = errors.New("phase mismatch")

// ErrBusy is returned by reconcilers that refuse overlapping runs.
var ErrBusy = errors.New("reconcile in progress")

type QueryError struct {
	Contract string
	Status   int
	Message  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("contract query failed (%d): %s", e.Status, e.Message)
}

// classify maps a contract-side error message onto the taxonomy. The
// authoritative phase comes from game_data; string matching here is only
// the fallback for contracts queried outside their supported family.
func classify(contract string, status int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "unknown variant"),
		strings.Contains(lower, "unrecognized"),
		strings.Contains(lower, "unauthorized"):
		return fmt.Errorf("%w: %s", ErrPhaseMismatch, message)
	case strings.Contains(lower, "not found"),
		strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "no stake"),
		strings.Contains(lower, "no claims"):
		return fmt.Errorf("%w: %s", ErrUnavailable, message)
	}
	return &QueryError{Contract: contract, Status: status, Message: message}
}

// IsAbsence reports whether err is an expected-absence result.
func IsAbsence(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsPhaseMismatch reports whether err indicates a migrated contract.
func IsPhaseMismatch(err error) bool {
	return errors.Is(err, ErrPhaseMismatch)
}
