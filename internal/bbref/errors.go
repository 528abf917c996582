package bbref

import (
	"errors"
	"fmt"
)

var (
	ErrNoTable          = errors.New("no table found")
	ErrUnsupportedShape = errors.New("unsupported header shape")
	ErrMissingColumn    = errors.New("required column missing")
	ErrUnknownCategory  = errors.New("unknown category")
)

// ExtractionError means the page's table could not be found or has a shape
// we do not know how to read.
type ExtractionError struct {
	Detail string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Detail == "" {
		return "extract: " + e.Err.Error()
	}
	return fmt.Sprintf("extract: %v: %s", e.Err, e.Detail)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func extractionErr(err error, format string, args ...any) error {
	return &ExtractionError{Err: err, Detail: fmt.Sprintf(format, args...)}
}

// InvariantViolation means reconciliation could not produce exactly one
// canonical row for some player. The season must not be persisted.
type InvariantViolation struct {
	Player string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation for player %q: %s", e.Player, e.Reason)
}

// TransportError is a failed, timed out or non-200 fetch.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("status %d for %s", e.Status, e.URL)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Stage string

const (
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageReconcile Stage = "reconcile"
)

// StageError tags a parse-chain failure with the stage that raised it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return string(e.Stage) + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }
