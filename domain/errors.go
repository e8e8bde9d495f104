package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an unknown candidate id, or a review view of a
// candidate that is no longer pending.
var ErrNotFound = errors.New("candidate not found")

// ValidationError reports input the caller can correct and resubmit.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// InvalidStateError reports a finalize attempt on a candidate that is not
// pending. The stored record is left untouched.
type InvalidStateError struct {
	ID     uint
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("candidate %d is already %s", e.ID, e.Status)
}

// ExtractionError reports that no text could be recovered from an uploaded
// resume. The submission stops before evaluation and nothing is persisted.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("resume text extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EvaluationError reports an unreachable evaluator or a malformed
// evaluator response. Nothing is persisted; the caller may resubmit.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
