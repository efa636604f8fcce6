package domain

import "fmt"

// ParseError means the agent's raw output contained no parseable JSON object,
// even after substring extraction. Recoverable by retrying the reasoning call.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// ValidationError means the output parsed as JSON but violated the report
// schema. Recoverable by retrying the reasoning call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// IsRetryable reports whether err is a parse or validation failure that the
// orchestration loop may retry.
func IsRetryable(err error) bool {
	switch err.(type) {
	case *ParseError, *ValidationError:
		return true
	}
	return false
}

// BackendError wraps a reasoning-backend failure. Non-recoverable: it ends the
// research call immediately, regardless of remaining retry budget.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("llm backend error: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// RetriesExceededError is the terminal failure after the retry budget is spent
// on parse/validation errors.
type RetriesExceededError struct {
	Attempts int
	Last     error
}

func (e *RetriesExceededError) Error() string {
	return fmt.Sprintf("failed to generate valid output after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetriesExceededError) Unwrap() error { return e.Last }

// StorageError wraps a relational-store write failure. The audit row is the
// evidence the assessment happened, so this propagates to the caller as its
// own class.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
