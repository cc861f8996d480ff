package review

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by stores when no snapshot exists for an id.
var ErrSessionNotFound = errors.New("review session not found")

// ErrSessionConflict is returned when a snapshot kept changing under a
// concurrent update and the store stopped retrying.
var ErrSessionConflict = errors.New("review session modified concurrently")

// DecisionError reports a decision request the tracker cannot honor.
type DecisionError struct {
	Message string
	Cause   error
}

func (e *DecisionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decision error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("decision error: %s", e.Message)
}

func (e *DecisionError) Unwrap() error {
	return e.Cause
}

// ApplyError reports that the apply collaborator failed. The session keeps
// its decisions so the caller can retry.
type ApplyError struct {
	Message string
	Cause   error
}

func (e *ApplyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("apply error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("apply error: %s", e.Message)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}
