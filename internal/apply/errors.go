package apply

import "fmt"

// RollbackError reports a rejected change that could not be reverted on the
// final document.
type RollbackError struct {
	ChangeID string
	Path     string
	Message  string
	Cause    error
}

func (e *RollbackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rollback of %s at %q failed: %s: %v", e.ChangeID, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("rollback of %s at %q failed: %s", e.ChangeID, e.Path, e.Message)
}

func (e *RollbackError) Unwrap() error {
	return e.Cause
}
