package docpath

import "fmt"

// PathError reports a contract violation while writing into a document.
type PathError struct {
	Path    string
	Message string
	Cause   error
}

func (e *PathError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("path error at %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("path error at %q: %s", e.Path, e.Message)
}

func (e *PathError) Unwrap() error {
	return e.Cause
}
