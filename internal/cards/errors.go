package cards

import "fmt"

// MalformedError indicates the item input could not be read or parsed.
type MalformedError struct {
	Source string
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed card input from %s: %v", e.Source, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }
