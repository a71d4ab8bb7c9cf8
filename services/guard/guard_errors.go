package guard

import "fmt"

var (
	// ErrDuplicateAction marks a benign double trigger. Callers absorb it
	// silently rather than surfacing an error to the user.
	ErrDuplicateAction = fmt.Errorf("action already in progress")
)
