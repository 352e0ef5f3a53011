package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Document errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrNothingToUndo = fmt.Errorf("nothing to undo")
	ErrNothingToRedo = fmt.Errorf("nothing to redo")
	ErrEmptySet      = fmt.Errorf("tune set must not be empty")

	// Clipboard errors
	ErrEmptySelection = fmt.Errorf("nothing selected")
	ErrEmptyClipboard = fmt.Errorf("clipboard is empty")

	// Ordering errors (data integrity; repaired only via rebalance)
	ErrDuplicateToken = fmt.Errorf("duplicate order token")
	ErrTokenOrder     = fmt.Errorf("order tokens out of order")
	ErrNoRoom         = fmt.Errorf("no room between order tokens")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoMatch            = fmt.Errorf("no matching tune")
	ErrSessionNotFound    = fmt.Errorf("session not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
