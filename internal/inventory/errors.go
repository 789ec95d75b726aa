package inventory

import "errors"

// Error taxonomy for the inventory core. Handlers map these onto HTTP
// statuses with errors.Is; everything else is a 500.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrComponentInUse    = errors.New("component has outstanding borrows")
)
