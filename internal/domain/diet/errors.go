package diet

import "errors"

// Domain errors for plan generation

var (
	// Construction errors
	ErrInvalidProfile     = errors.New("invalid user profile")
	ErrCatalogUnavailable = errors.New("food catalog unavailable")

	// Lookup errors
	ErrUnknownSlot = errors.New("unknown meal slot")
	ErrUnknownDay  = errors.New("day must be between 1 and 7")
)
