package checkout

import "errors"

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("checkout validation failed")
	// ErrCheckoutInProgress is returned when Submit is called while a payment is pending.
	ErrCheckoutInProgress = errors.New("checkout already in progress")

	// Payment confirmer contract errors.
	ErrPaymentDeclined = errors.New("payment declined")
	ErrPaymentTimeout  = errors.New("payment confirmation timed out")
)

// ValidationError reports a form problem the shopper can fix.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
