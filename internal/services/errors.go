package services

// Error is a failure detected before or instead of a backend call. Its
// text is meant for the user as is.
type Error string

func (e Error) Error() string {
	return string(e)
}

func (e Error) UserMessage() string {
	return string(e)
}

const (
	ErrNotSignedIn     Error = "Please log in to continue."
	ErrEmptyCart       Error = "Your cart is empty. Please add items before placing an order."
	ErrInvalidTotal    Error = "Invalid cart total. Please refresh and try again."
	ErrInvalidQuantity Error = "Quantity must be at least 1."
	ErrInvalidStatus   Error = "Unknown order status."
	ErrInvalidAmount   Error = "Amount must be greater than zero."
)
