package checkout

import (
	"errors"
	"fmt"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// User-facing messages.
const (
	MsgCartEmpty    = "Your cart is empty!"
	MsgOrderFailed  = "Failed to create order. Please try again."
	msgMissingField = "Please fill in the %s field"
	msgOrderCreated = "Order created successfully! Order ID: %s"
)

// ErrSubmissionInProgress is returned when SubmitOrder is called while another
// submission of the same session is in flight.
var ErrSubmissionInProgress = errors.New("checkout: submission already in progress")

var errMissingOrderID = errors.New("checkout: order service returned no order id")

type ValidationReason int

const (
	ReasonCartEmpty ValidationReason = iota
	ReasonMissingField
)

// ValidationError is a local precondition failure detected before any I/O.
// Its message is meant for the shopper as-is.
type ValidationError struct {
	Reason ValidationReason

	// Field is the first empty address field when Reason is ReasonMissingField.
	Field entity.AddressField
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonCartEmpty {
		return MsgCartEmpty
	}
	return fmt.Sprintf(msgMissingField, e.Field)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// SuccessMessage is the status text shown after an order was created.
func SuccessMessage(orderID string) string {
	return fmt.Sprintf(msgOrderCreated, orderID)
}
