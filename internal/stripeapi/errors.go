package stripeapi

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
)

// Error is a decoded remote API error. The migration engine never matches on
// message text; callers classify through the predicates below, which key on
// the closed set of error codes the engine reacts to.
type Error struct {
	Status    int
	Type      string
	Code      string
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("stripe: %s (status %d)", e.Message, e.Status)
}

func apiError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err says the referenced entity does not exist
// in the queried account.
func IsNotFound(err error) bool {
	e, ok := apiError(err)
	return ok && e.Code == string(stripe.ErrorCodeResourceMissing)
}

// IsAlreadyExists reports whether err is the duplicate-id rejection returned
// by idempotent-by-id creates.
func IsAlreadyExists(err error) bool {
	e, ok := apiError(err)
	return ok && e.Code == string(stripe.ErrorCodeResourceAlreadyExists)
}

// IsTaxLocationInvalid reports whether err says the destination account
// cannot compute tax for the customer's location.
func IsTaxLocationInvalid(err error) bool {
	e, ok := apiError(err)
	return ok && e.Code == string(stripe.ErrorCodeCustomerTaxLocationInvalid)
}

// IsRateLimited reports whether err is a rate-limit rejection. The transport
// retries these itself; migrators only ever see one if retries are exhausted.
func IsRateLimited(err error) bool {
	if e, ok := apiError(err); ok {
		return e.Status == 429 || e.Code == string(stripe.ErrorCodeRateLimit)
	}
	return false
}

// IsValidation reports whether err is a user-input-class rejection: an
// invalid_request_error that is not one of the specifically classified codes.
func IsValidation(err error) bool {
	e, ok := apiError(err)
	if !ok {
		return false
	}
	if IsNotFound(err) || IsAlreadyExists(err) || IsTaxLocationInvalid(err) || IsRateLimited(err) {
		return false
	}
	return e.Type == string(stripe.ErrorTypeInvalidRequest)
}
