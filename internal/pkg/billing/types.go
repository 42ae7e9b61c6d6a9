package billing

import "errors"

// BillingProviderStripe is the provider tag recorded on webhook events.
const BillingProviderStripe = "stripe"

// Stripe event types handled by the reconciliation engine.
const (
	EventCheckoutCompleted       = "checkout.session.completed"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

var (
	// ErrInvalidPriceID marks a line item whose price id is not in the
	// catalog; the event cannot be applied and must be rejected.
	ErrInvalidPriceID = errors.New("billing: invalid price id")
	// ErrUserNotFound marks a billing event whose customer email does not
	// resolve to a local user.
	ErrUserNotFound = errors.New("billing: user not found")
	// ErrMissingEmail marks a vendor payload without a customer email.
	ErrMissingEmail = errors.New("billing: customer email missing from event")
	// ErrSubscriptionNotFound marks a vendor status sync for a user who has
	// no subscription row yet.
	ErrSubscriptionNotFound = errors.New("billing: subscription not found")
)
