// Package payment defines the interface the reservation coordinator
// uses to talk to the external payment gateway, together with the
// Razorpay-backed production implementation.  The gateway never touches
// booking or seat state; it only creates orders and verifies callback
// signatures.
package payment

import (
    "context"
    "errors"
)

// ErrSignatureInvalid is returned by VerifySignature when the callback
// signature does not match the order/payment pair.  The coordinator
// treats it, like any other verification error, as a failed payment:
// the seat is released rather than held indefinitely.
var ErrSignatureInvalid = errors.New("payment signature invalid")

// Gateway is the payment collaborator.  CreateOrder registers an order
// for the given amount in minor currency units (paise for INR) and
// returns the gateway's opaque order reference.  VerifySignature checks
// a payment callback against that reference; it is pure and has no side
// effects on the core's data.  Both may block on network I/O, so
// CreateOrder honors the caller's context deadline.
type Gateway interface {
    CreateOrder(ctx context.Context, amountMinor uint32, currency, receipt string) (string, error)
    VerifySignature(orderRef, paymentRef, signature string) error
}
