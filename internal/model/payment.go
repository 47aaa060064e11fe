package model

import "time"

// Payment status values.  Each attempt starts PENDING when an order is
// created with the gateway and ends COMPLETED or FAILED after the
// verification callback.  A booking may accumulate several attempts
// across retries; at most one should end COMPLETED.
const (
    PaymentPending   = "PENDING"
    PaymentCompleted = "COMPLETED"
    PaymentFailed    = "FAILED"
)

// Payment records a single payment attempt for a booking.  This struct
// corresponds to a row in the `payments` table.
//
// Fields:
//  ID          – primary key identifier.
//  BookingID   – booking being paid for.
//  AmountCents – amount of the attempt in minor units.
//  PaymentID   – gateway payment identifier (empty while pending).
//  Status      – PENDING, COMPLETED or FAILED.
//  CreatedAt   – when the attempt was recorded.
type Payment struct {
    ID          uint64    // payments.id
    BookingID   uint64    // payments.booking_id
    AmountCents uint32    // payments.amount_cents
    PaymentID   string    // payments.payment_id
    Status      string    // payments.status
    CreatedAt   time.Time // payments.created_at
}
