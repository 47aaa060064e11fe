// Package booking implements the reservation coordinator: it turns a
// seat selection into provisional bookings, drives them through payment
// verification to a terminal state, and releases abandoned holds.  All
// multi-step writes happen inside a single storage transaction so a
// booking can never exist without its seat being marked booked.
package booking

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/bookmyseat/booking/internal/model"
    "github.com/bookmyseat/booking/internal/payment"
    "github.com/bookmyseat/booking/internal/queue"
    "github.com/bookmyseat/booking/internal/repository"
)

// ErrNoSeats is returned when a booking request names no seats.
var ErrNoSeats = errors.New("no seats selected")

// ErrPaymentVerification wraps every payment verification failure:
// invalid signature, order reference mismatch, or a gateway error.  In
// all cases the booking has been released and the seat freed; callers
// retry by creating a new booking, never by reusing the old one.
var ErrPaymentVerification = errors.New("payment verification failed")

// ConflictError reports which seats of a multi-seat request were
// already booked.  The request is all-or-nothing: when any seat
// conflicts, every seat claimed by this call has been rolled back.
type ConflictError struct {
    SeatNumbers []string
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("seats already booked: %s", strings.Join(e.SeatNumbers, ", "))
}

// PaymentIntent is returned by InitiatePayment and carries what a
// client needs to open the gateway checkout.
type PaymentIntent struct {
    BookingID   uint64 `json:"booking_id"`
    OrderRef    string `json:"order_ref"`
    AmountCents uint32 `json:"amount_cents"`
    Currency    string `json:"currency"`
}

// orderCurrency is the gateway settlement currency; amounts are paise.
const orderCurrency = "INR"

// Coordinator owns the booking lifecycle.  It serves arbitrary
// concurrent callers; exclusivity comes entirely from the seat
// ledger's conditional update, not from any lock held here.
type Coordinator struct {
    txm      repository.TxManager
    seats    SeatLedger
    bookings BookingStore
    payments PaymentStore
    theaters TheaterStore
    gateway  payment.Gateway
    notifier Notifier
    holdTTL  time.Duration
}

// NewCoordinator constructs a Coordinator.  holdTTL bounds how long a
// provisional booking may wait for payment before it is released.
func NewCoordinator(txm repository.TxManager, seats SeatLedger, bookings BookingStore, payments PaymentStore, theaters TheaterStore, gw payment.Gateway, notifier Notifier, holdTTL time.Duration) *Coordinator {
    if txm == nil || seats == nil || bookings == nil || payments == nil || theaters == nil || gw == nil {
        panic("nil dependency passed to NewCoordinator")
    }
    if holdTTL <= 0 {
        holdTTL = 10 * time.Minute
    }
    return &Coordinator{
        txm:      txm,
        seats:    seats,
        bookings: bookings,
        payments: payments,
        theaters: theaters,
        gateway:  gw,
        notifier: notifier,
        holdTTL:  holdTTL,
    }
}

// HoldTTL reports the configured hold duration.
func (c *Coordinator) HoldTTL() time.Duration { return c.holdTTL }

// RequestBooking claims the given seats of a showing for a user and
// creates one provisional booking per seat, with the price copied from
// the seat at this moment.  Seats are attempted in caller order.  If
// any seat is already booked the whole transaction rolls back and a
// *ConflictError lists the conflicted seat numbers; the caller is
// never left with a half-completed multi-seat booking.  Expired holds
// on the same showing are released first, inside the same transaction,
// so abandoned seats become winnable immediately.
func (c *Coordinator) RequestBooking(ctx context.Context, userID, theaterID uint64, seatIDs []uint64) ([]*model.Booking, error) {
    if len(seatIDs) == 0 {
        return nil, ErrNoSeats
    }
    theater, err := c.theaters.GetByID(ctx, theaterID)
    if err != nil {
        return nil, err
    }
    // Deduplicate seat IDs preserving the caller's order.
    unique := make([]uint64, 0, len(seatIDs))
    seen := make(map[uint64]struct{}, len(seatIDs))
    for _, id := range seatIDs {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; !ok {
            seen[id] = struct{}{}
            unique = append(unique, id)
        }
    }
    if len(unique) == 0 {
        return nil, ErrNoSeats
    }

    tx, err := c.txm.Begin(ctx)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := c.releaseExpiredTx(ctx, tx, theaterID); err != nil {
        return nil, err
    }

    created := make([]*model.Booking, 0, len(unique))
    var conflicted []string
    for _, seatID := range unique {
        seat, err := c.seats.TryReserveTx(ctx, tx, seatID, theaterID)
        if errors.Is(err, repository.ErrSeatConflict) {
            conflicted = append(conflicted, seat.SeatNumber)
            continue
        }
        if err != nil {
            return nil, err
        }
        b := &model.Booking{
            UserID:     userID,
            SeatID:     seat.ID,
            MovieID:    theater.MovieID,
            TheaterID:  theaterID,
            Status:     model.BookingProvisional,
            PriceCents: seat.PriceCents,
        }
        if err := c.bookings.CreateTx(ctx, tx, b); err != nil {
            return nil, err
        }
        created = append(created, b)
    }
    if len(conflicted) > 0 {
        // Rolling back undoes every reserve and insert of this call.
        return nil, &ConflictError{SeatNumbers: conflicted}
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return created, nil
}

// InitiatePayment creates a gateway order for a provisional booking,
// stores the order reference on the booking and records a pending
// payment attempt.  The amount is the booking's price snapshot in
// minor units; the gateway call is bounded by ctx.
func (c *Coordinator) InitiatePayment(ctx context.Context, bookingID uint64) (*PaymentIntent, error) {
    b, err := c.bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.Terminal() {
        return nil, repository.ErrBookingFinalized
    }
    orderRef, err := c.gateway.CreateOrder(ctx, b.PriceCents, orderCurrency, uuid.NewString())
    if err != nil {
        return nil, err
    }

    tx, err := c.txm.Begin(ctx)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := c.bookings.SetOrderRefTx(ctx, tx, bookingID, orderRef); err != nil {
        return nil, err
    }
    attempt := &model.Payment{
        BookingID:   bookingID,
        AmountCents: b.PriceCents,
        Status:      model.PaymentPending,
    }
    if err := c.payments.CreateTx(ctx, tx, attempt); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &PaymentIntent{
        BookingID:   bookingID,
        OrderRef:    orderRef,
        AmountCents: b.PriceCents,
        Currency:    orderCurrency,
    }, nil
}

// FinalizePayment settles a provisional booking from a gateway
// callback.  A verified signature confirms the booking and records the
// payment reference; any verification failure (signature, order
// mismatch, gateway error) releases the booking and frees the seat in
// the same transaction, then reports ErrPaymentVerification.  Repeat
// calls on a settled booking are rejected with ErrBookingFinalized.
// The confirmation notice is published after commit and is best
// effort: a delivery failure never rolls back the confirmation.
func (c *Coordinator) FinalizePayment(ctx context.Context, bookingID uint64, orderRef, paymentRef, signature string) error {
    tx, err := c.txm.Begin(ctx)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := c.bookings.GetByIDTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if b.Status != model.BookingProvisional {
        return repository.ErrBookingFinalized
    }

    verifyErr := c.verify(b, orderRef, paymentRef, signature)
    if verifyErr != nil {
        // Failed verification voids the hold: seat freed, booking
        // released, attempt recorded as FAILED.
        if err := c.bookings.ReleaseTx(ctx, tx, bookingID); err != nil {
            return err
        }
        if err := c.seats.ReleaseTx(ctx, tx, b.SeatID); err != nil {
            return err
        }
        if err := c.payments.ResolvePendingTx(ctx, tx, bookingID, b.PriceCents, paymentRef, model.PaymentFailed); err != nil {
            return err
        }
        if err := tx.Commit(); err != nil {
            return err
        }
        committed = true
        return fmt.Errorf("%w: %v", ErrPaymentVerification, verifyErr)
    }

    if err := c.bookings.ConfirmTx(ctx, tx, bookingID, paymentRef); err != nil {
        return err
    }
    if err := c.payments.ResolvePendingTx(ctx, tx, bookingID, b.PriceCents, paymentRef, model.PaymentCompleted); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true

    c.notifyConfirmed(ctx, bookingID, paymentRef)
    return nil
}

// verify checks the callback against the stored order reference before
// asking the gateway to validate the signature.
func (c *Coordinator) verify(b *model.Booking, orderRef, paymentRef, signature string) error {
    if b.RazorpayOrderID == nil || *b.RazorpayOrderID != orderRef {
        return errors.New("order reference mismatch")
    }
    return c.gateway.VerifySignature(orderRef, paymentRef, signature)
}

// notifyConfirmed publishes the confirmation event.  Lookup or
// delivery failures are logged and swallowed.
func (c *Coordinator) notifyConfirmed(ctx context.Context, bookingID uint64, paymentRef string) {
    if c.notifier == nil {
        return
    }
    detail, err := c.bookings.DetailByID(ctx, bookingID)
    if err != nil {
        log.Printf("booking: confirmation lookup failed for booking %d: %v", bookingID, err)
        return
    }
    event := queue.BookingConfirmedEvent{
        BookingID:   detail.ID,
        UserID:      detail.UserID,
        Username:    detail.Username,
        UserEmail:   detail.UserEmail,
        MovieName:   detail.MovieName,
        TheaterName: detail.TheaterName,
        ShowTime:    detail.ShowTime.UTC().Format("2006-01-02 15:04"),
        SeatNumber:  detail.SeatNumber,
        AmountCents: detail.PriceCents,
        PaymentRef:  paymentRef,
        ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if err := c.notifier.SendConfirmation(ctx, event); err != nil {
        log.Printf("booking: confirmation publish failed for booking %d: %v", bookingID, err)
    }
}

// ReleaseBooking voids a provisional booking and frees its seat.  Used
// by the admin release endpoint; terminal bookings are rejected.
func (c *Coordinator) ReleaseBooking(ctx context.Context, bookingID uint64) error {
    tx, err := c.txm.Begin(ctx)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    b, err := c.bookings.GetByIDTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if b.Status != model.BookingProvisional {
        return repository.ErrBookingFinalized
    }
    if err := c.bookings.ReleaseTx(ctx, tx, bookingID); err != nil {
        return err
    }
    if err := c.seats.ReleaseTx(ctx, tx, b.SeatID); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ReleaseExpired voids every provisional booking older than the hold
// TTL across all showings and frees the seats.  It returns the number
// of bookings released and is called periodically by the expiry
// worker.
func (c *Coordinator) ReleaseExpired(ctx context.Context) (int, error) {
    tx, err := c.txm.Begin(ctx)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    released, err := c.releaseExpiredCountTx(ctx, tx, 0)
    if err != nil {
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return released, nil
}

// releaseExpiredTx is the lazy variant used inside RequestBooking's
// transaction, scoped to one showing.
func (c *Coordinator) releaseExpiredTx(ctx context.Context, tx repository.Tx, theaterID uint64) error {
    _, err := c.releaseExpiredCountTx(ctx, tx, theaterID)
    return err
}

func (c *Coordinator) releaseExpiredCountTx(ctx context.Context, tx repository.Tx, theaterID uint64) (int, error) {
    cutoff := time.Now().UTC().Add(-c.holdTTL)
    expired, err := c.bookings.ExpiredProvisionalTx(ctx, tx, theaterID, cutoff)
    if err != nil {
        return 0, err
    }
    for i := range expired {
        if err := c.bookings.ReleaseTx(ctx, tx, expired[i].ID); err != nil {
            return 0, err
        }
        if err := c.seats.ReleaseTx(ctx, tx, expired[i].SeatID); err != nil {
            return 0, err
        }
    }
    return len(expired), nil
}
