package booking

import (
    "context"
    "time"

    "github.com/bookmyseat/booking/internal/model"
    "github.com/bookmyseat/booking/internal/queue"
    "github.com/bookmyseat/booking/internal/repository"
)

// The coordinator talks to its collaborators through narrow interfaces
// so the reservation logic can be exercised against in-memory fakes.
// The MySQL repositories satisfy them in production.

// SeatLedger is the authoritative occupancy record.  TryReserveTx must
// be a single atomic check-and-set against shared storage; the
// coordinator relies on it to guarantee that concurrent requests for
// the same seat produce exactly one winner.
type SeatLedger interface {
    GetTx(ctx context.Context, tx repository.Tx, seatID, theaterID uint64) (*model.Seat, error)
    TryReserveTx(ctx context.Context, tx repository.Tx, seatID, theaterID uint64) (*model.Seat, error)
    ReleaseTx(ctx context.Context, tx repository.Tx, seatID uint64) error
}

// BookingStore persists bookings and their guarded state transitions.
type BookingStore interface {
    CreateTx(ctx context.Context, tx repository.Tx, b *model.Booking) error
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    GetByIDTx(ctx context.Context, tx repository.Tx, id uint64) (*model.Booking, error)
    SetOrderRefTx(ctx context.Context, tx repository.Tx, id uint64, orderRef string) error
    ConfirmTx(ctx context.Context, tx repository.Tx, id uint64, paymentRef string) error
    ReleaseTx(ctx context.Context, tx repository.Tx, id uint64) error
    ExpiredProvisionalTx(ctx context.Context, tx repository.Tx, theaterID uint64, cutoff time.Time) ([]model.Booking, error)
    DetailByID(ctx context.Context, id uint64) (*model.BookingDetail, error)
}

// PaymentStore records payment attempts alongside booking transitions.
type PaymentStore interface {
    CreateTx(ctx context.Context, tx repository.Tx, p *model.Payment) error
    ResolvePendingTx(ctx context.Context, tx repository.Tx, bookingID uint64, amountCents uint32, paymentID, status string) error
}

// TheaterStore resolves showings.  The catalog service owns the rows;
// the coordinator only needs the movie reference and existence check.
type TheaterStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Theater, error)
}

// Notifier delivers booking confirmations.  Implementations must be
// safe to fail: the coordinator logs and ignores delivery errors.
type Notifier interface {
    SendConfirmation(ctx context.Context, event queue.BookingConfirmedEvent) error
}
