package repository // repository defines data access for seats

import (
    "context"      // context allows query cancellation and timeouts
    "database/sql" // sql provides DB primitives

    "github.com/bookmyseat/booking/internal/model"
)

// SeatRepo is the seat ledger: the single writer of the `is_booked`
// occupancy bit.  All occupancy changes go through TryReserveTx and
// ReleaseTx so that exclusivity is enforced by the storage engine with
// a conditional single-statement update, never by an in-process lock.
// That keeps the guarantee intact when several server processes share
// the same database.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
    return &SeatRepo{db: db}
}

// AvailableByTheater returns all seats of a showing with is_booked =
// false, ordered by seat number.  It has no side effects and reads the
// committed state, so a seat listed here may still be lost to a
// concurrent purchaser; TryReserveTx is the only authority.
func (r *SeatRepo) AvailableByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error) {
    const q = `SELECT id, theater_id, seat_number, price_cents, is_booked
               FROM seats
               WHERE theater_id = ? AND is_booked = 0
               ORDER BY seat_number`
    return r.querySeats(ctx, q, theaterID)
}

// ByTheater returns every seat of a showing regardless of occupancy,
// ordered by seat number.  Used by the public seat-map endpoint.
func (r *SeatRepo) ByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error) {
    const q = `SELECT id, theater_id, seat_number, price_cents, is_booked
               FROM seats
               WHERE theater_id = ?
               ORDER BY seat_number`
    return r.querySeats(ctx, q, theaterID)
}

func (r *SeatRepo) querySeats(ctx context.Context, q string, args ...interface{}) ([]model.Seat, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.TheaterID, &s.SeatNumber, &s.PriceCents, &s.IsBooked); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}

// GetTx fetches a seat by id scoped to a theater within the provided
// transaction.  The row is returned regardless of occupancy so callers
// can report the seat number of a conflicted seat.  Returns
// ErrSeatNotFound when the seat does not exist in that theater.
func (r *SeatRepo) GetTx(ctx context.Context, tx Tx, seatID, theaterID uint64) (*model.Seat, error) {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return nil, err
    }
    const q = `SELECT id, theater_id, seat_number, price_cents, is_booked
               FROM seats
               WHERE id = ? AND theater_id = ?`
    var s model.Seat
    err = stx.QueryRowContext(ctx, q, seatID, theaterID).Scan(
        &s.ID, &s.TheaterID, &s.SeatNumber, &s.PriceCents, &s.IsBooked,
    )
    if err == sql.ErrNoRows {
        return nil, ErrSeatNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// TryReserveTx atomically claims a seat.  The check and the set happen
// in one conditional UPDATE: the statement only matches a row that is
// currently free, so under arbitrary concurrent callers at most one
// transaction observes RowsAffected == 1.  A losing caller gets
// ErrSeatConflict; an unknown seat gets ErrSeatNotFound.  On success
// the seat row is returned with IsBooked already true, carrying the
// price used for the booking snapshot.
func (r *SeatRepo) TryReserveTx(ctx context.Context, tx Tx, seatID, theaterID uint64) (*model.Seat, error) {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return nil, err
    }
    const upd = `UPDATE seats SET is_booked = 1
                 WHERE id = ? AND theater_id = ? AND is_booked = 0`
    res, err := stx.ExecContext(ctx, upd, seatID, theaterID)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    // Zero rows means either the seat is taken or it does not exist;
    // a follow-up read inside the same transaction disambiguates.
    seat, gerr := r.GetTx(ctx, tx, seatID, theaterID)
    if gerr != nil {
        return nil, gerr
    }
    if n == 0 {
        return seat, ErrSeatConflict
    }
    return seat, nil
}

// ReleaseTx frees a seat so it becomes bookable again.  Used when a
// booking is voided by payment failure, hold expiry or an admin
// release.  Returns ErrSeatNotFound when the seat row is absent.
func (r *SeatRepo) ReleaseTx(ctx context.Context, tx Tx, seatID uint64) error {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return err
    }
    res, err := stx.ExecContext(ctx, `UPDATE seats SET is_booked = 0 WHERE id = ?`, seatID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish a missing row from an already-free seat.
        var one int
        err = stx.QueryRowContext(ctx, `SELECT 1 FROM seats WHERE id = ?`, seatID).Scan(&one)
        if err == sql.ErrNoRows {
            return ErrSeatNotFound
        }
        return err
    }
    return nil
}
