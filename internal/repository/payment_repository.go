package repository

import (
    "context"
    "database/sql"

    "github.com/bookmyseat/booking/internal/model"
)

// PaymentRepo records payment attempts.  Rows are append-mostly and
// keyed by their own id, so there is no cross-request contention here;
// the seat ledger remains the only contended resource.
type PaymentRepo struct {
    db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment attempt within the provided transaction
// and populates the generated ID and timestamp on the record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx Tx, p *model.Payment) error {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return err
    }
    const q = `INSERT INTO payments (booking_id, amount_cents, payment_id, status) VALUES (?, ?, ?, ?)`
    result, err := stx.ExecContext(ctx, q, p.BookingID, p.AmountCents, p.PaymentID, p.Status)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return stx.QueryRowContext(ctx, `SELECT created_at FROM payments WHERE id = ?`, p.ID).Scan(&p.CreatedAt)
}

// ResolvePendingTx settles the most recent pending attempt of a booking
// with the gateway payment id and a terminal status.  When no pending
// attempt exists (for example a callback arriving without a prior
// initiate step) a settled attempt row is inserted instead, so every
// verification outcome leaves a trace.
func (r *PaymentRepo) ResolvePendingTx(ctx context.Context, tx Tx, bookingID uint64, amountCents uint32, paymentID, status string) error {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return err
    }
    const upd = `UPDATE payments SET payment_id = ?, status = ?
                 WHERE booking_id = ? AND status = ?
                 ORDER BY id DESC LIMIT 1`
    res, err := stx.ExecContext(ctx, upd, paymentID, status, bookingID, model.PaymentPending)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    const ins = `INSERT INTO payments (booking_id, amount_cents, payment_id, status) VALUES (?, ?, ?, ?)`
    _, err = stx.ExecContext(ctx, ins, bookingID, amountCents, paymentID, status)
    return err
}

// ByBooking lists all payment attempts of a booking, oldest first.
func (r *PaymentRepo) ByBooking(ctx context.Context, bookingID uint64) ([]model.Payment, error) {
    const q = `SELECT id, booking_id, amount_cents, payment_id, status, created_at
               FROM payments WHERE booking_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Payment
    for rows.Next() {
        var p model.Payment
        if err := rows.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.PaymentID, &p.Status, &p.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
