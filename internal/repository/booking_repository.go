package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/bookmyseat/booking/internal/model"
)

// BookingRepo provides CRUD operations and state transitions for
// bookings.  Status changes are guarded in SQL: the UPDATE statements
// only match rows still in PROVISIONAL state, so a booking can never
// leave a terminal state even under concurrent callbacks.  All
// timestamp fields are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a provisional booking within the scope of an
// existing transaction.  It populates the generated ID and timestamps
// on the provided record.  The caller must commit or roll back the
// transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx Tx, b *model.Booking) error {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return err
    }
    const q = `INSERT INTO bookings (user_id, seat_id, movie_id, theater_id, status, price_cents)
               VALUES (?, ?, ?, ?, ?, ?)`
    result, err := stx.ExecContext(ctx, q, b.UserID, b.SeatID, b.MovieID, b.TheaterID, b.Status, b.PriceCents)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults.
    const sel = `SELECT booked_at, updated_at FROM bookings WHERE id = ?`
    return stx.QueryRowContext(ctx, sel, b.ID).Scan(&b.BookedAt, &b.UpdatedAt)
}

// GetByID fetches a booking by primary key.  Returns
// ErrBookingNotFound when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT id, user_id, seat_id, movie_id, theater_id, status, price_cents,
                      razorpay_order_id, payment_ref, booked_at, updated_at
               FROM bookings WHERE id = ?`
    return r.scanBooking(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is GetByID inside an existing transaction, used when the
// booking row must be read consistently with a pending state change.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx Tx, id uint64) (*model.Booking, error) {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return nil, err
    }
    const q = `SELECT id, user_id, seat_id, movie_id, theater_id, status, price_cents,
                      razorpay_order_id, payment_ref, booked_at, updated_at
               FROM bookings WHERE id = ? FOR UPDATE`
    return r.scanBooking(stx.QueryRowContext(ctx, q, id))
}

func (r *BookingRepo) scanBooking(row *sql.Row) (*model.Booking, error) {
    var b model.Booking
    var orderID, paymentRef sql.NullString
    err := row.Scan(&b.ID, &b.UserID, &b.SeatID, &b.MovieID, &b.TheaterID, &b.Status,
        &b.PriceCents, &orderID, &paymentRef, &b.BookedAt, &b.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    if orderID.Valid {
        v := orderID.String
        b.RazorpayOrderID = &v
    }
    if paymentRef.Valid {
        v := paymentRef.String
        b.PaymentRef = &v
    }
    return &b, nil
}

// SetOrderRefTx stores the external payment order reference on a
// provisional booking.  Terminal bookings are rejected with
// ErrBookingFinalized so a released hold cannot acquire a live order.
func (r *BookingRepo) SetOrderRefTx(ctx context.Context, tx Tx, id uint64, orderRef string) error {
    return r.conditionalUpdateTx(ctx, tx, id,
        `UPDATE bookings SET razorpay_order_id = ? WHERE id = ? AND status = ?`,
        orderRef, id, model.BookingProvisional)
}

// ConfirmTx transitions a provisional booking to CONFIRMED and records
// the verified gateway payment reference.  The guard on status makes
// double confirmation impossible: a second call matches zero rows and
// returns ErrBookingFinalized.
func (r *BookingRepo) ConfirmTx(ctx context.Context, tx Tx, id uint64, paymentRef string) error {
    return r.conditionalUpdateTx(ctx, tx, id,
        `UPDATE bookings SET status = ?, payment_ref = ? WHERE id = ? AND status = ?`,
        model.BookingConfirmed, paymentRef, id, model.BookingProvisional)
}

// ReleaseTx transitions a provisional booking to RELEASED.  Callers
// must free the seat in the same transaction to keep the occupancy
// invariant intact.
func (r *BookingRepo) ReleaseTx(ctx context.Context, tx Tx, id uint64) error {
    return r.conditionalUpdateTx(ctx, tx, id,
        `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
        model.BookingReleased, id, model.BookingProvisional)
}

// conditionalUpdateTx executes a status-guarded UPDATE and maps a zero
// row count to either ErrBookingNotFound or ErrBookingFinalized
// depending on whether the row exists at all.
func (r *BookingRepo) conditionalUpdateTx(ctx context.Context, tx Tx, id uint64, q string, args ...interface{}) error {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return err
    }
    res, err := stx.ExecContext(ctx, q, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var one int
        err = stx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one)
        if err == sql.ErrNoRows {
            return ErrBookingNotFound
        }
        if err != nil {
            return err
        }
        return ErrBookingFinalized
    }
    return nil
}

// ExpiredProvisionalTx returns provisional bookings older than the
// cutoff, optionally restricted to one theater (theaterID = 0 scans all
// showings).  Rows are locked FOR UPDATE so the caller can release the
// seats and void the bookings in the same transaction without racing a
// concurrent payment callback.
func (r *BookingRepo) ExpiredProvisionalTx(ctx context.Context, tx Tx, theaterID uint64, cutoff time.Time) ([]model.Booking, error) {
    stx, err := sqlTxFrom(tx)
    if err != nil {
        return nil, err
    }
    q := `SELECT id, user_id, seat_id, movie_id, theater_id, status, price_cents,
                 razorpay_order_id, payment_ref, booked_at, updated_at
          FROM bookings
          WHERE status = ? AND booked_at <= ?`
    args := []interface{}{model.BookingProvisional, cutoff.UTC()}
    if theaterID != 0 {
        q += ` AND theater_id = ?`
        args = append(args, theaterID)
    }
    q += ` FOR UPDATE`
    rows, err := stx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Booking
    for rows.Next() {
        var b model.Booking
        var orderID, paymentRef sql.NullString
        if err := rows.Scan(&b.ID, &b.UserID, &b.SeatID, &b.MovieID, &b.TheaterID, &b.Status,
            &b.PriceCents, &orderID, &paymentRef, &b.BookedAt, &b.UpdatedAt); err != nil {
            return nil, err
        }
        if orderID.Valid {
            v := orderID.String
            b.RazorpayOrderID = &v
        }
        if paymentRef.Valid {
            v := paymentRef.String
            b.PaymentRef = &v
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

const bookingDetailSelect = `
    SELECT b.id, b.user_id, b.seat_id, b.movie_id, b.theater_id, b.status, b.price_cents,
           b.razorpay_order_id, b.payment_ref, b.booked_at, b.updated_at,
           u.username, u.email, m.name, t.name, t.show_time, s.seat_number
    FROM bookings b
    JOIN users u    ON u.id = b.user_id
    JOIN movies m   ON m.id = b.movie_id
    JOIN theaters t ON t.id = b.theater_id
    JOIN seats s    ON s.id = b.seat_id`

// DetailByID fetches a booking joined with user, movie, theater and
// seat context.  Used for confirmation notices and single-booking
// lookups.
func (r *BookingRepo) DetailByID(ctx context.Context, id uint64) (*model.BookingDetail, error) {
    rows, err := r.db.QueryContext(ctx, bookingDetailSelect+` WHERE b.id = ?`, id)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details, err := scanBookingDetails(rows)
    if err != nil {
        return nil, err
    }
    if len(details) == 0 {
        return nil, ErrBookingNotFound
    }
    return &details[0], nil
}

// ListByUser returns all bookings of a user, most recent first, with
// display context attached.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
    rows, err := r.db.QueryContext(ctx, bookingDetailSelect+` WHERE b.user_id = ? ORDER BY b.booked_at DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanBookingDetails(rows)
}

func scanBookingDetails(rows *sql.Rows) ([]model.BookingDetail, error) {
    details := []model.BookingDetail{}
    for rows.Next() {
        var d model.BookingDetail
        var orderID, paymentRef sql.NullString
        if err := rows.Scan(&d.ID, &d.UserID, &d.SeatID, &d.MovieID, &d.TheaterID, &d.Status,
            &d.PriceCents, &orderID, &paymentRef, &d.BookedAt, &d.UpdatedAt,
            &d.Username, &d.UserEmail, &d.MovieName, &d.TheaterName, &d.ShowTime, &d.SeatNumber); err != nil {
            return nil, err
        }
        if orderID.Valid {
            v := orderID.String
            d.RazorpayOrderID = &v
        }
        if paymentRef.Valid {
            v := paymentRef.String
            d.PaymentRef = &v
        }
        details = append(details, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}

// DashboardStats aggregates booking activity for the admin dashboard:
// confirmed revenue, the most booked movies and theaters and the most
// recent bookings.
type DashboardStats struct {
    TotalRevenueCents uint64                `json:"total_revenue_cents"`
    PopularMovies     []NamedCount          `json:"popular_movies"`
    BusyTheaters      []NamedCount          `json:"busy_theaters"`
    RecentBookings    []model.BookingDetail `json:"recent_bookings"`
}

// NamedCount pairs an entity name with its booking count.
type NamedCount struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Count uint64 `json:"total_bookings"`
}

// Dashboard computes the admin dashboard aggregates.  Revenue only
// counts confirmed bookings; released holds never contribute.
func (r *BookingRepo) Dashboard(ctx context.Context) (*DashboardStats, error) {
    stats := &DashboardStats{}
    const revQ = `SELECT COALESCE(SUM(price_cents), 0) FROM bookings WHERE status = ?`
    if err := r.db.QueryRowContext(ctx, revQ, model.BookingConfirmed).Scan(&stats.TotalRevenueCents); err != nil {
        return nil, err
    }
    var err error
    const movieQ = `SELECT m.id, m.name, COUNT(b.id) AS total
                    FROM movies m
                    LEFT JOIN bookings b ON b.movie_id = m.id AND b.status = 'CONFIRMED'
                    GROUP BY m.id, m.name
                    ORDER BY total DESC
                    LIMIT 5`
    if stats.PopularMovies, err = r.namedCounts(ctx, movieQ); err != nil {
        return nil, err
    }
    const theaterQ = `SELECT t.id, t.name, COUNT(b.id) AS total
                      FROM theaters t
                      LEFT JOIN bookings b ON b.theater_id = t.id AND b.status = 'CONFIRMED'
                      GROUP BY t.id, t.name
                      ORDER BY total DESC
                      LIMIT 5`
    if stats.BusyTheaters, err = r.namedCounts(ctx, theaterQ); err != nil {
        return nil, err
    }
    rows, err := r.db.QueryContext(ctx, bookingDetailSelect+` ORDER BY b.booked_at DESC LIMIT 10`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    if stats.RecentBookings, err = scanBookingDetails(rows); err != nil {
        return nil, err
    }
    return stats, nil
}

func (r *BookingRepo) namedCounts(ctx context.Context, q string) ([]NamedCount, error) {
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    counts := []NamedCount{}
    for rows.Next() {
        var nc NamedCount
        if err := rows.Scan(&nc.ID, &nc.Name, &nc.Count); err != nil {
            return nil, err
        }
        counts = append(counts, nc)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return counts, nil
}
