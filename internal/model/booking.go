package model

import "time"

// Booking status values.  A booking starts PROVISIONAL when a seat is
// claimed, then moves to exactly one terminal state: CONFIRMED after a
// verified payment, or RELEASED when payment fails, the hold expires or
// an administrator voids it.  There is no transition out of a terminal
// state.
const (
    BookingProvisional = "PROVISIONAL"
    BookingConfirmed   = "CONFIRMED"
    BookingReleased    = "RELEASED"
)

// Booking links one user, one seat, one movie and one theater.  The
// price is a snapshot copied from the seat at creation time and is
// never recomputed.  RazorpayOrderID holds the external payment order
// reference once payment has been initiated; PaymentRef records the
// gateway payment id after successful verification.  The referenced
// user/movie/theater rows are owned by external services and are only
// resolved by id.  This struct corresponds to a row in the `bookings`
// table.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the booking.
//  SeatID          – seat claimed by the booking.
//  MovieID         – movie being watched.
//  TheaterID       – showing the seat belongs to.
//  Status          – PROVISIONAL, CONFIRMED or RELEASED.
//  PriceCents      – price snapshot in minor units.
//  RazorpayOrderID – external payment order reference (nullable).
//  PaymentRef      – gateway payment id after confirmation (nullable).
//  BookedAt        – creation timestamp; holds expire relative to this.
//  UpdatedAt       – last modification timestamp.
type Booking struct {
    ID              uint64     // bookings.id
    UserID          uint64     // bookings.user_id
    SeatID          uint64     // bookings.seat_id
    MovieID         uint64     // bookings.movie_id
    TheaterID       uint64     // bookings.theater_id
    Status          string     // bookings.status
    PriceCents      uint32     // bookings.price_cents
    RazorpayOrderID *string    // bookings.razorpay_order_id (nullable)
    PaymentRef      *string    // bookings.payment_ref (nullable)
    BookedAt        time.Time  // bookings.booked_at
    UpdatedAt       time.Time  // bookings.updated_at
}

// Terminal reports whether the booking has reached a final state.
// Confirmed and released bookings can no longer change.
func (b *Booking) Terminal() bool {
    return b.Status == BookingConfirmed || b.Status == BookingReleased
}

// BookingDetail joins a booking with the human readable context needed
// for listings and confirmation notices: user contact, movie title,
// venue name, show time and seat label.  It is produced by the booking
// repository's join queries and never written back.
type BookingDetail struct {
    Booking
    Username    string    `json:"username"`
    UserEmail   string    `json:"user_email"`
    MovieName   string    `json:"movie_name"`
    TheaterName string    `json:"theater_name"`
    ShowTime    time.Time `json:"show_time"`
    SeatNumber  string    `json:"seat_number"`
}
