// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking survives payment
// verification.  It carries everything the confirmation mailer needs so
// the consumer never queries the primary database.
type BookingConfirmedEvent struct {
    BookingID   uint64 `json:"booking_id"`
    UserID      uint64 `json:"user_id"`
    Username    string `json:"username"`
    UserEmail   string `json:"user_email"`
    MovieName   string `json:"movie_name"`
    TheaterName string `json:"theater_name"`
    ShowTime    string `json:"show_time"`
    SeatNumber  string `json:"seat_number"`
    AmountCents uint32 `json:"amount_cents"`
    PaymentRef  string `json:"payment_ref"`
    ConfirmedAt string `json:"confirmed_at"`
}
