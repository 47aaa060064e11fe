package model

// Seat describes a physical seat within one showing.  Seat numbers are
// unique per theater.  IsBooked is the authoritative occupancy bit: it
// is true if and only if a non-released booking references this seat.
// Occupancy is only ever flipped through the seat repository's
// conditional update so that two purchasers can never both win the
// same seat.  This struct corresponds to a row in the `seats` table.
//
// Fields:
//  ID         – primary key identifier.
//  TheaterID  – showing to which this seat belongs.
//  SeatNumber – label of the seat within the theater (e.g. "A4").
//  PriceCents – price in minor currency units (paise).
//  IsBooked   – whether an active booking holds this seat.
type Seat struct {
    ID         uint64 // seats.id
    TheaterID  uint64 // seats.theater_id
    SeatNumber string // seats.seat_number
    PriceCents uint32 // seats.price_cents
    IsBooked   bool   // seats.is_booked
}
