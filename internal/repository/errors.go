// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation coordinator and handlers to distinguish between different
// failure scenarios with errors.Is. For example, ErrSeatConflict
// indicates that a seat was already claimed by another booking, while
// ErrBookingFinalized signals that a booking has reached a terminal
// state and can no longer change.
package repository

import "errors"

// ErrSeatNotFound is returned when a seat lookup yields no rows, or
// when the seat exists but belongs to a different theater than the one
// named in the request. Handlers should translate this into 404.
var ErrSeatNotFound = errors.New("seat not found")

// ErrSeatConflict is returned by TryReserveTx when the seat was already
// booked at the moment of the conditional update. It is the structured
// outcome of losing the reservation race and is never an internal
// failure. Handlers surface it as HTTP 409.
var ErrSeatConflict = errors.New("seat already booked")

// ErrTheaterNotFound is returned when a theater (showing) lookup yields
// no rows. Handlers should translate this into 404.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrMovieNotFound is returned when a movie lookup yields no rows.
var ErrMovieNotFound = errors.New("movie not found")

// ErrBookingNotFound is returned when a booking lookup yields no rows.
var ErrBookingNotFound = errors.New("booking not found")

// ErrBookingFinalized is returned when a state transition is requested
// on a booking that is already CONFIRMED or RELEASED. Terminal states
// never change, so repeated payment callbacks or releases are rejected
// rather than silently absorbed. Handlers translate this into 409.
var ErrBookingFinalized = errors.New("booking already finalized")
