package handler

import (
    "context"

    "github.com/bookmyseat/booking/internal/booking"
    "github.com/bookmyseat/booking/internal/model"
    "github.com/bookmyseat/booking/internal/repository"
)

// Handlers depend on these interfaces rather than concrete types so
// each handler can be exercised with in-memory fakes.  The production
// wiring satisfies them with the reservation coordinator and the MySQL
// repositories.

// ReservationCoordinator is the booking core as seen from HTTP.
type ReservationCoordinator interface {
    RequestBooking(ctx context.Context, userID, theaterID uint64, seatIDs []uint64) ([]*model.Booking, error)
    InitiatePayment(ctx context.Context, bookingID uint64) (*booking.PaymentIntent, error)
    FinalizePayment(ctx context.Context, bookingID uint64, orderRef, paymentRef, signature string) error
    ReleaseBooking(ctx context.Context, bookingID uint64) error
}

// BookingReader serves booking listings and admin aggregates.
type BookingReader interface {
    ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
    DetailByID(ctx context.Context, id uint64) (*model.BookingDetail, error)
    Dashboard(ctx context.Context) (*repository.DashboardStats, error)
}

// PaymentReader lists the payment attempts of a booking.
type PaymentReader interface {
    ByBooking(ctx context.Context, bookingID uint64) ([]model.Payment, error)
}

// MovieCatalog resolves catalog metadata for browsing.
type MovieCatalog interface {
    List(ctx context.Context, search string) ([]model.Movie, error)
    GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}

// TheaterCatalog resolves showings and their availability counts.
type TheaterCatalog interface {
    GetByID(ctx context.Context, id uint64) (*model.Theater, error)
    ListByMovie(ctx context.Context, movieID uint64) ([]model.TheaterAvailability, error)
}

// SeatMap reads seat rows for the public seat map.
type SeatMap interface {
    ByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error)
    AvailableByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error)
}
