package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/bookmyseat/booking/internal/booking"
    "github.com/bookmyseat/booking/internal/model"
    "github.com/bookmyseat/booking/internal/repository"
)

// BookingHandler exposes seat booking and booking listings.  All
// methods assume that JWT authentication has already been performed by
// middleware and may return 401 when the user id cannot be extracted
// from the context.  Exclusivity and rollback live in the coordinator;
// this layer only maps structured results onto HTTP statuses.
type BookingHandler struct {
    Coordinator ReservationCoordinator
    Bookings    BookingReader
    Payments    PaymentReader
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(coord ReservationCoordinator, bookings BookingReader, payments PaymentReader) *BookingHandler {
    if coord == nil || bookings == nil || payments == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Coordinator: coord, Bookings: bookings, Payments: payments}
}

// getUserID extracts the authenticated user's id stored by the JWT
// middleware.  A missing or zero id means the middleware chain is
// broken or the route was mounted without auth.
func getUserID(c echo.Context) (uint64, error) {
    if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
        return v, nil
    }
    return 0, errors.New("no authenticated user in context")
}

// CreateBookings handles POST /v1/theaters/:id/bookings.  The request
// body carries a JSON object with a "seat_ids" array.  On full success
// it returns 201 with the created provisional bookings in request
// order.  When any requested seat is already booked it returns 409
// with the conflicted seat numbers; no seats from the request remain
// claimed in that case.
func (h *BookingHandler) CreateBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    theaterID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || theaterID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
    }
    var body struct {
        SeatIDs []uint64 `json:"seat_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    created, err := h.Coordinator.RequestBooking(c.Request().Context(), userID, theaterID, body.SeatIDs)
    if err != nil {
        var conflict *booking.ConflictError
        switch {
        case errors.As(err, &conflict):
            return c.JSON(http.StatusConflict, echo.Map{
                "error":            "some seats are already booked",
                "conflicted_seats": conflict.SeatNumbers,
            })
        case errors.Is(err, booking.ErrNoSeats):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
        case errors.Is(err, repository.ErrTheaterNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
        case errors.Is(err, repository.ErrSeatNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
    }
    items := make([]echo.Map, 0, len(created))
    for _, b := range created {
        items = append(items, bookingJSON(b))
    }
    return c.JSON(http.StatusCreated, echo.Map{"items": items})
}

// ListMyBookings handles GET /v1/my-bookings.  It returns all bookings
// of the current user, most recent first, with display context.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
    }
    items := make([]echo.Map, 0, len(details))
    for i := range details {
        items = append(items, bookingDetailJSON(&details[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.  The response includes the
// payment attempt history of the booking.  Users may only read their
// own bookings; other ids answer 404 so booking ids are not probeable.
func (h *BookingHandler) GetBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    detail, err := h.Bookings.DetailByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
    }
    if detail.UserID != userID {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    }
    attempts, err := h.Payments.ByBooking(c.Request().Context(), id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
    }
    payments := make([]echo.Map, 0, len(attempts))
    for _, p := range attempts {
        payments = append(payments, echo.Map{
            "id":           p.ID,
            "amount_cents": p.AmountCents,
            "payment_id":   p.PaymentID,
            "status":       p.Status,
            "created_at":   p.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"item": bookingDetailJSON(detail), "payments": payments})
}

// ReleaseBooking handles POST /v1/bookings/:id/release.  It voids a
// provisional booking and frees its seat.  The route is restricted to
// admins; the expiry worker handles abandoned holds automatically.
func (h *BookingHandler) ReleaseBooking(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Coordinator.ReleaseBooking(c.Request().Context(), id); err != nil {
        switch {
        case errors.Is(err, repository.ErrBookingNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case errors.Is(err, repository.ErrBookingFinalized):
            return c.JSON(http.StatusConflict, echo.Map{"error": "booking already finalized"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release booking"})
    }
    return c.JSON(http.StatusOK, echo.Map{"released": id})
}

// bookingJSON maps a booking row to its JSON shape.
func bookingJSON(b *model.Booking) echo.Map {
    return echo.Map{
        "id":          b.ID,
        "user_id":     b.UserID,
        "seat_id":     b.SeatID,
        "movie_id":    b.MovieID,
        "theater_id":  b.TheaterID,
        "status":      b.Status,
        "price_cents": b.PriceCents,
        "booked_at":   b.BookedAt.UTC().Format(time.RFC3339),
    }
}

// bookingDetailJSON maps a joined booking row to its JSON shape,
// including the display context used by listings.
func bookingDetailJSON(d *model.BookingDetail) echo.Map {
    m := bookingJSON(&d.Booking)
    m["movie_name"] = d.MovieName
    m["theater_name"] = d.TheaterName
    m["show_time"] = d.ShowTime.UTC().Format(time.RFC3339)
    m["seat_number"] = d.SeatNumber
    if d.PaymentRef != nil {
        m["payment_ref"] = *d.PaymentRef
    }
    return m
}
