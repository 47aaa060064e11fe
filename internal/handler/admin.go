package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// AdminHandler serves the operator dashboard.
type AdminHandler struct {
    Bookings BookingReader
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(bookings BookingReader) *AdminHandler {
    if bookings == nil {
        panic("nil booking reader passed to NewAdminHandler")
    }
    return &AdminHandler{Bookings: bookings}
}

// Dashboard handles GET /v1/admin/dashboard.  It aggregates confirmed
// revenue, the most booked movies and theaters and the latest
// bookings into one payload.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    stats, err := h.Bookings.Dashboard(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
    }
    recent := make([]echo.Map, 0, len(stats.RecentBookings))
    for i := range stats.RecentBookings {
        recent = append(recent, bookingDetailJSON(&stats.RecentBookings[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "total_revenue_cents": stats.TotalRevenueCents,
        "popular_movies":      stats.PopularMovies,
        "busy_theaters":       stats.BusyTheaters,
        "recent_bookings":     recent,
    })
}
