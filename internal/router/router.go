package router

import (
    "github.com/labstack/echo/v4"

    "github.com/bookmyseat/booking/internal/handler"
    "github.com/bookmyseat/booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// that load balancers and monitoring can poll.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.  These
// routes return sanitized catalog data for guests and carry no JWT or
// role middleware.  The optional extra middleware (typically the Redis
// response cache) is applied to the whole group.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
    g := e.Group("/v1", mw...)
    // Browse and search the movie catalog.  Use the optional ?search=
    // query parameter to filter by name or genre.
    g.GET("/movies", cat.ListMovies)
    g.GET("/movies/:id", cat.GetMovie)
    // Showings of a movie, with live seat availability counts.
    g.GET("/movies/:id/theaters", cat.ListTheaters)
    // The full seat map of one showing, booked seats included, so a
    // client can render the grid before picking seats.
    g.GET("/theaters/:id/seats", cat.ListSeats)
}

// RegisterCustomer registers the booking and payment endpoints under
// /v1.  All routes require a valid JWT; both customers and admins may
// book.  The optional extra middleware (typically the rate limiter) is
// applied after authentication so buckets are keyed by user id.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleCustomer, middleware.RoleAdmin),
    )
    g.Use(mw...)
    // Claim one or more seats of a showing.  All requested seats are
    // booked together or not at all.
    g.POST("/theaters/:id/bookings", b.CreateBookings)
    g.GET("/my-bookings", b.ListMyBookings)
    g.GET("/bookings/:id", b.GetBooking)
    // Payment is two steps: create a gateway order, then settle the
    // booking from the signed checkout callback.
    g.POST("/bookings/:id/payment", p.InitiatePayment)
    g.POST("/bookings/:id/payment/callback", p.PaymentCallback)
}

// RegisterAdmin registers operator endpoints under /v1.  All routes
// require a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, b *handler.BookingHandler, a *handler.AdminHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleAdmin),
    )
    // Manually void a provisional booking and free its seat.  Expired
    // holds are released automatically by the background sweeper.
    g.POST("/bookings/:id/release", b.ReleaseBooking)
    g.GET("/admin/dashboard", a.Dashboard)
}
