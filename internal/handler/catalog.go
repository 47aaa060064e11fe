package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/bookmyseat/booking/internal/model"
    "github.com/bookmyseat/booking/internal/repository"
)

// CatalogHandler serves the public browse endpoints: movie listings,
// showings with availability counts and per-showing seat maps.  These
// routes are unauthenticated and sit behind the response cache.
type CatalogHandler struct {
    Movies   MovieCatalog
    Theaters TheaterCatalog
    Seats    SeatMap
}

// NewCatalogHandler constructs a CatalogHandler.  All dependencies
// must be non-nil.
func NewCatalogHandler(movies MovieCatalog, theaters TheaterCatalog, seats SeatMap) *CatalogHandler {
    if movies == nil || theaters == nil || seats == nil {
        panic("nil dependency passed to NewCatalogHandler")
    }
    return &CatalogHandler{Movies: movies, Theaters: theaters, Seats: seats}
}

// ListMovies handles GET /v1/movies.  The optional ?search= query
// filters by a case-insensitive name substring.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
    movies, err := h.Movies.List(c.Request().Context(), c.QueryParam("search"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movies"})
    }
    items := make([]echo.Map, 0, len(movies))
    for i := range movies {
        items = append(items, movieJSON(&movies[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    m, err := h.Movies.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrMovieNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": movieJSON(m)})
}

// ListTheaters handles GET /v1/movies/:id/theaters.  Each showing is
// returned with total/booked/available seat counts so clients can grey
// out sold-out screenings without fetching the seat map.
func (h *CatalogHandler) ListTheaters(c echo.Context) error {
    movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || movieID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    // Ensure the movie exists so an unknown id is 404, not an empty list.
    if _, err := h.Movies.GetByID(c.Request().Context(), movieID); err != nil {
        if errors.Is(err, repository.ErrMovieNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
    }
    theaters, err := h.Theaters.ListByMovie(c.Request().Context(), movieID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load theaters"})
    }
    items := make([]echo.Map, 0, len(theaters))
    for _, t := range theaters {
        items = append(items, echo.Map{
            "id":              t.ID,
            "movie_id":        t.MovieID,
            "name":            t.Name,
            "show_time":       t.ShowTime.UTC().Format(time.RFC3339),
            "total_seats":     t.TotalSeats,
            "booked_seats":    t.BookedSeats,
            "available_seats": t.AvailableSeats,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListSeats handles GET /v1/theaters/:id/seats.  It returns the full
// seat map of a showing including occupancy, so clients render booked
// seats as unavailable.  With ?available=true only free seats are
// listed.  Occupancy read here is advisory only; the booking endpoint
// is the sole authority.
func (h *CatalogHandler) ListSeats(c echo.Context) error {
    theaterID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || theaterID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
    }
    if _, err := h.Theaters.GetByID(c.Request().Context(), theaterID); err != nil {
        if errors.Is(err, repository.ErrTheaterNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load theater"})
    }
    var seats []model.Seat
    if c.QueryParam("available") == "true" {
        seats, err = h.Seats.AvailableByTheater(c.Request().Context(), theaterID)
    } else {
        seats, err = h.Seats.ByTheater(c.Request().Context(), theaterID)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
    }
    items := make([]echo.Map, 0, len(seats))
    for _, s := range seats {
        items = append(items, echo.Map{
            "id":          s.ID,
            "seat_number": s.SeatNumber,
            "price_cents": s.PriceCents,
            "is_booked":   s.IsBooked,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// movieJSON maps a movie row to its public JSON shape.
func movieJSON(m *model.Movie) echo.Map {
    return echo.Map{
        "id":           m.ID,
        "name":         m.Name,
        "rating":       m.Rating,
        "cast":         m.Cast,
        "description":  m.Description,
        "language":     m.Language,
        "release_date": m.ReleaseDate.UTC().Format("2006-01-02"),
        "duration":     m.Duration,
        "genre":        m.Genre,
        "director":     m.Director,
        "trailer_url":  m.TrailerURL,
        "is_2d":        m.Is2D,
        "is_3d":        m.Is3D,
        "is_imax":      m.IsIMAX,
    }
}
