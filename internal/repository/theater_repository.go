package repository

import (
    "context"
    "database/sql"

    "github.com/bookmyseat/booking/internal/model"
)

// TheaterRepo provides read access to showings.  One theater row is
// one screening instance of a movie.
type TheaterRepo struct {
    db *sql.DB
}

// NewTheaterRepo returns a new TheaterRepo bound to the given database.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{db: db} }

// GetByID fetches a single showing.  Returns ErrTheaterNotFound when
// no row exists.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
    const q = `SELECT id, movie_id, name, show_time FROM theaters WHERE id = ?`
    var t model.Theater
    err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.MovieID, &t.Name, &t.ShowTime)
    if err == sql.ErrNoRows {
        return nil, ErrTheaterNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// ListByMovie returns all showings of a movie together with seat
// availability counts, soonest show first.  The counts are computed in
// one grouped query so browse pages never issue a query per theater.
func (r *TheaterRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.TheaterAvailability, error) {
    const q = `SELECT t.id, t.movie_id, t.name, t.show_time,
                      COUNT(s.id) AS total_seats,
                      COALESCE(SUM(s.is_booked), 0) AS booked_seats
               FROM theaters t
               LEFT JOIN seats s ON s.theater_id = t.id
               WHERE t.movie_id = ?
               GROUP BY t.id, t.movie_id, t.name, t.show_time
               ORDER BY t.show_time`
    rows, err := r.db.QueryContext(ctx, q, movieID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    theaters := []model.TheaterAvailability{}
    for rows.Next() {
        var ta model.TheaterAvailability
        if err := rows.Scan(&ta.ID, &ta.MovieID, &ta.Name, &ta.ShowTime, &ta.TotalSeats, &ta.BookedSeats); err != nil {
            return nil, err
        }
        ta.AvailableSeats = ta.TotalSeats - ta.BookedSeats
        theaters = append(theaters, ta)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return theaters, nil
}
