package repository

import (
    "context"
    "database/sql"

    "github.com/bookmyseat/booking/internal/model"
)

// MovieRepo provides read access to the movie catalog.  The catalog is
// owned by an external service; the booking core only lists and
// resolves movies by id.
type MovieRepo struct {
    db *sql.DB
}

// NewMovieRepo returns a new MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// `cast` is a reserved word in MySQL and must be quoted.
const movieSelect = "SELECT id, name, rating, `cast`, description, language, release_date, " +
    "duration, genre, director, trailer_url, is_2d, is_3d, is_imax FROM movies"

// List returns all movies, optionally filtered by a case-insensitive
// name substring when search is non-empty.
func (r *MovieRepo) List(ctx context.Context, search string) ([]model.Movie, error) {
    q := movieSelect
    var args []interface{}
    if search != "" {
        q += ` WHERE name LIKE ?`
        args = append(args, "%"+search+"%")
    }
    q += ` ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    movies := []model.Movie{}
    for rows.Next() {
        m, err := scanMovie(rows.Scan)
        if err != nil {
            return nil, err
        }
        movies = append(movies, *m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return movies, nil
}

// GetByID fetches a single movie.  Returns ErrMovieNotFound when no
// row exists.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
    row := r.db.QueryRowContext(ctx, movieSelect+` WHERE id = ?`, id)
    m, err := scanMovie(row.Scan)
    if err == sql.ErrNoRows {
        return nil, ErrMovieNotFound
    }
    if err != nil {
        return nil, err
    }
    return m, nil
}

// scanMovie reads one movie row through the provided Scan function so
// the same mapping serves both *sql.Row and *sql.Rows.
func scanMovie(scan func(...interface{}) error) (*model.Movie, error) {
    var m model.Movie
    var description, trailer sql.NullString
    err := scan(&m.ID, &m.Name, &m.Rating, &m.Cast, &description, &m.Language, &m.ReleaseDate,
        &m.Duration, &m.Genre, &m.Director, &trailer, &m.Is2D, &m.Is3D, &m.IsIMAX)
    if err != nil {
        return nil, err
    }
    if description.Valid {
        v := description.String
        m.Description = &v
    }
    if trailer.Valid {
        v := trailer.String
        m.TrailerURL = &v
    }
    return &m, nil
}
