package model

import "time"

// Movie holds catalog metadata for a film.  The booking core treats
// movies as immutable reference data owned by the external catalog
// service; rows are only ever read by id or listed for browsing.
// This struct corresponds to a row in the `movies` table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display title of the movie.
//  Rating      – aggregate rating on a 0.0–10.0 scale, stored as tenths.
//  Cast        – comma separated list of lead actors.
//  Description – optional synopsis (nullable).
//  Language    – comma separated list of audio languages.
//  ReleaseDate – theatrical release date.
//  Duration    – human readable running time (e.g. "2h 15m").
//  Genre       – primary genre label.
//  Director    – director name.
//  TrailerURL  – optional link to the trailer (nullable).
//  Is2D        – available in 2D.
//  Is3D        – available in 3D.
//  IsIMAX      – available in IMAX.
type Movie struct {
    ID          uint64     // movies.id
    Name        string     // movies.name
    Rating      float64    // movies.rating
    Cast        string     // movies.cast
    Description *string    // movies.description (nullable)
    Language    string     // movies.language
    ReleaseDate time.Time  // movies.release_date
    Duration    string     // movies.duration
    Genre       string     // movies.genre
    Director    string     // movies.director
    TrailerURL  *string    // movies.trailer_url (nullable)
    Is2D        bool       // movies.is_2d
    Is3D        bool       // movies.is_3d
    IsIMAX      bool       // movies.is_imax
}
