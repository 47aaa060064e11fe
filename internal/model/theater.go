package model

import "time"

// Theater represents a single showing of a movie at a physical venue.
// One row models one screening instance: the venue name together with
// the scheduled show time.  Seats belong to exactly one theater row.
// This struct corresponds to a row in the `theaters` table.
//
// Fields:
//  ID       – primary key identifier.
//  MovieID  – movie being screened.
//  Name     – venue name.
//  ShowTime – scheduled start of the screening.
type Theater struct {
    ID       uint64    // theaters.id
    MovieID  uint64    // theaters.movie_id
    Name     string    // theaters.name
    ShowTime time.Time // theaters.show_time
}

// TheaterAvailability pairs a theater with aggregate seat counts for
// catalog listings.  AvailableSeats is derived as TotalSeats minus
// BookedSeats at query time and is never stored.
type TheaterAvailability struct {
    Theater
    TotalSeats     uint32 // COUNT(seats)
    BookedSeats    uint32 // COUNT(seats WHERE is_booked)
    AvailableSeats uint32 // total - booked
}
