package model

import "math"

// Address is a service location. Coordinates are optional because addresses
// arrive from customer input and are geocoded asynchronously.
type Address struct {
	ID            int64    `json:"id"             db:"id"`
	StreetAddress string   `json:"street_address" db:"street_address"`
	Lat           *float64 `json:"lat,omitempty"  db:"lat"`
	Lng           *float64 `json:"lng,omitempty"  db:"lng"`
}

// Coordinates returns the address position, if geocoded.
func (a Address) Coordinates() (Coordinates, bool) {
	if a.Lat == nil || a.Lng == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *a.Lat, Lng: *a.Lng}, true
}

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// coordinatePrecision is the number of decimals coordinates are rounded to
// before being used as cache keys or compared for identity. Six decimals is
// roughly 0.1 m, well below GPS accuracy.
const coordinatePrecision = 1e6

// Round returns the coordinates rounded to 6 decimal places. Raw floats are
// never used as map keys; rounding prevents key drift between insert and lookup.
func (c Coordinates) Round() Coordinates {
	return Coordinates{
		Lat: math.Round(c.Lat*coordinatePrecision) / coordinatePrecision,
		Lng: math.Round(c.Lng*coordinatePrecision) / coordinatePrecision,
	}
}

// Equal reports whether two coordinates are identical after rounding.
func (c Coordinates) Equal(other Coordinates) bool {
	return c.Round() == other.Round()
}
