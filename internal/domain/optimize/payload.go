// Package optimize defines the wire contract with the external route
// optimizer. Field names and the item-id scheme are load-bearing: the solver
// echoes item ids back verbatim.
package optimize

import "github.com/fieldline/dispatch/internal/domain/model"

// Location is one indexed point in the travel-time matrix. Index 0 is always
// the depot.
type Location struct {
	Index int     `json:"index"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Technician describes one worker's shift for the target date.
type Technician struct {
	ID                 int64  `json:"technicianId"`
	StartLocationIndex int    `json:"startLocationIndex"`
	EarliestStartISO   string `json:"earliestStartTimeISO"`
	LatestEndISO       string `json:"latestEndTimeISO"`
}

// Item is one schedulable unit for the solver.
type Item struct {
	ID                    string  `json:"id"`
	LocationIndex         int     `json:"locationIndex"`
	DurationSeconds       int64   `json:"durationSeconds"`
	Priority              int     `json:"priority"`
	EligibleTechnicianIDs []int64 `json:"eligibleTechnicianIds"`
	EarliestStartTimeISO  *string `json:"earliestStartTimeISO,omitempty"`
	IsFixedTime           bool    `json:"isFixedTime,omitempty"`
	FixedTimeISO          *string `json:"fixedTimeISO,omitempty"`
}

// TechnicianUnavailability is a gap inside a technician's shift envelope,
// distinct from fixed constraints.
type TechnicianUnavailability struct {
	TechnicianID    int64  `json:"technicianId"`
	StartTimeISO    string `json:"startTimeISO"`
	DurationSeconds int64  `json:"durationSeconds"`
}

// Payload is the full request body sent to the optimizer.
type Payload struct {
	Locations                  []Location                 `json:"locations"`
	Technicians                []Technician               `json:"technicians"`
	Items                      []Item                     `json:"items"`
	FixedConstraints           []any                      `json:"fixedConstraints"`
	TravelTimeMatrix           [][]int64                  `json:"travelTimeMatrix"`
	TechnicianUnavailabilities []TechnicianUnavailability `json:"technicianUnavailabilities"`
}

// Response statuses returned by the optimizer.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Stop is one placed item on a route.
type Stop struct {
	ItemID       string `json:"itemId"`
	StartTimeISO string `json:"startTimeISO"`
}

// Route is one technician's ordered stops.
type Route struct {
	TechnicianID int64  `json:"technicianId"`
	Stops        []Stop `json:"stops"`
}

// Response is the optimizer's reply.
type Response struct {
	Status            string   `json:"status"`
	Message           string   `json:"message,omitempty"`
	Routes            []Route  `json:"routes"`
	UnassignedItemIDs []string `json:"unassignedItemIds"`
}

// TravelMode selects which cache tier and provider mode a lookup uses.
type TravelMode string

const (
	// ModeRealTime uses live traffic; used when planning for today.
	ModeRealTime TravelMode = "REAL_TIME"
	// ModePredictive uses hour-of-week predictions; used for future days.
	ModePredictive TravelMode = "PREDICTIVE"
)

// PairKey identifies one origin-destination pair with coordinates rounded to
// 6 decimals. It is safe to use as a map key.
type PairKey struct {
	Origin      model.Coordinates
	Destination model.Coordinates
}

// NewPairKey rounds both endpoints and builds the key.
func NewPairKey(origin, destination model.Coordinates) PairKey {
	return PairKey{Origin: origin.Round(), Destination: destination.Round()}
}

// IsSelfPair reports whether origin and destination coincide after rounding.
func (k PairKey) IsSelfPair() bool {
	return k.Origin == k.Destination
}
