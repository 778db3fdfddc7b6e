package model

import "time"

// Technician is a mobile worker with a van, a home base, default weekly hours,
// and date-keyed availability exceptions.
type Technician struct {
	ID              int64        `json:"id"                        db:"id"`
	UserID          string       `json:"user_id"                   db:"user_id"`
	Name            string       `json:"name"                      db:"name"`
	AssignedVanID   *int64       `json:"assigned_van_id,omitempty" db:"assigned_van_id"`
	Van             *Van         `json:"van,omitempty"`
	HomeLocation    *Coordinates `json:"home_location,omitempty"`
	CurrentLocation *Coordinates `json:"current_location,omitempty"`

	DefaultHours []DefaultHours          `json:"default_hours,omitempty"`
	Exceptions   []AvailabilityException `json:"exceptions,omitempty"`
}

// ExceptionForDate returns the availability exception for the given local
// calendar day (YYYY-MM-DD), if one exists.
func (t Technician) ExceptionForDate(dateKey string) (AvailabilityException, bool) {
	for _, exc := range t.Exceptions {
		if exc.Date == dateKey {
			return exc, true
		}
	}
	return AvailabilityException{}, false
}

// DefaultHoursForDay returns the default-hours entries for a UTC day of week.
func (t Technician) DefaultHoursForDay(day time.Weekday) []DefaultHours {
	var out []DefaultHours
	for _, dh := range t.DefaultHours {
		if dh.DayOfWeek == int(day) {
			out = append(out, dh)
		}
	}
	return out
}

// DefaultHours is one recurring working block for a day of week.
// Times are "HH:MM:SS" strings in the business timezone.
type DefaultHours struct {
	TechnicianID int64  `json:"technician_id" db:"technician_id"`
	DayOfWeek    int    `json:"day_of_week"   db:"day_of_week"` // 0 = Sunday, matching time.Weekday
	StartTime    string `json:"start_time"    db:"start_time"`
	EndTime      string `json:"end_time"      db:"end_time"`
	IsAvailable  *bool  `json:"is_available"  db:"is_available"`
}

// Available reports whether this block counts as working time. A nil
// IsAvailable defaults to available.
func (d DefaultHours) Available() bool {
	return d.IsAvailable == nil || *d.IsAvailable
}

// ExceptionType distinguishes the two kinds of availability exceptions.
type ExceptionType string

const (
	// ExceptionTimeOff removes the whole day.
	ExceptionTimeOff ExceptionType = "time_off"
	// ExceptionCustomHours replaces the default hours for the day.
	ExceptionCustomHours ExceptionType = "custom_hours"
)

// AvailabilityException overrides a technician's default hours for one date.
type AvailabilityException struct {
	TechnicianID  int64         `json:"technician_id"        db:"technician_id"`
	Date          string        `json:"date"                 db:"date"` // YYYY-MM-DD
	ExceptionType ExceptionType `json:"exception_type"       db:"exception_type"`
	IsAvailable   bool          `json:"is_available"         db:"is_available"`
	StartTime     *string       `json:"start_time,omitempty" db:"start_time"`
	EndTime       *string       `json:"end_time,omitempty"   db:"end_time"`
}

// Van is a service vehicle carrying equipment and, optionally, a GPS device.
type Van struct {
	ID        int64    `json:"id"                      db:"id"`
	Name      string   `json:"name"                    db:"name"`
	DeviceID  *string  `json:"device_id,omitempty"     db:"device_id"`
	Lat       *float64 `json:"lat,omitempty"           db:"lat"`
	Lng       *float64 `json:"lng,omitempty"           db:"lng"`
	Equipment []string `json:"equipment,omitempty"`
}

// DeviceLocation is a real-time position report from the location provider.
type DeviceLocation struct {
	DeviceID  string      `json:"device_id"`
	Location  Coordinates `json:"location"`
	Timestamp time.Time   `json:"timestamp"`
}
