package model

import "time"

// Order groups one customer visit: one address, one vehicle, one or more jobs.
type Order struct {
	ID                    int64      `json:"id"                                db:"id"`
	CustomerName          string     `json:"customer_name"                     db:"customer_name"`
	AddressID             int64      `json:"address_id"                        db:"address_id"`
	VehicleID             *int64     `json:"vehicle_id,omitempty"              db:"vehicle_id"`
	EarliestAvailableTime *time.Time `json:"earliest_available_time,omitempty" db:"earliest_available_time"`

	Address *Address         `json:"address,omitempty"`
	Vehicle *CustomerVehicle `json:"vehicle,omitempty"`
}

// CustomerVehicle is the vehicle a job is performed on, identified by
// year/make/model (YMM) for equipment-requirement lookups.
type CustomerVehicle struct {
	ID    int64  `json:"id"    db:"id"`
	Year  int    `json:"year"  db:"year"`
	Make  string `json:"make"  db:"make"`
	Model string `json:"model" db:"model"`
	VIN   string `json:"vin"   db:"vin"`
}
