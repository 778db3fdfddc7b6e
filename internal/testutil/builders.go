package testutil

import (
	"context"
	"database/sql"
	"time"
)

// Seed helpers insert rows into the dispatch schema and return generated ids.
// They fail the test on any database error.

// SeedAddress inserts an address row.
func SeedAddress(t TestingTB, db *sql.DB, street string, lat, lng float64) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO addresses (street_address, lat, lng) VALUES ($1, $2, $3) RETURNING id`,
		street, lat, lng)
}

// SeedVan inserts a van row.
func SeedVan(t TestingTB, db *sql.DB, name string, deviceID *string, lat, lng *float64) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO vans (name, device_id, lat, lng) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, deviceID, lat, lng)
}

// TechnicianParams describes a technician row to seed.
type TechnicianParams struct {
	UserID        string
	Name          string
	Active        bool
	VanID         *int64
	HomeAddressID *int64
}

// SeedTechnician inserts a technician row.
func SeedTechnician(t TestingTB, db *sql.DB, p TechnicianParams) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO technicians (user_id, name, active, assigned_van_id, home_address_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.UserID, p.Name, p.Active, p.VanID, p.HomeAddressID)
}

// SeedDefaultHours inserts a weekly default-hours row for a technician.
func SeedDefaultHours(t TestingTB, db *sql.DB, techID int64, dayOfWeek int, start, end string) {
	t.Helper()
	exec(t, db,
		`INSERT INTO technician_default_hours (technician_id, day_of_week, start_time, end_time, is_available)
		 VALUES ($1, $2, $3, $4, true)`,
		techID, dayOfWeek, start, end)
}

// ExceptionParams describes an availability exception to seed.
type ExceptionParams struct {
	TechnicianID int64
	Date         string // YYYY-MM-DD
	Type         string // time_off or custom_hours
	IsAvailable  bool
	Start        *string
	End          *string
}

// SeedException inserts an availability exception row.
func SeedException(t TestingTB, db *sql.DB, p ExceptionParams) {
	t.Helper()
	exec(t, db,
		`INSERT INTO technician_availability_exceptions
		 (technician_id, date, exception_type, is_available, start_time, end_time)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.TechnicianID, p.Date, p.Type, p.IsAvailable, p.Start, p.End)
}

// SeedVehicle inserts a customer vehicle row.
func SeedVehicle(t TestingTB, db *sql.DB, year int, make, model string) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO customer_vehicles (year, make, model) VALUES ($1, $2, $3) RETURNING id`,
		year, make, model)
}

// OrderParams describes an order row to seed.
type OrderParams struct {
	CustomerName string
	AddressID    int64
	VehicleID    *int64
	Earliest     *time.Time
}

// SeedOrder inserts an order row.
func SeedOrder(t TestingTB, db *sql.DB, p OrderParams) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO orders (customer_name, address_id, vehicle_id, earliest_available_time)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		p.CustomerName, p.AddressID, p.VehicleID, p.Earliest)
}

// SeedServiceRow inserts a service row.
func SeedServiceRow(t TestingTB, db *sql.DB, name, category string) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO services (name, category) VALUES ($1, $2) RETURNING id`,
		name, category)
}

// JobParams describes a job row to seed.
type JobParams struct {
	OrderID            int64
	ServiceID          *int64
	AddressID          int64
	Priority           int
	Status             *string
	DurationMinutes    int
	AssignedTechnician *int64
	FixedScheduleTime  *time.Time
	FixedAssignment    bool
}

// SeedJob inserts a job row.
func SeedJob(t TestingTB, db *sql.DB, p JobParams) int64 {
	t.Helper()
	if p.Priority == 0 {
		p.Priority = 5
	}
	return insertReturningID(t, db,
		`INSERT INTO jobs (order_id, service_id, address_id, priority, status, job_duration,
		                   assigned_technician, fixed_schedule_time, fixed_assignment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		p.OrderID, p.ServiceID, p.AddressID, p.Priority, p.Status, p.DurationMinutes,
		p.AssignedTechnician, p.FixedScheduleTime, p.FixedAssignment)
}

// SeedEquipment inserts an equipment row.
func SeedEquipment(t TestingTB, db *sql.DB, model string) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO equipment (model) VALUES ($1) RETURNING id`, model)
}

// SeedVanEquipment assigns equipment to a van.
func SeedVanEquipment(t TestingTB, db *sql.DB, vanID, equipmentID int64) {
	t.Helper()
	exec(t, db,
		`INSERT INTO van_equipment (van_id, equipment_id) VALUES ($1, $2)`, vanID, equipmentID)
}

// SeedYMM inserts a year/make/model reference row.
func SeedYMM(t TestingTB, db *sql.DB, year int, make, model string) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO ymm_references (year, make, model) VALUES ($1, $2, $3) RETURNING id`,
		year, make, model)
}

// SeedRequirement inserts an equipment requirement row.
func SeedRequirement(t TestingTB, db *sql.DB, ymmID, serviceID, equipmentID int64) {
	t.Helper()
	exec(t, db,
		`INSERT INTO equipment_requirements (ymm_id, service_id, equipment_id) VALUES ($1, $2, $3)`,
		ymmID, serviceID, equipmentID)
}

func insertReturningID(t TestingTB, db *sql.DB, query string, args ...any) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var id int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}
	return id
}

func exec(t TestingTB, db *sql.DB, query string, args ...any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		t.Fatalf("seed exec failed: %v", err)
	}
}
