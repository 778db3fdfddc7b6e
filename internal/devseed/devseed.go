// Package devseed populates a development database with a small demo fleet:
// a depot-area set of technicians, vans, equipment, and open jobs, so a fresh
// checkout can trigger a replan run against real-looking data. Seeding is
// idempotent; rerunning against a seeded database is a no-op.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Run executes the full development seeding workflow against the provided DB.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	s := seeder{db: db, logger: logger}

	if err := s.seedFleet(ctx); err != nil {
		return fmt.Errorf("seed fleet: %w", err)
	}
	if err := s.seedCatalog(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if err := s.seedDemand(ctx); err != nil {
		return fmt.Errorf("seed demand: %w", err)
	}

	logger.InfoContext(ctx, "development seed complete")
	return nil
}

type seeder struct {
	db     *sql.DB
	logger *slog.Logger
}

// seedFleet creates vans, technicians, their home bases, and weekly hours.
func (s *seeder) seedFleet(ctx context.Context) error {
	type techSeed struct {
		userID  string
		name    string
		van     string
		device  string
		vanLat  float64
		vanLng  float64
		homeLat float64
		homeLng float64
	}
	seeds := []techSeed{
		{"dev-tech-1", "Avery Quinn", "Van Alpha", "dev-device-1", 51.0447, -114.0719, 51.0890, -114.1200},
		{"dev-tech-2", "Morgan Reyes", "Van Bravo", "dev-device-2", 51.0275, -114.0499, 50.9981, -114.0345},
		{"dev-tech-3", "Riley Chen", "Van Charlie", "dev-device-3", 51.1160, -114.0320, 51.1489, -114.0680},
	}

	for _, seed := range seeds {
		homeID, err := s.ensureAddress(ctx, seed.name+" home", seed.homeLat, seed.homeLng)
		if err != nil {
			return err
		}

		vanID, created, err := s.ensureRow(ctx,
			`SELECT id FROM vans WHERE name = $1`,
			`INSERT INTO vans (name, device_id, lat, lng) VALUES ($1, $2, $3, $4) RETURNING id`,
			[]any{seed.van},
			[]any{seed.van, seed.device, seed.vanLat, seed.vanLng},
		)
		if err != nil {
			return err
		}
		s.logSeeded(ctx, "van", seed.van, created)

		techID, created, err := s.ensureRow(ctx,
			`SELECT id FROM technicians WHERE user_id = $1`,
			`INSERT INTO technicians (user_id, name, active, assigned_van_id, home_address_id)
			 VALUES ($1, $2, true, $3, $4) RETURNING id`,
			[]any{seed.userID},
			[]any{seed.userID, seed.name, vanID, homeID},
		)
		if err != nil {
			return err
		}
		s.logSeeded(ctx, "technician", seed.name, created)

		// Weekday hours, 08:00-16:30 local.
		for day := 1; day <= 5; day++ {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO technician_default_hours (technician_id, day_of_week, start_time, end_time, is_available)
				 VALUES ($1, $2, '08:00:00', '16:30:00', true)
				 ON CONFLICT (technician_id, day_of_week, start_time) DO NOTHING`,
				techID, day); err != nil {
				return fmt.Errorf("seed default hours for %s: %w", seed.name, err)
			}
		}
	}
	return nil
}

// seedCatalog creates services, equipment, and the requirement matrix.
func (s *seeder) seedCatalog(ctx context.Context) error {
	for _, model := range []string{"CALIB-100", "CALIB-200", "TARGET-STAND", "adas_calibration"} {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO equipment (model) VALUES ($1) ON CONFLICT (model) DO NOTHING`, model); err != nil {
			return fmt.Errorf("seed equipment %s: %w", model, err)
		}
	}

	// Every van carries the generic calibration rig; Van Alpha also carries the
	// vehicle-specific units.
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO van_equipment (van_id, equipment_id)
		SELECT v.id, e.id FROM vans v, equipment e
		WHERE v.name LIKE 'Van %'
		  AND (e.model = 'adas_calibration' OR v.name = 'Van Alpha')
		ON CONFLICT DO NOTHING`); err != nil {
		return fmt.Errorf("seed van equipment: %w", err)
	}

	services := []struct{ name, category string }{
		{"Windshield Replacement", ""},
		{"Front Camera Calibration", "adas_calibration"},
		{"Side Mirror Replacement", ""},
	}
	for _, svc := range services {
		_, created, err := s.ensureRow(ctx,
			`SELECT id FROM services WHERE name = $1`,
			`INSERT INTO services (name, category) VALUES ($1, $2) RETURNING id`,
			[]any{svc.name},
			[]any{svc.name, svc.category},
		)
		if err != nil {
			return err
		}
		s.logSeeded(ctx, "service", svc.name, created)
	}

	ymms := []struct {
		year        int
		make, model string
	}{
		{2021, "Toyota", "RAV4"},
		{2022, "Honda", "Civic"},
		{2023, "Ford", "F-150"},
	}
	for _, y := range ymms {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO ymm_references (year, make, model) VALUES ($1, $2, $3)
			 ON CONFLICT (year, make, model) DO NOTHING`,
			y.year, y.make, y.model); err != nil {
			return fmt.Errorf("seed ymm %d %s %s: %w", y.year, y.make, y.model, err)
		}
	}

	// The RAV4 calibration needs the specific rig and target stand.
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO equipment_requirements (ymm_id, service_id, equipment_id)
		SELECT y.id, s.id, e.id
		FROM ymm_references y, services s, equipment e
		WHERE y.make = 'Toyota' AND y.model = 'RAV4'
		  AND s.name = 'Front Camera Calibration'
		  AND e.model IN ('CALIB-100', 'TARGET-STAND')
		ON CONFLICT DO NOTHING`); err != nil {
		return fmt.Errorf("seed equipment requirements: %w", err)
	}
	return nil
}

// seedDemand creates customer orders with open jobs around the depot.
func (s *seeder) seedDemand(ctx context.Context) error {
	type jobSeed struct {
		customer string
		street   string
		lat, lng float64
		year     int
		vehMake  string
		vehModel string
		service  string
		duration int
		priority int
	}
	seeds := []jobSeed{
		{"Dana Whitfield", "120 9 Ave SE", 51.0425, -114.0630, 2021, "Toyota", "RAV4", "Front Camera Calibration", 90, 8},
		{"Chris Okafor", "3625 Shaganappi Tr NW", 51.0930, -114.1430, 2022, "Honda", "Civic", "Windshield Replacement", 60, 5},
		{"Jamie Larsen", "5111 Northland Dr NW", 51.1030, -114.1210, 2023, "Ford", "F-150", "Windshield Replacement", 60, 5},
		{"Pat Delgado", "8338 18 St SE", 50.9820, -114.0180, 2021, "Toyota", "RAV4", "Side Mirror Replacement", 45, 3},
	}

	for _, seed := range seeds {
		exists, err := s.rowExists(ctx, `SELECT 1 FROM orders WHERE customer_name = $1`, seed.customer)
		if err != nil {
			return err
		}
		if exists {
			s.logSeeded(ctx, "order", seed.customer, false)
			continue
		}

		addrID, err := s.ensureAddress(ctx, seed.street, seed.lat, seed.lng)
		if err != nil {
			return err
		}

		var vehicleID int64
		if err := s.db.QueryRowContext(ctx,
			`INSERT INTO customer_vehicles (year, make, model) VALUES ($1, $2, $3) RETURNING id`,
			seed.year, seed.vehMake, seed.vehModel).Scan(&vehicleID); err != nil {
			return fmt.Errorf("seed vehicle for %s: %w", seed.customer, err)
		}

		var orderID int64
		if err := s.db.QueryRowContext(ctx,
			`INSERT INTO orders (customer_name, address_id, vehicle_id, earliest_available_time)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			seed.customer, addrID, vehicleID, time.Now().UTC()).Scan(&orderID); err != nil {
			return fmt.Errorf("seed order for %s: %w", seed.customer, err)
		}

		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO jobs (order_id, service_id, address_id, priority, status, job_duration)
			SELECT $1, s.id, $2, $3, 'queued', $4 FROM services s WHERE s.name = $5`,
			orderID, addrID, seed.priority, seed.duration, seed.service); err != nil {
			return fmt.Errorf("seed job for %s: %w", seed.customer, err)
		}
		s.logSeeded(ctx, "order", seed.customer, true)
	}
	return nil
}

// ensureAddress finds or creates an address by street text.
func (s *seeder) ensureAddress(ctx context.Context, street string, lat, lng float64) (int64, error) {
	id, _, err := s.ensureRow(ctx,
		`SELECT id FROM addresses WHERE street_address = $1`,
		`INSERT INTO addresses (street_address, lat, lng) VALUES ($1, $2, $3) RETURNING id`,
		[]any{street},
		[]any{street, lat, lng},
	)
	if err != nil {
		return 0, fmt.Errorf("seed address %q: %w", street, err)
	}
	return id, nil
}

// ensureRow returns the id of an existing row matching selectQuery, inserting
// it with insertQuery when absent. The bool reports whether an insert happened.
func (s *seeder) ensureRow(
	ctx context.Context,
	selectQuery, insertQuery string,
	selectArgs, insertArgs []any,
) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, selectQuery, selectArgs...).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	if err := s.db.QueryRowContext(ctx, insertQuery, insertArgs...).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *seeder) rowExists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *seeder) logSeeded(ctx context.Context, kind, name string, created bool) {
	msg := kind + " already exists"
	if created {
		msg = kind + " created"
	}
	s.logger.DebugContext(ctx, msg, "name", name)
}
