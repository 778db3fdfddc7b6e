// Package mocks provides mock implementations for testing the dispatch replanner.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// core repository and client interfaces. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().RelevantJobs(gomock.Any()).Return(jobs, nil)
package mocks

// Generate mock for TechnicianRepository interface from internal/core package.
// This creates MockTechnicianRepository with methods for all TechnicianRepository interface methods:
// ActiveTechnicians
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=technician_repository_mock.go github.com/fieldline/dispatch/internal/core TechnicianRepository

// Generate mock for JobRepository interface from internal/core package.
// This creates MockJobRepository with methods for all JobRepository interface methods:
// RelevantJobs, JobsByStatus, UpdateJobs
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/fieldline/dispatch/internal/core JobRepository

// Generate mock for EquipmentRepository interface from internal/core package.
// This creates MockEquipmentRepository with methods for all EquipmentRepository interface methods:
// EquipmentForVans, RequiredModelsForJob, YMMIDForOrder
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=equipment_repository_mock.go github.com/fieldline/dispatch/internal/core EquipmentRepository

// Generate mock for TravelTimeStore interface from internal/core package.
// This creates MockTravelTimeStore with methods for all TravelTimeStore interface methods:
// BulkGet, BulkUpsert
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=travel_time_store_mock.go github.com/fieldline/dispatch/internal/core TravelTimeStore

// Generate mock for DistanceMatrixProvider interface from internal/core package.
// This creates MockDistanceMatrixProvider with methods for all DistanceMatrixProvider interface methods:
// TravelTime
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=distance_matrix_provider_mock.go github.com/fieldline/dispatch/internal/core DistanceMatrixProvider

// Generate mock for LocationProvider interface from internal/core package.
// This creates MockLocationProvider with methods for all LocationProvider interface methods:
// CurrentLocations
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=location_provider_mock.go github.com/fieldline/dispatch/internal/core LocationProvider

// Generate mock for OptimizerClient interface from internal/core package.
// This creates MockOptimizerClient with methods for all OptimizerClient interface methods:
// Solve
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=optimizer_client_mock.go github.com/fieldline/dispatch/internal/core OptimizerClient

// Generate mock for RunGuard interface from internal/core package.
// This creates MockRunGuard with methods for all RunGuard interface methods:
// TryAcquire, Release
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=run_guard_mock.go github.com/fieldline/dispatch/internal/core RunGuard
