package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default http addr :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Name != "dispatch" {
		t.Errorf("expected default db name dispatch, got %q", cfg.Postgres.Name)
	}
	if cfg.Replan.MaxOverflowAttempts != 4 {
		t.Errorf("expected 4 overflow attempts, got %d", cfg.Replan.MaxOverflowAttempts)
	}
	if cfg.Replan.BusinessTimezone != "America/Edmonton" {
		t.Errorf("expected default business timezone, got %q", cfg.Replan.BusinessTimezone)
	}
	if cfg.Replan.RealTimeCacheTTL != 20*time.Minute {
		t.Errorf("expected 20m realtime cache ttl, got %v", cfg.Replan.RealTimeCacheTTL)
	}
	if cfg.Replan.PredictiveCacheTTL != 24*time.Hour {
		t.Errorf("expected 24h predictive cache ttl, got %v", cfg.Replan.PredictiveCacheTTL)
	}
	if cfg.Replan.TravelPenaltySeconds != 999999 {
		t.Errorf("expected penalty 999999, got %d", cfg.Replan.TravelPenaltySeconds)
	}
}

func TestAppConfig_ParseReplanEnv(t *testing.T) {
	t.Setenv("MAX_OVERFLOW_ATTEMPTS", "2")
	t.Setenv("BUSINESS_TIMEZONE", "America/Toronto")
	t.Setenv("DEPOT_LAT", "43.6532")
	t.Setenv("DEPOT_LNG", "-79.3832")
	t.Setenv("PREDICTIVE_DEPARTURE_HOUR_UTC", "13")
	t.Setenv("TRAVEL_CACHE_REALTIME_TTL", "5m")
	t.Setenv("RUN_LEASE_TTL", "30m")
	t.Setenv("OPTIMIZER_TIMEOUT", "90s")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	core, err := cfg.Replan.ToCore()
	if err != nil {
		t.Fatalf("to core: %v", err)
	}

	if core.MaxOverflowAttempts != 2 {
		t.Errorf("expected 2 overflow attempts, got %d", core.MaxOverflowAttempts)
	}
	if core.BusinessLocation.String() != "America/Toronto" {
		t.Errorf("expected America/Toronto, got %v", core.BusinessLocation)
	}
	if core.Depot.Lat != 43.6532 || core.Depot.Lng != -79.3832 {
		t.Errorf("unexpected depot: %+v", core.Depot)
	}
	if core.PredictiveDepartureHourUTC != 13 {
		t.Errorf("expected departure hour 13, got %d", core.PredictiveDepartureHourUTC)
	}
	if core.RealTimeCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m realtime ttl, got %v", core.RealTimeCacheTTL)
	}
	if core.RunLeaseTTL != 30*time.Minute {
		t.Errorf("expected 30m lease ttl, got %v", core.RunLeaseTTL)
	}
	if core.OptimizerTimeout != 90*time.Second {
		t.Errorf("expected 90s optimizer timeout, got %v", core.OptimizerTimeout)
	}
}

func TestReplanConfig_ToCoreBadTimezone(t *testing.T) {
	cfg := ReplanConfig{BusinessTimezone: "Not/AZone"}
	if _, err := cfg.ToCore(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestReplanConfig_SanitizeClamps(t *testing.T) {
	cfg := ReplanConfig{
		MaxOverflowAttempts:        -1,
		PredictiveDepartureHourUTC: 99,
		TravelPenaltySeconds:       0,
	}
	cfg.Sanitize()

	if cfg.MaxOverflowAttempts != 4 {
		t.Errorf("expected overflow attempts to fall back to 4, got %d", cfg.MaxOverflowAttempts)
	}
	if cfg.PredictiveDepartureHourUTC != 15 {
		t.Errorf("expected departure hour to fall back to 15, got %d", cfg.PredictiveDepartureHourUTC)
	}
	if cfg.TravelPenaltySeconds != 999999 {
		t.Errorf("expected penalty to fall back, got %d", cfg.TravelPenaltySeconds)
	}
	if cfg.RunLeaseTTL <= 0 {
		t.Errorf("expected lease ttl default, got %v", cfg.RunLeaseTTL)
	}
}

func TestOptimizerConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         OptimizerConfig
		expectError bool
	}{
		{
			name:        "token present",
			cfg:         OptimizerConfig{URL: "http://optimizer:9090", Token: "secret"},
			expectError: false,
		},
		{
			name:        "bypass without token",
			cfg:         OptimizerConfig{URL: "http://optimizer:9090", BypassAuth: true},
			expectError: false,
		},
		{
			name:        "missing token",
			cfg:         OptimizerConfig{URL: "http://optimizer:9090"},
			expectError: true,
		},
		{
			name:        "missing url",
			cfg:         OptimizerConfig{Token: "secret"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}
