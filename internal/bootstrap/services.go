package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/fieldline/dispatch/config"
	"github.com/fieldline/dispatch/internal/adapters/locations"
	"github.com/fieldline/dispatch/internal/adapters/optimizer"
	dispatchredis "github.com/fieldline/dispatch/internal/adapters/redis"
	"github.com/fieldline/dispatch/internal/adapters/routing"
	"github.com/fieldline/dispatch/internal/data"
	"github.com/fieldline/dispatch/internal/observability/statsd"
	"github.com/fieldline/dispatch/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Replan        *service.ReplanService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Technicians *data.TechnicianRepo
	Jobs        *data.JobRepo
	Equipment   *data.EquipmentRepo
	TravelCache *data.TravelCacheRepo
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "dispatch",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Technicians: data.NewTechnicianRepo(db),
		Jobs:        data.NewJobRepo(db),
		Equipment:   data.NewEquipmentRepo(db),
		TravelCache: data.NewTravelCacheRepo(db),
	}
}

// externalClients groups the outbound service adapters.
type externalClients struct {
	Optimizer *optimizer.Client
	Matrix    *routing.Client
	Locations *dispatchredis.LocationCache
	Guard     *dispatchredis.RunGuard
}

func buildExternalClients(deps *ServiceDeps, logger *slog.Logger) (*externalClients, error) {
	cfg := deps.Config

	tokens := optimizer.StaticTokens(cfg.Optimizer.Token)
	if cfg.Optimizer.BypassAuth {
		tokens = nil
	}
	optimizerClient, err := optimizer.NewClient(optimizer.ClientOptions{
		BaseURL:    cfg.Optimizer.URL,
		Tokens:     tokens,
		BypassAuth: cfg.Optimizer.BypassAuth,
		HTTPClient: &http.Client{Timeout: cfg.Replan.OptimizerTimeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build optimizer client: %w", err)
	}

	matrixClient, err := routing.NewClient(routing.ClientOptions{
		BaseURL:    cfg.Matrix.URL,
		APIKey:     cfg.Matrix.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Replan.MatrixTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("build distance matrix client: %w", err)
	}

	locationClient, err := locations.NewClient(locations.ClientOptions{
		BaseURL:    cfg.Locations.URL,
		APIKey:     cfg.Locations.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Replan.LocationTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("build location client: %w", err)
	}

	locationCache := dispatchredis.NewLocationCache(dispatchredis.LocationCacheOptions{
		Client:   deps.RedisClient,
		Provider: locationClient,
		TTL:      cfg.Replan.LocationCacheTTL,
		Logger:   logger,
	})

	return &externalClients{
		Optimizer: optimizerClient,
		Matrix:    matrixClient,
		Locations: locationCache,
		Guard:     dispatchredis.NewRunGuard(deps.RedisClient),
	}, nil
}

// NewServices wires repositories, external adapters, and the planning services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, fmt.Errorf("service deps and config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observability := buildObservability(logger, deps.Config.Observability)

	coreCfg, err := deps.Config.Replan.ToCore()
	if err != nil {
		return ServiceContainer{}, err
	}

	repos := buildRepositories(deps.DB)
	clients, err := buildExternalClients(deps, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	availability := service.NewAvailabilityService(coreCfg.BusinessLocation, logger)
	eligibility := service.NewEligibilityService(repos.Equipment, logger)
	travel := service.NewTravelTimeService(service.TravelTimeServiceOptions{
		Store:    repos.TravelCache,
		Provider: clients.Matrix,
		Config:   coreCfg,
		Logger:   logger,
		Metrics:  sinkOrNil(observability.MetricsSink),
	})
	payloads := service.NewPayloadBuilder(service.PayloadBuilderOptions{
		Travel:       travel,
		Availability: availability,
		Config:       coreCfg,
		Logger:       logger,
	})
	results := service.NewResultsProcessor(logger)

	replan := service.NewReplanService(service.ReplanServiceOptions{
		Technicians:  repos.Technicians,
		Jobs:         repos.Jobs,
		Equipment:    repos.Equipment,
		Optimizer:    clients.Optimizer,
		Locations:    clients.Locations,
		Guard:        clients.Guard,
		Availability: availability,
		Eligibility:  eligibility,
		Payloads:     payloads,
		Results:      results,
		Config:       coreCfg,
		Logger:       logger,
		Metrics:      sinkOrNil(observability.MetricsSink),
	})

	return ServiceContainer{
		Replan:        replan,
		Observability: observability,
	}, nil
}

// sinkOrNil converts a possibly nil *statsd.Client into a nil interface so
// downstream nil checks behave.
func sinkOrNil(client *statsd.Client) statsd.Sink {
	if client == nil {
		return nil
	}
	return client
}
