package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-balancer/external/checkin"
	"github.com/riskibarqy/team-balancer/internal/config"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
	"github.com/riskibarqy/team-balancer/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/team-balancer/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/team-balancer/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/team-balancer/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/team-balancer/internal/platform/cache"
	idgen "github.com/riskibarqy/team-balancer/internal/platform/id"
	"github.com/riskibarqy/team-balancer/internal/platform/logging"
	"github.com/riskibarqy/team-balancer/internal/platform/resilience"
	"github.com/riskibarqy/team-balancer/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

// NewHTTPServer wires repositories, services and the HTTP router into a
// ready-to-run server. The returned cleanup closes resources the wiring
// opened, currently the database pool.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(context.Context) error { return nil }

	var runRepo teamrun.Repository
	if cfg.DBURL != "" {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		cleanup = func(context.Context) error { return db.Close() }
		runRepo = postgres.NewTeamRunRepository(db)
		logger.Info("team run storage ready", "driver", "postgres", "database", dbNameFromURL(cfg.DBURL))
	} else {
		runRepo = memory.NewTeamRunRepository()
		logger.Info("team run storage ready", "driver", "memory", "reason", "DB_URL empty")
	}

	if cfg.CacheEnabled {
		runRepo = cache.NewTeamRunRepository(runRepo, basecache.NewStore(cfg.CacheTTL))
	}

	var provider usecase.RosterProvider
	if cfg.CheckinEnabled {
		provider = checkin.NewClient(checkin.ClientConfig{
			BaseURL:    cfg.CheckinBaseURL,
			Token:      cfg.CheckinToken,
			Timeout:    cfg.CheckinTimeout,
			MaxRetries: cfg.CheckinMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.CheckinCircuitEnabled,
				FailureThreshold: cfg.CheckinCircuitFailureCount,
				OpenTimeout:      cfg.CheckinCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.CheckinCircuitHalfOpenMaxReq,
			},
		})
	} else {
		provider = memory.NewRosterProvider(memory.SeedRosterEntries())
		logger.Info("checkin client disabled; inline rosters fall back to seed entries")
	}

	teamRunSvc := usecase.NewTeamRunService(
		runRepo,
		provider,
		idgen.NewRandomGenerator(),
		usecase.SolverSettings{
			TimeBudget:    cfg.SolverTimeBudget,
			MaxTimeBudget: cfg.SolverMaxTimeBudget,
			Restarts:      cfg.SolverRestarts,
			Workers:       cfg.SolverWorkers,
			Seed:          cfg.SolverSeed,
		},
	)
	rosterSvc := usecase.NewRosterService()

	handler := httpapi.NewHandler(teamRunSvc, rosterSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.AdminAPIToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.ConnectContext(ctx, "postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
