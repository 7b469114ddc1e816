package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BetterStackEnabled {
		t.Fatalf("expected BetterStackEnabled=true")
	}
	if cfg.BetterStackEndpoint != "s1765114.eu-fsn-3.betterstackdata.com" {
		t.Fatalf("unexpected BetterStackEndpoint: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackToken != "token-123" {
		t.Fatalf("unexpected BetterStackToken")
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "team-balancer-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "team-balancer-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_CheckinConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("CHECKIN_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CheckinEnabled {
			t.Fatalf("expected CheckinEnabled=false by default")
		}
		if cfg.CheckinTimeout != 10*time.Second {
			t.Fatalf("unexpected default checkin timeout: %s", cfg.CheckinTimeout)
		}
		if cfg.CheckinMaxRetries != 2 {
			t.Fatalf("unexpected default checkin max retries: %d", cfg.CheckinMaxRetries)
		}
		if !cfg.CheckinCircuitEnabled {
			t.Fatalf("expected checkin circuit enabled by default")
		}
		if cfg.CheckinCircuitFailureCount != 5 {
			t.Fatalf("unexpected default circuit failure count: %d", cfg.CheckinCircuitFailureCount)
		}
	})

	t.Run("enabled requires base url", func(t *testing.T) {
		t.Setenv("CHECKIN_ENABLED", "true")
		t.Setenv("CHECKIN_BASE_URL", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when CHECKIN_ENABLED=true without CHECKIN_BASE_URL")
		}
	})

	t.Run("enabled with valid values", func(t *testing.T) {
		t.Setenv("CHECKIN_ENABLED", "true")
		t.Setenv("CHECKIN_BASE_URL", "https://checkin.internal.example.com")
		t.Setenv("CHECKIN_TOKEN", "checkin-token")
		t.Setenv("CHECKIN_TIMEOUT", "5s")
		t.Setenv("CHECKIN_MAX_RETRIES", "3")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CheckinEnabled {
			t.Fatalf("expected CheckinEnabled=true")
		}
		if cfg.CheckinBaseURL != "https://checkin.internal.example.com" {
			t.Fatalf("unexpected checkin base url: %q", cfg.CheckinBaseURL)
		}
		if cfg.CheckinToken != "checkin-token" {
			t.Fatalf("unexpected checkin token: %q", cfg.CheckinToken)
		}
		if cfg.CheckinTimeout != 5*time.Second {
			t.Fatalf("unexpected checkin timeout: %s", cfg.CheckinTimeout)
		}
		if cfg.CheckinMaxRetries != 3 {
			t.Fatalf("unexpected checkin max retries: %d", cfg.CheckinMaxRetries)
		}
	})
}

func TestLoad_SolverConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SOLVER_TIME_BUDGET", "")
		t.Setenv("SOLVER_MAX_TIME_BUDGET", "")
		t.Setenv("SOLVER_RESTARTS", "")
		t.Setenv("SOLVER_WORKERS", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SolverTimeBudget != 10*time.Second {
			t.Fatalf("unexpected default solver time budget: %s", cfg.SolverTimeBudget)
		}
		if cfg.SolverMaxTimeBudget != 2*time.Minute {
			t.Fatalf("unexpected default solver max time budget: %s", cfg.SolverMaxTimeBudget)
		}
		if cfg.SolverRestarts != 64 {
			t.Fatalf("unexpected default solver restarts: %d", cfg.SolverRestarts)
		}
		if cfg.SolverWorkers != 8 {
			t.Fatalf("unexpected default solver workers: %d", cfg.SolverWorkers)
		}
		if cfg.SolverSeed != 42 {
			t.Fatalf("unexpected default solver seed: %d", cfg.SolverSeed)
		}
	})

	t.Run("max budget below budget", func(t *testing.T) {
		t.Setenv("SOLVER_TIME_BUDGET", "30s")
		t.Setenv("SOLVER_MAX_TIME_BUDGET", "10s")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when SOLVER_MAX_TIME_BUDGET < SOLVER_TIME_BUDGET")
		}
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("SOLVER_TIME_BUDGET", "5s")
		t.Setenv("SOLVER_MAX_TIME_BUDGET", "40s")
		t.Setenv("SOLVER_RESTARTS", "16")
		t.Setenv("SOLVER_WORKERS", "4")
		t.Setenv("SOLVER_SEED", "1337")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SolverTimeBudget != 5*time.Second {
			t.Fatalf("unexpected solver time budget: %s", cfg.SolverTimeBudget)
		}
		if cfg.SolverMaxTimeBudget != 40*time.Second {
			t.Fatalf("unexpected solver max time budget: %s", cfg.SolverMaxTimeBudget)
		}
		if cfg.SolverRestarts != 16 {
			t.Fatalf("unexpected solver restarts: %d", cfg.SolverRestarts)
		}
		if cfg.SolverWorkers != 4 {
			t.Fatalf("unexpected solver workers: %d", cfg.SolverWorkers)
		}
		if cfg.SolverSeed != 1337 {
			t.Fatalf("unexpected solver seed: %d", cfg.SolverSeed)
		}
	})

	t.Run("invalid workers", func(t *testing.T) {
		t.Setenv("SOLVER_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SOLVER_WORKERS=0")
		}
	})
}

func TestLoad_AdminAPITokenTrimmed(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ADMIN_API_TOKEN", "  admin-secret  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AdminAPIToken != "admin-secret" {
		t.Fatalf("unexpected admin api token: %q", cfg.AdminAPIToken)
	}
}
