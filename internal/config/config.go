package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/team-balancer/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                       string
	ServiceName                  string
	ServiceVersion               string
	HTTPAddr                     string
	DBURL                        string
	DBDisablePreparedBinary      bool
	CacheEnabled                 bool
	CacheTTL                     time.Duration
	CORSAllowedOrigins           []string
	ReadTimeout                  time.Duration
	WriteTimeout                 time.Duration
	PprofEnabled                 bool
	PprofAddr                    string
	SwaggerEnabled               bool
	AdminAPIToken                string
	UptraceEnabled               bool
	UptraceDSN                   string
	UptraceLogsEnabled           bool
	BetterStackEnabled           bool
	BetterStackEndpoint          string
	BetterStackToken             string
	BetterStackTimeout           time.Duration
	BetterStackMinLevel          logging.Level
	PyroscopeEnabled             bool
	PyroscopeServerAddress       string
	PyroscopeAppName             string
	PyroscopeAuthToken           string
	PyroscopeBasicAuthUser       string
	PyroscopeBasicAuthPassword   string
	PyroscopeUploadRate          time.Duration
	CheckinEnabled               bool
	CheckinBaseURL               string
	CheckinToken                 string
	CheckinTimeout               time.Duration
	CheckinMaxRetries            int
	CheckinCircuitEnabled        bool
	CheckinCircuitFailureCount   int
	CheckinCircuitOpenTimeout    time.Duration
	CheckinCircuitHalfOpenMaxReq int
	SolverTimeBudget             time.Duration
	SolverMaxTimeBudget          time.Duration
	SolverRestarts               int
	SolverWorkers                int
	SolverSeed                   int64
	LogLevel                     logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	checkinEnabled, err := strconv.ParseBool(getEnv("CHECKIN_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKIN_ENABLED: %w", err)
	}
	checkinTimeout, err := time.ParseDuration(getEnv("CHECKIN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKIN_TIMEOUT: %w", err)
	}
	if checkinTimeout <= 0 {
		return Config{}, fmt.Errorf("CHECKIN_TIMEOUT must be > 0")
	}
	checkinMaxRetries, err := getEnvAsInt("CHECKIN_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKIN_MAX_RETRIES: %w", err)
	}
	if checkinMaxRetries < 0 {
		return Config{}, fmt.Errorf("CHECKIN_MAX_RETRIES must be >= 0")
	}
	checkinCircuitEnabled, err := strconv.ParseBool(getEnv("CHECKIN_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKIN_CIRCUIT_ENABLED: %w", err)
	}
	checkinCircuitFailureCount, err := getEnvAsInt("CHECKIN_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKIN_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if checkinCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CHECKIN_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	checkinCircuitOpenTimeout, err := time.ParseDuration(getEnv("CHECKIN_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKIN_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if checkinCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CHECKIN_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	checkinCircuitHalfOpenMaxReq, err := getEnvAsInt("CHECKIN_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKIN_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if checkinCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("CHECKIN_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	checkinBaseURL := strings.TrimSpace(getEnv("CHECKIN_BASE_URL", ""))
	checkinToken := strings.TrimSpace(getEnv("CHECKIN_TOKEN", ""))
	if checkinEnabled && checkinBaseURL == "" {
		return Config{}, fmt.Errorf("CHECKIN_BASE_URL is required when CHECKIN_ENABLED=true")
	}

	solverTimeBudget, err := time.ParseDuration(getEnv("SOLVER_TIME_BUDGET", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOLVER_TIME_BUDGET: %w", err)
	}
	if solverTimeBudget <= 0 {
		return Config{}, fmt.Errorf("SOLVER_TIME_BUDGET must be > 0")
	}
	solverMaxTimeBudget, err := time.ParseDuration(getEnv("SOLVER_MAX_TIME_BUDGET", "2m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOLVER_MAX_TIME_BUDGET: %w", err)
	}
	if solverMaxTimeBudget < solverTimeBudget {
		return Config{}, fmt.Errorf("SOLVER_MAX_TIME_BUDGET must be >= SOLVER_TIME_BUDGET")
	}
	solverRestarts, err := getEnvAsInt("SOLVER_RESTARTS", 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOLVER_RESTARTS: %w", err)
	}
	if solverRestarts < 1 {
		return Config{}, fmt.Errorf("SOLVER_RESTARTS must be >= 1")
	}
	solverWorkers, err := getEnvAsInt("SOLVER_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOLVER_WORKERS: %w", err)
	}
	if solverWorkers < 1 {
		return Config{}, fmt.Errorf("SOLVER_WORKERS must be >= 1")
	}
	solverSeed, err := strconv.ParseInt(getEnv("SOLVER_SEED", "42"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOLVER_SEED: %w", err)
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "team-balancer-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                        strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:      true,
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		SwaggerEnabled:               swaggerEnabled,
		AdminAPIToken:                strings.TrimSpace(getEnv("ADMIN_API_TOKEN", "")),
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		UptraceLogsEnabled:           uptraceLogsEnabled,
		BetterStackEnabled:           betterStackEnabled,
		BetterStackEndpoint:          betterStackEndpoint,
		BetterStackToken:             strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:           betterStackTimeout,
		BetterStackMinLevel:          betterStackMinLevel,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
		CheckinEnabled:               checkinEnabled,
		CheckinBaseURL:               checkinBaseURL,
		CheckinToken:                 checkinToken,
		CheckinTimeout:               checkinTimeout,
		CheckinMaxRetries:            checkinMaxRetries,
		CheckinCircuitEnabled:        checkinCircuitEnabled,
		CheckinCircuitFailureCount:   checkinCircuitFailureCount,
		CheckinCircuitOpenTimeout:    checkinCircuitOpenTimeout,
		CheckinCircuitHalfOpenMaxReq: checkinCircuitHalfOpenMaxReq,
		SolverTimeBudget:             solverTimeBudget,
		SolverMaxTimeBudget:          solverMaxTimeBudget,
		SolverRestarts:               solverRestarts,
		SolverWorkers:                solverWorkers,
		SolverSeed:                   solverSeed,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	logLevel := parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.LogLevel = logLevel

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
