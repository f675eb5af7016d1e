// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	strutil "docverify/pkg/platform/strings"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// MinProductionSecretBytes is the minimum HMAC secret length accepted in production.
	MinProductionSecretBytes = 32
)

// Config is the full process configuration.
type Config struct {
	Environment string
	LogLevel    string

	Server     Server
	Security   Security
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Limits     Limits
	Fraud      Fraud
	Registries Registries
	Workers    Workers
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// RequestTimeout bounds one verification including registry fan-out. Zero disables it.
	RequestTimeout time.Duration
	// TrustedProxies are the peers whose X-Forwarded-For is believed.
	TrustedProxies []netip.Prefix
}

// Security holds key material and public URLs.
type Security struct {
	SecretKey     string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	BaseURL       string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers           []string
	AlertTopic        string
	Partitions        int32
	ReplicationFactor int16
}

// Limits are the rate and size ceilings enforced per request.
type Limits struct {
	IPPerHour          int
	SessionMax         int
	SessionIdleTimeout time.Duration
	BatchMax           int
	AlertBuffer        int
	HistoryInResult    int
}

// Fraud parameterises the risk assessor and the pattern sweep.
type Fraud struct {
	HighRiskCountries     []string
	AllowedCountries      []string
	PolicyFile            string
	RecordCountThreshold  int64
	RapidWindow           time.Duration
	PatternConfidenceMin  float64
	SweepWindow           time.Duration
	DistinctIPThreshold   int
	FailureRatioThreshold float64
	MinAttemptsForRatio   int
}

// Registries configures the external cross-validation endpoints. An empty
// URL disables that registry.
type Registries struct {
	Timeout                 time.Duration
	PopulationURL           string
	BiometricURL            string
	DocumentAuthenticityURL string
	PKDURL                  string
	FailureThreshold        int
	SuccessThreshold        int
}

type Workers struct {
	SessionSweepInterval   time.Duration
	FraudSweepInterval     time.Duration
	RateLimitPruneInterval time.Duration
}

// IsProduction reports whether the process runs with production rules.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// FromEnv builds the configuration from environment variables. Outside
// production a .env file in the working directory is loaded first.
func FromEnv() (Config, error) {
	env := getEnv("DOCVERIFY_ENV", EnvDevelopment)
	if !strings.EqualFold(env, EnvProduction) {
		_ = godotenv.Load()
	}

	var perr parseErrors
	cfg := Config{
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: Server{
			Addr:            getEnv("DOCVERIFY_ADDR", ":8080"),
			ReadTimeout:     perr.duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    perr.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: perr.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  perr.duration("VERIFICATION_REQUEST_TIMEOUT", 15*time.Second),
			TrustedProxies:  perr.prefixes("TRUSTED_PROXIES"),
		},
		Security: Security{
			SecretKey:     os.Getenv("VERIFICATION_SECRET_KEY"),
			JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
			JWTIssuer:     getEnv("JWT_ISSUER", "docverify"),
			JWTAudience:   getEnv("JWT_AUDIENCE", "docverify-officers"),
			BaseURL:       strings.TrimRight(getEnv("VERIFICATION_BASE_URL", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    perr.integer("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    perr.integer("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: perr.duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     perr.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: perr.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  perr.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  perr.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: perr.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           strutil.SplitList(os.Getenv("KAFKA_BROKERS")),
			AlertTopic:        getEnv("KAFKA_ALERT_TOPIC", "docverify.alerts"),
			Partitions:        int32(perr.integer("KAFKA_ALERT_PARTITIONS", 3)),
			ReplicationFactor: int16(perr.integer("KAFKA_ALERT_REPLICATION", 1)),
		},
		Limits: Limits{
			IPPerHour:          perr.integer("RATE_LIMIT_IP_PER_HOUR", 100),
			SessionMax:         perr.integer("RATE_LIMIT_SESSION_MAX", 50),
			SessionIdleTimeout: perr.duration("SESSION_IDLE_TIMEOUT", 24*time.Hour),
			BatchMax:           perr.integer("BATCH_MAX_DOCUMENTS", 50),
			AlertBuffer:        perr.integer("ALERT_BUFFER_SIZE", 256),
			HistoryInResult:    perr.integer("HISTORY_IN_RESULT", 10),
		},
		Fraud: Fraud{
			HighRiskCountries:     countryList(os.Getenv("FRAUD_HIGH_RISK_COUNTRIES")),
			AllowedCountries:      countryList(os.Getenv("FRAUD_ALLOWED_COUNTRIES")),
			PolicyFile:            os.Getenv("FRAUD_POLICY_FILE"),
			RecordCountThreshold:  int64(perr.integer("FRAUD_RECORD_COUNT_THRESHOLD", 1000)),
			RapidWindow:           perr.duration("FRAUD_RAPID_WINDOW", 60*time.Second),
			PatternConfidenceMin:  perr.float("FRAUD_PATTERN_CONFIDENCE_MIN", 0.75),
			SweepWindow:           perr.duration("FRAUD_SWEEP_WINDOW", 15*time.Minute),
			DistinctIPThreshold:   perr.integer("FRAUD_DISTINCT_IP_THRESHOLD", 10),
			FailureRatioThreshold: perr.float("FRAUD_FAILURE_RATIO_THRESHOLD", 0.5),
			MinAttemptsForRatio:   perr.integer("FRAUD_MIN_ATTEMPTS_FOR_RATIO", 20),
		},
		Registries: Registries{
			Timeout:                 perr.duration("REGISTRY_TIMEOUT", 3*time.Second),
			PopulationURL:           os.Getenv("REGISTRY_POPULATION_URL"),
			BiometricURL:            os.Getenv("REGISTRY_BIOMETRIC_URL"),
			DocumentAuthenticityURL: os.Getenv("REGISTRY_DOCUMENT_AUTHENTICITY_URL"),
			PKDURL:                  os.Getenv("REGISTRY_PKD_URL"),
			FailureThreshold:        perr.integer("REGISTRY_BREAKER_FAILURES", 5),
			SuccessThreshold:        perr.integer("REGISTRY_BREAKER_SUCCESSES", 2),
		},
		Workers: Workers{
			SessionSweepInterval:   perr.duration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			FraudSweepInterval:     perr.duration("FRAUD_SWEEP_INTERVAL", 15*time.Minute),
			RateLimitPruneInterval: perr.duration("RATELIMIT_PRUNE_INTERVAL", 10*time.Minute),
		},
	}
	if err := perr.err(); err != nil {
		return Config{}, err
	}

	if cfg.Fraud.PolicyFile != "" {
		policy, err := LoadFraudPolicy(cfg.Fraud.PolicyFile)
		if err != nil {
			return Config{}, err
		}
		policy.Apply(&cfg.Fraud)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on configuration the service must not start with.
func (c Config) Validate() error {
	var errs []error
	if c.Security.SecretKey == "" {
		errs = append(errs, errors.New("VERIFICATION_SECRET_KEY is required"))
	} else if c.IsProduction() && len(c.Security.SecretKey) < MinProductionSecretBytes {
		errs = append(errs, fmt.Errorf("VERIFICATION_SECRET_KEY must be at least %d bytes in production", MinProductionSecretBytes))
	}
	if c.Security.JWTSigningKey == "" && c.IsProduction() {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required in production"))
	}
	if c.Security.BaseURL == "" {
		errs = append(errs, errors.New("VERIFICATION_BASE_URL must not be empty"))
	}
	if c.Limits.IPPerHour <= 0 || c.Limits.SessionMax <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.Limits.BatchMax <= 0 {
		errs = append(errs, errors.New("BATCH_MAX_DOCUMENTS must be positive"))
	} else if c.Limits.SessionMax > 0 && c.Limits.BatchMax > c.Limits.SessionMax {
		errs = append(errs, fmt.Errorf("BATCH_MAX_DOCUMENTS (%d) must not exceed RATE_LIMIT_SESSION_MAX (%d)",
			c.Limits.BatchMax, c.Limits.SessionMax))
	}
	if c.Registries.Timeout <= 0 {
		errs = append(errs, errors.New("REGISTRY_TIMEOUT must be positive"))
	}
	if c.Workers.SessionSweepInterval <= 0 || c.Workers.FraudSweepInterval <= 0 {
		errs = append(errs, errors.New("worker intervals must be positive"))
	}
	if c.Fraud.PatternConfidenceMin < 0 || c.Fraud.PatternConfidenceMin > 1 {
		errs = append(errs, errors.New("FRAUD_PATTERN_CONFIDENCE_MIN must be within [0,1]"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func countryList(raw string) []string {
	return strutil.DedupeAndTrimUpper(strutil.SplitList(raw))
}

// parseErrors collects malformed values so FromEnv reports all of them at once.
type parseErrors []error

func (p *parseErrors) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*p = append(*p, fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return d
}

func (p *parseErrors) integer(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*p = append(*p, fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return n
}

func (p *parseErrors) float(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*p = append(*p, fmt.Errorf("%s: invalid number %q", key, raw))
		return def
	}
	return f
}

// prefixes reads a list of CIDRs; a bare address is taken as a single host.
func (p *parseErrors) prefixes(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range strutil.SplitList(os.Getenv(key)) {
		if prefix, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			*p = append(*p, fmt.Errorf("%s: invalid address or CIDR %q", key, raw))
			continue
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

func (p parseErrors) err() error {
	return errors.Join(p...)
}
