package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"docverify/internal/alerting"
	"docverify/internal/apikey"
	apikeyhandler "docverify/internal/apikey/handler"
	jwttoken "docverify/internal/jwt_token"
	"docverify/internal/platform/config"
	"docverify/internal/platform/kafka"
	"docverify/internal/platform/postgres"
	"docverify/internal/platform/redis"
	rlmetrics "docverify/internal/ratelimit/metrics"
	"docverify/internal/ratelimit/store/bucket"
	httptransport "docverify/internal/transport/http"
	"docverify/internal/verification/codegen"
	"docverify/internal/verification/crossvalidation"
	"docverify/internal/verification/fraud"
	"docverify/internal/verification/handler"
	"docverify/internal/verification/history"
	"docverify/internal/verification/metrics"
	"docverify/internal/verification/models"
	"docverify/internal/verification/ports"
	"docverify/internal/verification/service"
	"docverify/internal/verification/session"
	"docverify/internal/verification/store/memory"
	pgstore "docverify/internal/verification/store/postgres"
	redisstore "docverify/internal/verification/store/redis"
	"docverify/internal/worker"
	"docverify/pkg/platform/circuit"
)

// infra holds the optional external connections. A nil field means the
// in-memory fallback is used for that concern.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kafka.Producer
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			in.Close()
			return nil, err
		}
		log.InfoContext(ctx, "postgres connected")
	} else {
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.redis = rc
	if rc != nil {
		log.InfoContext(ctx, "redis connected")
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.kafka = producer
	if producer != nil {
		if err := producer.EnsureTopic(ctx); err != nil {
			in.Close()
			return nil, err
		}
		log.InfoContext(ctx, "kafka alert sink enabled", "topic", producer.Topic())
	}
	return in, nil
}

func (in *infra) healthChecks() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Health
	}
	return checks
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

type stores struct {
	records  ports.RecordStore
	history  ports.HistoryStore
	sessions ports.SessionStore
	apiKeys  ports.APIKeyStore
	buckets  ports.RateLimitStore
}

// selectStores prefers Postgres for durable state and Redis for sessions and
// rate-limit windows. Redis windows degrade to in-memory while Redis is down.
func selectStores(in *infra, log *slog.Logger) (stores, error) {
	s := stores{
		records:  memory.NewRecordStore(),
		history:  memory.NewHistoryStore(),
		sessions: memory.NewSessionStore(),
		apiKeys:  memory.NewAPIKeyStore(),
		buckets:  bucket.NewInMemoryBucketStore(),
	}
	if in.db != nil {
		s.records = pgstore.NewRecordStore(in.db)
		s.history = pgstore.NewHistoryStore(in.db)
		s.sessions = pgstore.NewSessionStore(in.db)
		s.apiKeys = pgstore.NewAPIKeyStore(in.db)
	}
	if in.redis != nil {
		s.sessions = redisstore.NewSessionStore(in.redis.Client)
		buckets, err := bucket.NewFallbackBucketStore(bucket.NewRedisBucketStore(in.redis.Client),
			bucket.WithFallbackLogger(log))
		if err != nil {
			return stores{}, err
		}
		s.buckets = buckets
	}
	return s, nil
}

type app struct {
	verificationHandler *handler.Handler
	apiKeyHandler       *apikeyhandler.Handler
	officerAuth         *jwttoken.JWTServiceAdapter
	alerts              *alerting.Dispatcher
	scheduler           *worker.Scheduler
}

func buildApp(cfg config.Config, log *slog.Logger, reg prometheus.Registerer, in *infra) (*app, error) {
	st, err := selectStores(in, log)
	if err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}
	vm := metrics.NewWithRegistry(reg)

	sinks := []alerting.Sink{alerting.NewLogSink(log)}
	if in.kafka != nil {
		sinks = append(sinks, alerting.NewKafkaSink(in.kafka))
	}
	alerts, err := alerting.NewDispatcher(sinks,
		alerting.WithLogger(log),
		alerting.WithMetrics(alerting.NewMetricsWithRegistry(reg)),
		alerting.WithBufferSize(cfg.Limits.AlertBuffer),
	)
	if err != nil {
		return nil, fmt.Errorf("alert dispatcher: %w", err)
	}

	sessions, err := session.New(st.sessions, st.buckets,
		session.WithLogger(log),
		session.WithMetrics(rlmetrics.NewWithRegistry(reg)),
		session.WithLimits(cfg.Limits.IPPerHour, cfg.Limits.SessionMax),
		session.WithIdleTimeout(cfg.Limits.SessionIdleTimeout),
		session.WithSweepHook(vm.AddSessionsExpired),
	)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	policy := fraudPolicy(cfg)
	assessor, err := fraud.NewAssessor(st.history,
		fraud.WithLogger(log),
		fraud.WithMetrics(vm),
		fraud.WithPolicy(policy),
		fraud.WithScorer(fraud.NewRuleBasedScorer()),
	)
	if err != nil {
		return nil, fmt.Errorf("fraud assessor: %w", err)
	}
	sweeper, err := fraud.NewSweeper(st.history, alerts, policy, log)
	if err != nil {
		return nil, fmt.Errorf("fraud sweeper: %w", err)
	}

	reporter := history.NewLogReporter(log)
	historyLogger, err := history.New(st.history,
		history.WithLogger(log),
		history.WithMetrics(vm),
		history.WithErrorReporter(reporter),
	)
	if err != nil {
		return nil, fmt.Errorf("history logger: %w", err)
	}

	generator, err := codegen.NewGenerator([]byte(cfg.Security.SecretKey), cfg.Security.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}

	keys, err := apikey.New(st.apiKeys, apikey.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("api key service: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(vm),
		service.WithAPIKeys(keys),
		service.WithAlerts(alerts),
		service.WithErrorReporter(reporter),
		service.WithBatchMax(cfg.Limits.BatchMax),
		service.WithHistoryLimit(cfg.Limits.HistoryInResult),
		service.WithRequestTimeout(cfg.Server.RequestTimeout),
	}
	validator, err := crossValidator(cfg.Registries, log, vm)
	if err != nil {
		return nil, err
	}
	if validator != nil {
		opts = append(opts, service.WithCrossValidator(validator))
	}
	svc, err := service.New(st.records, sessions, assessor, historyLogger, generator, opts...)
	if err != nil {
		return nil, fmt.Errorf("verification service: %w", err)
	}

	if cfg.Security.JWTSigningKey == "" {
		log.Warn("JWT_SIGNING_KEY not set, officer routes will reject every request")
	}
	jwtService := jwttoken.NewJWTService(cfg.Security.JWTSigningKey, cfg.Security.JWTIssuer, cfg.Security.JWTAudience)

	scheduler := worker.New(worker.WithLogger(log))
	if err := scheduler.Register("session_sweep", cfg.Workers.SessionSweepInterval, func(ctx context.Context, now time.Time) error {
		_, err := sessions.Sweep(ctx, now)
		return err
	}); err != nil {
		return nil, err
	}
	if err := scheduler.Register("fraud_sweep", cfg.Workers.FraudSweepInterval, func(ctx context.Context, now time.Time) error {
		_, err := sweeper.Sweep(ctx, now)
		return err
	}); err != nil {
		return nil, err
	}
	if pruner, ok := st.buckets.(bucket.Pruner); ok {
		if err := scheduler.Register("ratelimit_prune", cfg.Workers.RateLimitPruneInterval, func(ctx context.Context, _ time.Time) error {
			n, err := pruner.Prune(ctx)
			if n > 0 {
				log.DebugContext(ctx, "pruned empty rate limit windows", "count", n)
			}
			return err
		}); err != nil {
			return nil, err
		}
	}

	return &app{
		verificationHandler: handler.New(svc, log),
		apiKeyHandler:       apikeyhandler.New(keys, log),
		officerAuth:         jwttoken.NewJWTServiceAdapter(jwtService),
		alerts:              alerts,
		scheduler:           scheduler,
	}, nil
}

func fraudPolicy(cfg config.Config) fraud.Policy {
	p := fraud.DefaultPolicy()
	p.IPThreshold = cfg.Limits.IPPerHour
	p.SessionMax = cfg.Limits.SessionMax
	p.HighRiskCountries = cfg.Fraud.HighRiskCountries
	p.AllowedCountries = cfg.Fraud.AllowedCountries
	p.RecordCountThreshold = cfg.Fraud.RecordCountThreshold
	p.RapidWindow = cfg.Fraud.RapidWindow
	p.PatternConfidenceMin = cfg.Fraud.PatternConfidenceMin
	p.SweepWindow = cfg.Fraud.SweepWindow
	p.DistinctIPThreshold = cfg.Fraud.DistinctIPThreshold
	p.FailureRatioThreshold = cfg.Fraud.FailureRatioThreshold
	p.MinAttemptsForRatio = cfg.Fraud.MinAttemptsForRatio
	return p
}

// crossValidator returns nil when no registry URL is configured.
func crossValidator(cfg config.Registries, log *slog.Logger, vm *metrics.Metrics) (*crossvalidation.Orchestrator, error) {
	endpoints := []struct{ name, url string }{
		{models.RegistryPopulation, cfg.PopulationURL},
		{models.RegistryBiometric, cfg.BiometricURL},
		{models.RegistryDocumentAuthenticity, cfg.DocumentAuthenticityURL},
		{models.RegistryPKDCertificateChain, cfg.PKDURL},
	}
	client := &http.Client{Timeout: 2 * cfg.Timeout}
	var registries []crossvalidation.Registry
	for _, e := range endpoints {
		if e.url == "" {
			continue
		}
		r, err := crossvalidation.NewHTTPRegistry(e.name, e.url, crossvalidation.WithHTTPClient(client))
		if err != nil {
			return nil, err
		}
		registries = append(registries, r)
	}
	if len(registries) == 0 {
		log.Warn("no cross-validation registries configured")
		return nil, nil
	}
	return crossvalidation.New(registries,
		crossvalidation.WithLogger(log),
		crossvalidation.WithMetrics(vm),
		crossvalidation.WithTimeout(cfg.Timeout),
		crossvalidation.WithBreakerOptions(
			circuit.WithFailureThreshold(cfg.FailureThreshold),
			circuit.WithSuccessThreshold(cfg.SuccessThreshold),
		),
	)
}
