// Package session attaches verification attempts to client sessions and
// enforces the per-IP and per-session verification caps.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	rlmetrics "docverify/internal/ratelimit/metrics"
	rlmodels "docverify/internal/ratelimit/models"
	"docverify/internal/verification/models"
	"docverify/internal/verification/ports"
	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/privacy"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

const (
	DefaultIPLimit     = 100
	DefaultIPWindow    = time.Hour
	DefaultSessionMax  = 50
	DefaultIdleTimeout = 24 * time.Hour
)

// RateLimitDecision is the outcome of CheckRateLimit. Scope names the cap
// that denied the attempt.
type RateLimitDecision struct {
	Allowed    bool
	Scope      string
	Limit      int
	Remaining  int
	RetryAfter int
	ResetAt    time.Time
}

type Manager struct {
	sessions    ports.SessionStore
	buckets     ports.RateLimitStore
	logger      *slog.Logger
	metrics     *rlmetrics.Metrics
	onSweep     func(n int)
	ipLimit     int
	ipWindow    time.Duration
	sessionMax  int
	idleTimeout time.Duration
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithMetrics(metrics *rlmetrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithLimits overrides the per-IP hourly cap and the per-session lifetime cap.
// Non-positive values keep the defaults.
func WithLimits(ipPerHour, sessionMax int) Option {
	return func(m *Manager) {
		if ipPerHour > 0 {
			m.ipLimit = ipPerHour
		}
		if sessionMax > 0 {
			m.sessionMax = sessionMax
		}
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// WithSweepHook is called with the number of sessions expired by each sweep.
func WithSweepHook(fn func(n int)) Option {
	return func(m *Manager) {
		m.onSweep = fn
	}
}

func New(sessions ports.SessionStore, buckets ports.RateLimitStore, opts ...Option) (*Manager, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if buckets == nil {
		return nil, errors.New("rate limit store is required")
	}
	m := &Manager{
		sessions:    sessions,
		buckets:     buckets,
		ipLimit:     DefaultIPLimit,
		ipWindow:    DefaultIPWindow,
		sessionMax:  DefaultSessionMax,
		idleTimeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m, nil
}

// Attach resolves the session named by meta.SessionID, touching it, or mints
// a new one. Unknown, malformed and expired ids all yield a fresh session.
func (m *Manager) Attach(ctx context.Context, meta models.RequestMeta) (*models.VerificationSession, error) {
	now := requestcontext.Now(ctx)

	if meta.SessionID != "" {
		sess, err := m.resume(ctx, meta.SessionID, now)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return sess, nil
		}
	}

	sess := &models.VerificationSession{
		SessionID:    id.NewSessionID(),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		UserID:       meta.UserID,
		Status:       models.SessionActive,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}
	m.logger.DebugContext(ctx, "verification session created",
		"session_id", sess.SessionID.String(),
		"ip", privacy.AnonymizeIP(meta.IPAddress),
	)
	return sess, nil
}

// resume returns nil, nil when the id cannot be resumed.
func (m *Manager) resume(ctx context.Context, raw string, now time.Time) (*models.VerificationSession, error) {
	sessionID, err := id.ParseSessionID(raw)
	if err != nil {
		return nil, nil
	}
	sess, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if !sess.IsActive() || now.Sub(sess.LastActivity) > m.idleTimeout {
		return nil, nil
	}
	if err := m.sessions.Touch(ctx, sessionID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to touch session")
	}
	if now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
	return sess, nil
}

// CheckRateLimit consumes one slot from the per-IP sliding window and then
// reserves one verification on the session. The reservation is a single
// conditional increment in the store, so concurrent attempts on one session
// never overshoot the cap. Attempts denied by either cap are not counted
// against the session.
func (m *Manager) CheckRateLimit(ctx context.Context, ip string, sess *models.VerificationSession) (*RateLimitDecision, error) {
	now := requestcontext.Now(ctx)

	m.metrics.IncrementChecks(rlmetrics.ScopeIP)
	res, err := m.buckets.Allow(ctx, rlmodels.VerificationIPKey(ip), m.ipLimit, m.ipWindow)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ip rate limit")
	}
	decision := &RateLimitDecision{
		Allowed:   res.Allowed,
		Scope:     rlmetrics.ScopeIP,
		Limit:     res.Limit,
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt,
	}
	if !res.Allowed {
		decision.RetryAfter = res.RetryAfter
		if decision.RetryAfter == 0 {
			decision.RetryAfter = rlmodels.RetryAfterSeconds(now, res.ResetAt)
		}
		m.metrics.IncrementRejected(rlmetrics.ScopeIP)
		m.logDenied(ctx, rlmetrics.ScopeIP, ip, sess)
		return decision, nil
	}
	if sess == nil {
		return decision, nil
	}

	m.metrics.IncrementChecks(rlmetrics.ScopeSession)
	n, err := m.sessions.IncrementVerifications(ctx, sess.SessionID, m.sessionMax, now)
	switch {
	case errors.Is(err, sentinel.ErrLimitExceeded):
		m.metrics.IncrementRejected(rlmetrics.ScopeSession)
		m.logDenied(ctx, rlmetrics.ScopeSession, ip, sess)
		return &RateLimitDecision{
			Allowed: false,
			Scope:   rlmetrics.ScopeSession,
			Limit:   m.sessionMax,
		}, nil
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve session verification")
	}
	sess.CurrentVerifications = n
	if now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
	return decision, nil
}

// Remaining reports how many verifications sess may still reserve.
func (m *Manager) Remaining(sess *models.VerificationSession) int {
	if sess == nil {
		return m.sessionMax
	}
	return max(m.sessionMax-sess.CurrentVerifications, 0)
}

func (m *Manager) logDenied(ctx context.Context, scope, ip string, sess *models.VerificationSession) {
	attrs := []any{"scope", scope, "ip", privacy.AnonymizeIP(ip)}
	if sess != nil {
		attrs = append(attrs, "session_id", sess.SessionID.String())
	}
	audit.LogAudit(ctx, m.logger, audit.EventRateLimitExceeded, attrs...)
}

// Sweep expires sessions idle for longer than the idle timeout.
func (m *Manager) Sweep(ctx context.Context, now time.Time) (int, error) {
	n, err := m.sessions.ExpireIdle(ctx, now.Add(-m.idleTimeout))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to expire idle sessions")
	}
	if n > 0 {
		audit.LogAudit(ctx, m.logger, audit.EventSessionsExpired, "count", n)
	}
	if m.onSweep != nil {
		m.onSweep(n)
	}
	return n, nil
}

// Limits reports the active caps.
func (m *Manager) Limits() (ipPerHour, sessionMax int) {
	return m.ipLimit, m.sessionMax
}
