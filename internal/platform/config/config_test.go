package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV", "test")
	t.Setenv("VERIFICATION_SECRET_KEY", "short-dev-secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 100, cfg.Limits.IPPerHour)
	assert.Equal(t, 50, cfg.Limits.SessionMax)
	assert.Equal(t, 50, cfg.Limits.BatchMax)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, 24*time.Hour, cfg.Limits.SessionIdleTimeout)
	assert.Equal(t, 3*time.Second, cfg.Registries.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Workers.SessionSweepInterval)
	assert.Equal(t, 15*time.Minute, cfg.Workers.FraudSweepInterval)
	assert.Equal(t, 10*time.Minute, cfg.Workers.RateLimitPruneInterval)
	assert.InDelta(t, 0.75, cfg.Fraud.PatternConfidenceMin, 1e-9)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_MissingSecretFails(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV", "test")
	t.Setenv("VERIFICATION_SECRET_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VERIFICATION_SECRET_KEY is required")
}

func TestFromEnv_WeakSecretInProduction(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV", "production")
	t.Setenv("VERIFICATION_SECRET_KEY", "too-short")
	t.Setenv("JWT_SIGNING_KEY", "jwt-key")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")

	t.Setenv("VERIFICATION_SECRET_KEY", strings.Repeat("k", 32))
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_BadDuration(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV", "test")
	t.Setenv("VERIFICATION_SECRET_KEY", "dev-secret")
	t.Setenv("REGISTRY_TIMEOUT", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGISTRY_TIMEOUT")
}

func TestFromEnv_BatchLargerThanSessionCap(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV", "test")
	t.Setenv("VERIFICATION_SECRET_KEY", "dev-secret")
	t.Setenv("RATE_LIMIT_SESSION_MAX", "20")
	t.Setenv("BATCH_MAX_DOCUMENTS", "40")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed RATE_LIMIT_SESSION_MAX")
}

func TestFromEnv_TrustedProxies(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV", "test")
	t.Setenv("VERIFICATION_SECRET_KEY", "dev-secret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7, 2001:db8::/32")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.7/32"),
		netip.MustParsePrefix("2001:db8::/32"),
	}, cfg.Server.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "load-balancer")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUSTED_PROXIES")
}

func TestFromEnv_CountryListsUppercased(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV", "test")
	t.Setenv("VERIFICATION_SECRET_KEY", "dev-secret")
	t.Setenv("FRAUD_HIGH_RISK_COUNTRIES", " xx, yy ,,XX")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092,broker-a:9092, Broker-B:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"XX", "YY"}, cfg.Fraud.HighRiskCountries)
	assert.Equal(t, []string{"broker-a:9092", "Broker-B:9092"}, cfg.Kafka.Brokers)
}

func TestFraudPolicyFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
high_risk_countries: [zz]
allowed_countries: [aa, bb]
record_count_threshold: 500
`), 0o600))

	t.Setenv("DOCVERIFY_ENV", "test")
	t.Setenv("VERIFICATION_SECRET_KEY", "dev-secret")
	t.Setenv("FRAUD_HIGH_RISK_COUNTRIES", "XX")
	t.Setenv("FRAUD_POLICY_FILE", path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"ZZ"}, cfg.Fraud.HighRiskCountries)
	assert.Equal(t, []string{"AA", "BB"}, cfg.Fraud.AllowedCountries)
	assert.Equal(t, int64(500), cfg.Fraud.RecordCountThreshold)
}

func TestFraudPolicyUnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocked_everything: true\n"), 0o600))

	_, err := LoadFraudPolicy(path)
	require.Error(t, err)
}
