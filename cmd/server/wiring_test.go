package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/apikey"
	jwttoken "docverify/internal/jwt_token"
	"docverify/internal/platform/config"
	httptransport "docverify/internal/transport/http"
	"docverify/internal/verification/handler"
	"docverify/internal/verification/models"
	"docverify/pkg/testutil"
)

func testConfig() config.Config {
	return config.Config{
		Environment: config.EnvDevelopment,
		Server:      config.Server{RequestTimeout: 5 * time.Second},
		Security: config.Security{
			SecretKey:     "0123456789abcdef0123456789abcdef",
			JWTSigningKey: "test-signing-key",
			JWTIssuer:     "docverify",
			JWTAudience:   "docverify-officers",
			BaseURL:       "https://verify.example.gov",
		},
		Limits: config.Limits{
			IPPerHour:          100,
			SessionMax:         50,
			SessionIdleTimeout: time.Hour,
			BatchMax:           10,
			AlertBuffer:        16,
			HistoryInResult:    5,
		},
		Fraud: config.Fraud{
			RecordCountThreshold: 1000,
			RapidWindow:          time.Minute,
			PatternConfidenceMin: 0.75,
			SweepWindow:          15 * time.Minute,
			DistinctIPThreshold:  10,
		},
		Registries: config.Registries{Timeout: time.Second, FailureThreshold: 5, SuccessThreshold: 2},
		Workers: config.Workers{
			SessionSweepInterval:   time.Minute,
			FraudSweepInterval:     time.Minute,
			RateLimitPruneInterval: time.Minute,
		},
	}
}

func TestInMemoryStack(t *testing.T) {
	cfg := testConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	in := &infra{}

	app, err := buildApp(cfg, log, reg, in)
	require.NoError(t, err)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Verification: app.verificationHandler,
		APIKeys:      app.apiKeyHandler,
		OfficerAuth:  app.officerAuth,
		Gatherer:     reg,
		HealthChecks: in.healthChecks(),
	})

	token, err := jwttoken.NewJWTService(cfg.Security.JWTSigningKey, cfg.Security.JWTIssuer, cfg.Security.JWTAudience).
		GenerateOfficerToken("officer-7", "Central Registry", time.Hour)
	require.NoError(t, err)
	officer := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", "registry-desk/1.0")
		return req
	}

	testutil.Given(t, "an officer registers a passport", func(t *testing.T) {
		rr := testutil.DoRequest(router, officer(testutil.NewJSONRequest(t, http.MethodPost, "/v1/records", handler.RegisterRequest{
			DocumentType:   "passport",
			DocumentNumber: "p1234567",
			DocumentData:   []byte(`{"holder":"Alice Smith","nationality":"GB"}`),
			IssuingOffice:  "Central Registry",
			IssuingOfficer: "Bob Jones",
			Hashtags:       []string{"renewal", " renewal ", ""},
		})))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		doc := testutil.UnmarshalResponse[models.RegisteredDocument](t, rr)
		require.Len(t, doc.VerificationCode, 12)

		testutil.When(t, "anyone verifies the printed code", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodGet, "/verify/"+doc.VerificationCode, nil)
			req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the document is reported valid", func(t *testing.T) {
				require.Equal(t, http.StatusOK, rr.Code)
				res := testutil.UnmarshalResponse[models.VerificationResult](t, rr)
				assert.True(t, res.IsValid, res.Message)
				assert.Equal(t, doc.VerificationCode, res.VerificationCode)
				assert.NotEmpty(t, res.SessionID)
			})
		})

		testutil.When(t, "an api client verifies with an issued key", func(t *testing.T) {
			rr := testutil.DoRequest(router, officer(testutil.NewJSONRequest(t, http.MethodPost, "/v1/api-keys", map[string]any{
				"name":         "border-agency",
				"monthlyLimit": 5,
			})))
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			issued := testutil.UnmarshalResponse[apikey.Issued](t, rr)

			req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/verifications/api", handler.APIRequest{
				VerificationCode: doc.VerificationCode,
				Anonymize:        true,
			})
			req.Header.Set(handler.HeaderAPIKey, issued.Token)
			req.Header.Set("User-Agent", "border-agency-client/2.1")
			rr = testutil.DoRequest(router, req)

			testutil.Then(t, "the record comes back anonymised", func(t *testing.T) {
				require.Equal(t, http.StatusOK, rr.Code)
				res := testutil.UnmarshalResponse[models.VerificationResult](t, rr)
				assert.True(t, res.IsValid, res.Message)
				require.NotNil(t, res.Record)
				assert.Nil(t, res.Record.DocumentData)
			})
		})

		testutil.When(t, "the officer revokes it", func(t *testing.T) {
			rr := testutil.DoRequest(router, officer(testutil.NewJSONRequest(t, http.MethodPost,
				"/v1/records/"+doc.VerificationCode+"/revoke", handler.RevokeRequest{Reason: "reported stolen"})))
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			testutil.Then(t, "verification reports the revocation", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/verify?code="+doc.VerificationCode, nil))
				res := testutil.UnmarshalResponse[models.VerificationResult](t, rr)
				assert.False(t, res.IsValid)
				assert.Equal(t, models.ErrorDocumentRevoked, res.ErrorCode)
			})
		})
	})

	testutil.Given(t, "no officer token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/api-keys", map[string]any{"name": "x"}))

		testutil.Then(t, "administration is refused", func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	})

	testutil.Given(t, "no external dependencies", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))

		testutil.Then(t, "the service reports healthy", func(t *testing.T) {
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	})
}

func TestIPLimitIgnoresBodyAddress(t *testing.T) {
	cfg := testConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	app, err := buildApp(cfg, log, reg, &infra{})
	require.NoError(t, err)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Verification: app.verificationHandler,
		APIKeys:      app.apiKeyHandler,
		OfficerAuth:  app.officerAuth,
		Gatherer:     reg,
	})

	testutil.Given(t, "one client rotating the ipAddress it claims in the body", func(t *testing.T) {
		const attempts = 150
		limited := 0
		for i := range attempts {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/verifications/manual", handler.ManualRequest{
				VerificationCode: "ABCDEF123456",
				ClientFields:     handler.ClientFields{IPAddress: fmt.Sprintf("198.51.%d.%d", i/250, i%250+1)},
			})
			req.RemoteAddr = "192.0.2.44:40000"
			rr := testutil.DoRequest(router, req)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			if testutil.UnmarshalResponse[models.VerificationResult](t, rr).ErrorCode == models.ErrorRateLimitExceeded {
				limited++
			}
		}

		testutil.Then(t, "the observed peer address is what gets limited", func(t *testing.T) {
			assert.Equal(t, attempts-cfg.Limits.IPPerHour, limited)
		})

		testutil.And(t, "a different peer is still served", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/verifications/manual", handler.ManualRequest{
				VerificationCode: "ABCDEF123456",
			})
			req.RemoteAddr = "192.0.2.45:40000"
			rr := testutil.DoRequest(router, req)
			res := testutil.UnmarshalResponse[models.VerificationResult](t, rr)
			assert.Equal(t, models.ErrorDocumentNotFound, res.ErrorCode)
		})
	})
}

func TestBuildApp_RegistersWorkers(t *testing.T) {
	cfg := testConfig()
	cfg.Registries.PopulationURL = "http://registry.internal/population"
	cfg.Registries.PKDURL = "ftp://registry.internal/pkd"

	_, err := buildApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry(), &infra{})
	require.Error(t, err, "a non-http registry url must fail startup")

	cfg.Registries.PKDURL = "http://registry.internal/pkd"
	app, err := buildApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry(), &infra{})
	require.NoError(t, err)
	assert.NotNil(t, app.alerts)
	assert.Equal(t, []string{"session_sweep", "fraud_sweep", "ratelimit_prune"}, app.scheduler.Jobs())
}

func TestFraudPolicy_FromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Fraud.HighRiskCountries = []string{"XX"}
	cfg.Limits.IPPerHour = 40

	p := fraudPolicy(cfg)
	assert.Equal(t, []string{"XX"}, p.HighRiskCountries)
	assert.Equal(t, 40, p.IPThreshold)
	assert.Equal(t, 15*time.Minute, p.SweepWindow)
}
