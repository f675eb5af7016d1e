package crossvalidation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/verification/models"
)

func TestNewHTTPRegistry_Validation(t *testing.T) {
	_, err := NewHTTPRegistry("", "http://x")
	assert.Error(t, err)
	_, err = NewHTTPRegistry("population", "ftp://x")
	assert.Error(t, err)
}

func TestHTTPRegistry_Validate(t *testing.T) {
	var received Subject
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isValid":true,"confidence":0.93,"reference":"pop-1"}`))
	}))
	defer srv.Close()

	reg, err := NewHTTPRegistry(models.RegistryPopulation, srv.URL, WithAPIKey("secret"))
	require.NoError(t, err)

	resp, err := reg.Validate(context.Background(), Subject{VerificationCode: "ABCDEF123456", DocumentType: models.DocumentPassport})
	require.NoError(t, err)
	assert.True(t, resp.IsValid)
	assert.InDelta(t, 0.93, resp.Confidence, 1e-9)
	assert.Equal(t, "ABCDEF123456", received.VerificationCode)
}

func TestHTTPRegistry_ErrorCategories(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		category ErrorCategory
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrorAuthentication},
		{"not found", http.StatusNotFound, "", ErrorNotFound},
		{"throttled", http.StatusTooManyRequests, "", ErrorRateLimited},
		{"outage", http.StatusServiceUnavailable, "", ErrorOutage},
		{"bad request", http.StatusBadRequest, "", ErrorBadData},
		{"malformed body", http.StatusOK, "{", ErrorBadData},
		{"confidence out of range", http.StatusOK, `{"isValid":true,"confidence":1.5}`, ErrorBadData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			reg, err := NewHTTPRegistry("biometric", srv.URL)
			require.NoError(t, err)
			_, err = reg.Validate(context.Background(), Subject{})
			require.Error(t, err)
			assert.Equal(t, tc.category, CategoryOf(err))
		})
	}
}

func TestHTTPRegistry_DeadlineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	reg, err := NewHTTPRegistry("biometric", srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = reg.Validate(ctx, Subject{})
	require.Error(t, err)
	assert.Equal(t, ErrorTimeout, CategoryOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
