package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"docverify/pkg/requestcontext"

	"github.com/stretchr/testify/assert"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) { return s.claims, s.err }

func TestRequireOfficer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seenOfficer string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenOfficer = requestcontext.OfficerID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		validator  stubValidator
		wantStatus int
		wantID     string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{
			name:       "invalid token",
			header:     "Bearer bad",
			validator:  stubValidator{err: errors.New("bad token")},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			header:     "Bearer good",
			validator:  stubValidator{claims: &JWTClaims{OfficerID: "officer-1"}},
			wantStatus: http.StatusNoContent,
			wantID:     "officer-1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenOfficer = ""
			req := httptest.NewRequest(http.MethodPost, "/v1/records", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireOfficer(tt.validator, logger)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantID, seenOfficer)
		})
	}
}
