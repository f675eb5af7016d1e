package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "docverify/pkg/domain-errors"
)

func TestParseDocumentType(t *testing.T) {
	for _, dt := range DocumentTypes() {
		parsed, err := ParseDocumentType(" " + string(dt) + " ")
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}

	_, err := ParseDocumentType("library_card")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = ParseDocumentType("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	parsed, err := ParseDocumentType("PASSPORT")
	require.NoError(t, err)
	assert.Equal(t, DocumentPassport, parsed)
}

func TestDocumentType_IsTravel(t *testing.T) {
	travel := map[DocumentType]bool{
		DocumentPassport:       true,
		DocumentVisa:           true,
		DocumentTravelDocument: true,
	}
	for _, dt := range DocumentTypes() {
		assert.Equal(t, travel[dt], dt.IsTravel(), dt)
	}
	assert.Len(t, DocumentTypes(), 12)
}

func TestVerificationRecord_Lifecycle(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	r := &VerificationRecord{IsActive: true}
	assert.False(t, r.IsExpired(now))
	assert.False(t, r.IsRevoked())

	r.ExpiryDate = &future
	assert.False(t, r.IsExpired(now))
	r.ExpiryDate = &past
	assert.True(t, r.IsExpired(now))

	r.RevokedAt = &now
	assert.True(t, r.IsRevoked())
}

func TestVerificationRecord_CloneIsDeep(t *testing.T) {
	exp := time.Now()
	r := &VerificationRecord{
		DocumentData:     []byte(`{"a":1}`),
		Hashtags:         []string{"x"},
		ExpiryDate:       &exp,
		SecurityFeatures: SecurityFeatures{"hologram": true},
	}
	c := r.Clone()
	c.DocumentData[0] = '['
	c.Hashtags[0] = "y"
	c.SecurityFeatures["hologram"] = false
	*c.ExpiryDate = exp.Add(time.Hour)

	assert.Equal(t, byte('{'), r.DocumentData[0])
	assert.Equal(t, "x", r.Hashtags[0])
	assert.True(t, r.SecurityFeatures["hologram"])
	assert.Equal(t, exp, *r.ExpiryDate)
}

func TestAPIKey_RollPeriod(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	k := &APIKey{PeriodStart: start, PeriodEnd: start.AddDate(0, 1, 0), CurrentUsage: 40}

	k.RollPeriod(start.Add(24 * time.Hour))
	assert.Equal(t, int64(40), k.CurrentUsage)

	k.RollPeriod(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, int64(0), k.CurrentUsage)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), k.PeriodStart)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), k.PeriodEnd)
}

func TestErrorCode_DefaultMessage(t *testing.T) {
	codes := []ErrorCode{
		ErrorDocumentNotFound, ErrorDocumentRevoked, ErrorDocumentInactive,
		ErrorInvalidQRCode, ErrorRateLimitExceeded, ErrorAPIAccessDenied,
		ErrorFraudDetected, ErrorValidation, ErrorVerification,
	}
	for _, c := range codes {
		assert.NotEmpty(t, c.DefaultMessage(), c)
	}
	assert.Empty(t, ErrorNone.DefaultMessage())
}
