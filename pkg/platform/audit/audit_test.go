package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/pkg/requestcontext"
)

func TestLogAudit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := requestcontext.WithRequestID(context.Background(), "req-9")
	ctx = requestcontext.WithOfficerID(ctx, "officer-3")
	LogAudit(ctx, logger, EventRecordRevoked, "verification_code", "A1B2C3D4E5F6")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "record_revoked", line["event"])
	assert.Equal(t, "audit", line["log_type"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.Equal(t, "officer-3", line["officer_id"])
	assert.Equal(t, "A1B2C3D4E5F6", line["verification_code"])
}

func TestLogAudit_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogAudit(context.Background(), nil, EventAPIKeyIssued)
	})
}

func TestLogAudit_CallerIDsWin(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := requestcontext.WithRequestID(context.Background(), "req-9")
	LogAudit(ctx, logger, EventVerificationBlocked, "request_id", "batch-req-1")

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"request_id"`)))
	assert.Contains(t, buf.String(), `"request_id":"batch-req-1"`)
}
