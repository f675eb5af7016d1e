package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	kv := []any{"request_id", "req-1", "count", 3, 42, "ignored", "dangling"}

	assert.Equal(t, "req-1", ExtractString(kv, "request_id"))
	assert.Equal(t, "", ExtractString(kv, "count"), "non-string value")
	assert.Equal(t, "", ExtractString(kv, "dangling"), "key without value")
	assert.Equal(t, "", ExtractString(nil, "request_id"))
}

func TestHas(t *testing.T) {
	kv := []any{"officer_id", "", "count", 3}

	assert.True(t, Has(kv, "officer_id"))
	assert.True(t, Has(kv, "count"))
	assert.False(t, Has(kv, "request_id"))
}
