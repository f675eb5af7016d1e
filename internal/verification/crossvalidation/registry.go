// Package crossvalidation asks external registries to confirm a document in
// parallel. Every registry call has its own deadline and circuit breaker;
// the resulting report is advisory.
package crossvalidation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docverify/internal/verification/models"
)

// Subject is what registries receive about the document being verified.
type Subject struct {
	RecordID         string              `json:"recordId"`
	VerificationCode string              `json:"verificationCode"`
	DocumentType     models.DocumentType `json:"documentType"`
	DocumentNumber   string              `json:"documentNumber"`
	DocumentHash     string              `json:"documentHash"`
	IssuedAt         time.Time           `json:"issuedAt"`
}

// RegistryResponse is a registry's answer. Confidence is in [0,1].
type RegistryResponse struct {
	IsValid    bool    `json:"isValid"`
	Confidence float64 `json:"confidence"`
	Reference  string  `json:"reference,omitempty"`
}

// Registry is one external authority.
type Registry interface {
	Name() string
	Validate(ctx context.Context, subject Subject) (*RegistryResponse, error)
}

// ErrorCategory normalises registry failures.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorOutage         ErrorCategory = "registry_outage"
	ErrorNotFound       ErrorCategory = "not_found"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorInternal       ErrorCategory = "internal"
)

// RegistryError wraps a registry failure with its category.
type RegistryError struct {
	Category   ErrorCategory
	Registry   string
	Message    string
	Underlying error
}

func (e *RegistryError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("registry %s [%s]: %s: %v", e.Registry, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("registry %s [%s]: %s", e.Registry, e.Category, e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Underlying
}

func NewRegistryError(category ErrorCategory, registry, message string, underlying error) *RegistryError {
	return &RegistryError{Category: category, Registry: registry, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category from err, defaulting to ErrorInternal.
func CategoryOf(err error) ErrorCategory {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	return ErrorInternal
}

var ErrCircuitOpen = errors.New("registry circuit open")
