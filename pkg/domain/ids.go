package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "docverify/pkg/domain-errors"
)

// Typed identifiers. Distinct types keep a session id from being passed where
// a record id is expected.
type (
	RecordID  uuid.UUID
	SessionID uuid.UUID
	HistoryID uuid.UUID
	APIKeyID  uuid.UUID
)

func (id RecordID) String() string  { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id HistoryID) String() string { return uuid.UUID(id).String() }
func (id APIKeyID) String() string  { return uuid.UUID(id).String() }

func (id RecordID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id APIKeyID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func NewRecordID() RecordID   { return RecordID(uuid.New()) }
func NewSessionID() SessionID { return SessionID(uuid.New()) }
func NewHistoryID() HistoryID { return HistoryID(uuid.New()) }
func NewAPIKeyID() APIKeyID   { return APIKeyID(uuid.New()) }

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return parsed, nil
}

// ParseRecordID parses a non-nil UUID record identifier.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record_id")
	return RecordID(u), err
}

// ParseSessionID parses a non-nil UUID session identifier.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseAPIKeyID parses a non-nil UUID API key identifier.
func ParseAPIKeyID(s string) (APIKeyID, error) {
	u, err := parseUUID(s, "api_key_id")
	return APIKeyID(u), err
}

// VerificationCodeLength is the length of issued verification codes.
const VerificationCodeLength = 12

// NormalizeCode trims and upper-cases user-entered codes.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseVerificationCode accepts exactly twelve uppercase alphanumerics after
// normalisation.
func ParseVerificationCode(s string) (string, error) {
	code := NormalizeCode(s)
	if code == "" {
		return "", dErrors.New(dErrors.CodeValidation, "verification code is required")
	}
	if len(code) != VerificationCodeLength {
		return "", dErrors.New(dErrors.CodeValidation, "verification code must be 12 characters")
	}
	if !IsAlphanumeric(code) {
		return "", dErrors.New(dErrors.CodeValidation, "verification code must be alphanumeric")
	}
	return code, nil
}

// IsAlphanumeric reports whether s only holds ASCII letters and digits.
func IsAlphanumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
