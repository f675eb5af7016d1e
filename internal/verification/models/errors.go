package models

// ErrorCode is the outcome taxonomy carried inside a VerificationResult.
type ErrorCode string

const (
	ErrorNone              ErrorCode = ""
	ErrorDocumentNotFound  ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorDocumentRevoked   ErrorCode = "DOCUMENT_REVOKED"
	ErrorDocumentInactive  ErrorCode = "DOCUMENT_INACTIVE"
	ErrorInvalidQRCode     ErrorCode = "INVALID_QR_CODE"
	ErrorRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorAPIAccessDenied   ErrorCode = "API_ACCESS_DENIED"
	ErrorFraudDetected     ErrorCode = "FRAUD_DETECTED"
	ErrorValidation        ErrorCode = "VALIDATION_ERROR"
	ErrorVerification      ErrorCode = "VERIFICATION_ERROR"
)

// DefaultMessage is the public message for each code.
func (c ErrorCode) DefaultMessage() string {
	switch c {
	case ErrorDocumentNotFound:
		return "document not found"
	case ErrorDocumentRevoked:
		return "document has been revoked"
	case ErrorDocumentInactive:
		return "document is not active"
	case ErrorInvalidQRCode:
		return "QR code could not be read"
	case ErrorRateLimitExceeded:
		return "too many verification attempts, try again later"
	case ErrorAPIAccessDenied:
		return "API access denied"
	case ErrorFraudDetected:
		return "verification blocked by fraud controls"
	case ErrorValidation:
		return "invalid verification request"
	case ErrorVerification:
		return "verification could not be completed"
	default:
		return ""
	}
}
