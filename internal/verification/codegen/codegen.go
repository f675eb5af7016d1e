// Package codegen derives verification codes and document hashes, and
// computes ICAO 9303 MRZ and Luhn check digits.
package codegen

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
)

// Generator produces codes keyed by the service secret.
type Generator struct {
	secret  []byte
	baseURL string
}

// NewGenerator fails when secret is empty. baseURL is the public origin
// printed verification URLs point at.
func NewGenerator(secret []byte, baseURL string) (*Generator, error) {
	if len(secret) == 0 {
		return nil, errors.New("verification secret is required")
	}
	return &Generator{
		secret:  bytes.Clone(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// GenerateVerificationCode returns the first 12 hex characters, upper-cased,
// of HMAC-SHA256 over the canonical form of the data, type and timestamp.
func (g *Generator) GenerateVerificationCode(documentData json.RawMessage, documentType string, timestamp time.Time) (string, error) {
	if strings.TrimSpace(documentType) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "document type is required")
	}
	if timestamp.IsZero() {
		return "", dErrors.New(dErrors.CodeValidation, "timestamp is required")
	}
	data, err := decodeDocument(documentData)
	if err != nil {
		return "", err
	}
	payload, err := canonicalJSON(map[string]any{
		"documentData": data,
		"documentType": documentType,
		"timestamp":    timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialise code payload")
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	digest := hex.EncodeToString(mac.Sum(nil))
	return strings.ToUpper(digest[:id.VerificationCodeLength]), nil
}

// GenerateDocumentHash returns the lowercase hex SHA-256 of the canonical
// document data.
func (g *Generator) GenerateDocumentHash(documentData json.RawMessage) (string, error) {
	return DocumentHash(documentData)
}

// VerifyDocumentHash re-hashes documentData and compares in constant time.
func (g *Generator) VerifyDocumentHash(documentData json.RawMessage, expected string) (bool, error) {
	actual, err := DocumentHash(documentData)
	if err != nil {
		return false, err
	}
	expected = strings.ToLower(strings.TrimSpace(expected))
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1, nil
}

// GenerateVerificationURL returns {baseURL}/verify/{code}.
func (g *Generator) GenerateVerificationURL(code string) string {
	return g.baseURL + "/verify/" + code
}

func (g *Generator) BaseURL() string { return g.baseURL }

// DocumentHash is the keyless hash used for tamper detection.
func DocumentHash(documentData json.RawMessage) (string, error) {
	data, err := decodeDocument(documentData)
	if err != nil {
		return "", err
	}
	payload, err := canonicalJSON(data)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialise document")
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func decodeDocument(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "document data is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "document data must be valid JSON")
	}
	if dec.More() {
		return nil, dErrors.New(dErrors.CodeValidation, "document data must be a single JSON value")
	}
	if v == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "document data is required")
	}
	return v, nil
}

// canonicalJSON relies on encoding/json writing map keys in sorted order and
// json.Number verbatim.
func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
