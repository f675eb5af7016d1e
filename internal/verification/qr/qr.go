// Package qr decodes and encodes the QR payload shapes that carry a
// verification code: a bare code, a JSON object, or a URL.
package qr

import (
	"encoding/json"
	"net/url"
	"strings"

	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
)

const (
	minCodeLength = 8
	maxCodeLength = 32
	maxPayload    = 2048
)

// Format identifies which shape a payload used.
type Format string

const (
	FormatBare Format = "bare"
	FormatJSON Format = "json"
	FormatURL  Format = "url"
)

type jsonPayload struct {
	VerificationCode string `json:"verificationCode"`
	Code             string `json:"code,omitempty"`
}

// Decode extracts the verification code from a scanned payload. Any payload
// that does not yield a well-formed code is a CodeInvalidInput error.
func Decode(data string) (string, Format, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", "", invalid("QR data is empty")
	}
	if len(data) > maxPayload {
		return "", "", invalid("QR data is too long")
	}

	switch {
	case strings.HasPrefix(data, "{"):
		code, err := decodeJSON(data)
		return code, FormatJSON, err
	case strings.Contains(data, "://"):
		code, err := decodeURL(data)
		return code, FormatURL, err
	default:
		code, err := checkCode(data)
		return code, FormatBare, err
	}
}

func decodeJSON(data string) (string, error) {
	var p jsonPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return "", invalid("QR JSON payload is malformed")
	}
	code := p.VerificationCode
	if code == "" {
		code = p.Code
	}
	if code == "" {
		return "", invalid("QR JSON payload has no verification code")
	}
	return checkCode(code)
}

func decodeURL(data string) (string, error) {
	u, err := url.Parse(data)
	if err != nil || u.Host == "" {
		return "", invalid("QR URL is malformed")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", invalid("QR URL scheme is not supported")
	}
	if code := u.Query().Get("code"); code != "" {
		return checkCode(code)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) >= 2 && segments[len(segments)-2] == "verify" {
		return checkCode(segments[len(segments)-1])
	}
	return "", invalid("QR URL has no verification code")
}

func checkCode(raw string) (string, error) {
	code := id.NormalizeCode(raw)
	if len(code) < minCodeLength || len(code) > maxCodeLength || !id.IsAlphanumeric(code) {
		return "", invalid("QR code is not a verification code")
	}
	return code, nil
}

func invalid(msg string) error {
	return dErrors.New(dErrors.CodeInvalidInput, msg)
}

// EncodeBare returns the code itself.
func EncodeBare(code string) string {
	return code
}

// EncodeJSON returns {"verificationCode":"<code>"}.
func EncodeJSON(code string) string {
	raw, _ := json.Marshal(jsonPayload{VerificationCode: code})
	return string(raw)
}

// EncodeURL returns {baseURL}/verify?code=<code>.
func EncodeURL(baseURL, code string) string {
	q := url.Values{}
	q.Set("code", code)
	return strings.TrimRight(baseURL, "/") + "/verify?" + q.Encode()
}
