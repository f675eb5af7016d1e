// Package jwttoken issues and validates the HS256 bearer tokens carried by
// issuing officers on record administration routes.
package jwttoken

import (
	"errors"
	"strings"
	"time"

	dErrors "docverify/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OfficerClaims identifies the officer and the office they act for.
type OfficerClaims struct {
	OfficerID string `json:"officer_id"`
	Office    string `json:"office"`
	jwt.RegisteredClaims
}

// JWTService handles officer token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

func (s *JWTService) GenerateOfficerToken(officerID, office string, expiresIn time.Duration) (string, error) {
	if strings.TrimSpace(officerID) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "officer id is required")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, OfficerClaims{
		OfficerID: officerID,
		Office:    office,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   officerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*OfficerClaims, error) {
	if len(s.signingKey) == 0 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "officer authentication is not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &OfficerClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*OfficerClaims)
	if !ok || claims.OfficerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
