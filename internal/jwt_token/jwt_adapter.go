package jwttoken

import (
	authmw "docverify/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *OfficerClaims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		OfficerID: claims.OfficerID,
		Office:    claims.Office,
		JTI:       claims.ID,
	}
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
