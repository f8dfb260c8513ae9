package auth

import (
	authmw "nameledger/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims converts token claims into the middleware's shape.
func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		Principal:  claims.Subject,
		TokenID:    claims.ID,
		APIVersion: claims.APIVersion(),
	}
}

// MiddlewareAdapter exposes the token service through the middleware's
// JWTValidator interface.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
