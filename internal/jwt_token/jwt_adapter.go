package jwttoken

import (
	dErrors "casetrack/pkg/domain-errors"
	authmw "casetrack/pkg/platform/middleware/auth"
)

// MiddlewareValidator lets the auth middleware validate access tokens without
// depending on the jwt package. Subscriptions and the dashboard are keyed by
// email, so a token without one is rejected here.
type MiddlewareValidator struct {
	service *JWTService
}

func NewMiddlewareValidator(service *JWTService) *MiddlewareValidator {
	return &MiddlewareValidator{service: service}
}

func (v *MiddlewareValidator) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no email")
	}
	return &authmw.JWTClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
