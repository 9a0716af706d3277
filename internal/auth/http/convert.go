package http

import (
	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/pkg/authsdk"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
)

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role.String(),
		InstituteID: u.InstituteID,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toUserResponses(users []domain.User) []authsdk.UserResponse {
	out := make([]authsdk.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toTokens(p jwtx.TokenPair) authsdk.Tokens {
	return authsdk.Tokens{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}
