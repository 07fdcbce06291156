package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thehassans/sial-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	WorkspaceID *uuid.UUID
}

// AccessTokenClaims represents the typed JWT issued to clients. The core
// trusts {UserID, Role, WorkspaceID} as the actor identity.
type AccessTokenClaims struct {
	UserID      uuid.UUID      `json:"user_id"`
	Role        enums.UserRole `json:"role"`
	WorkspaceID *uuid.UUID     `json:"workspace_id,omitempty"`
	jwt.RegisteredClaims
}
