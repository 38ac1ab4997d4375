package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims issued by the portal's identity provider.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Roles    []string  `json:"roles"`
}

// Role names as issued by the portal.
const (
	RoleAdmin   = "admin"
	RoleAgence  = "agence"
	RoleNotaire = "notaire"
	RoleBanque  = "banque"
	RoleClient  = "client"
)
