package auth

import (
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a console token.
// SessionID becomes the jti and names the Redis session record.
type AccessTokenPayload struct {
	SessionID string
	UserID    string
	Role      enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to one browser tab.
type AccessTokenClaims struct {
	UserID string         `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the session the token is bound to.
func (c *AccessTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
