package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of access tiers known to the system.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Principal is the authenticated identity attached to a request after a
// token has been verified. It reflects the user as encoded at issuance
// time, not the current database row.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasRole reports whether the principal holds one of the given roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Principal returns the identity embedded in the claims.
func (c *Claims) Principal() Principal {
	return Principal{ID: c.UserID, Email: c.Email, Role: c.Role}
}
