package auth

import "github.com/skilllink/skilllink/internal/entity"

// Actor is the authenticated identity extracted from a bearer token.
type Actor struct {
	ID   int64
	Role entity.Role
}
