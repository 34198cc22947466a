package dto

import (
	"time"

	"github.com/skilllink/skilllink/internal/entity"
)

// RegisterRequest is the payload for account creation.
// The password tag enforces at least one lowercase, uppercase and digit.
type RegisterRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=50"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=6,max=128,password"`
	Role        string   `json:"role,omitempty" validate:"omitempty,oneof=buyer seller admin"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Skills      []string `json:"skills,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
}

// LoginRequest is the payload for credential verification.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents a user without credential material.
type UserResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Avatar      string    `json:"avatar,omitempty"`
	Description string    `json:"description,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthResponse bundles the registered/authenticated user with a bearer token.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserFromEntity maps a user entity to its response shape.
func UserFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		Avatar:      user.Avatar,
		Description: user.Description,
		Skills:      user.Skills,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
