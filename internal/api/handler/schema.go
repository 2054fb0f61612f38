package handler

import (
	"time"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type principalResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	User      principalResponse `json:"user"`
	ExpiresIn int64             `json:"expiresIn"`
}

// --- Roles ---

type createRoleRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Permissions []string `json:"permissions" validate:"dive,permission"`
}

type updateRoleRequest struct {
	Permissions []string `json:"permissions" validate:"required,dive,permission"`
}

type permissionsResponse struct {
	Permissions []string `json:"permissions"`
	Granted     []string `json:"granted,omitempty"`
}

// --- Users ---

type createUserRequest struct {
	Username    string   `json:"username"    validate:"required,max=64"`
	Password    string   `json:"password"    validate:"required,min=8"`
	Role        string   `json:"role"        validate:"required"`
	Permissions []string `json:"permissions" validate:"dive,permission"`
	IsActive    *bool    `json:"is_active"`
}

type updateUserRequest struct {
	Password    *string  `json:"password"    validate:"omitempty,min=8"`
	Role        *string  `json:"role"`
	Permissions []string `json:"permissions" validate:"dive,permission"`
	IsActive    *bool    `json:"is_active"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type usersResponse struct {
	Users []userResponse `json:"users"`
}

func toPrincipalResponse(p *domain.Principal) principalResponse {
	perms := p.Permissions
	if perms == nil {
		perms = []string{}
	}
	return principalResponse{ID: p.ID, Username: p.Username, Role: p.Role, Permissions: perms}
}

func toUserResponse(u *domain.User) userResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: perms,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
