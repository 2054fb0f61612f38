package domain

import "time"

// User is the persisted credential record.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Permissions  []string  `json:"permissions"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	Password    *string
	Role        *string
	Permissions []string
	IsActive    *bool
}

// ChangesAccess reports whether the update touches role, permissions or the
// active flag.
func (u UserUpdate) ChangesAccess() bool {
	return u.Role != nil || u.Permissions != nil || u.IsActive != nil
}
