package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uuid.UUID      `json:"id"`
	FullName       string         `json:"fullName"`
	Phone          string         `json:"phone"`
	IDNumber       string         `json:"idNumber"`
	Role           enums.UserRole `json:"role"`
	Village        *string        `json:"village,omitempty"`
	IssuesReported int            `json:"issuesReported"`
	IssuesResolved int            `json:"issuesResolved"`
	IsActive       bool           `json:"isActive"`
	LastLoginAt    *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	FullName     string
	Phone        string
	IDNumber     string
	PasswordHash string
	Role         enums.UserRole
	Village      *string
	FCMToken     *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:             u.ID,
		FullName:       u.FullName,
		Phone:          u.Phone,
		IDNumber:       u.IDNumber,
		Role:           u.Role,
		Village:        u.Village,
		IssuesReported: u.IssuesReported,
		IssuesResolved: u.IssuesResolved,
		IsActive:       u.IsActive,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleCitizen
	}

	return &models.User{
		FullName:     c.FullName,
		Phone:        c.Phone,
		IDNumber:     c.IDNumber,
		PasswordHash: c.PasswordHash,
		Role:         role,
		Village:      c.Village,
		FCMToken:     c.FCMToken,
		IsActive:     true,
	}
}
