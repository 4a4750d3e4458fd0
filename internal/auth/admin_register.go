package auth

import (
	"context"

	"github.com/voo-ward/voo-citizen-backend/internal/users"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// AdminRegisterRequest contains the credentials for the non-production admin bootstrap.
type AdminRegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,min=9,max=20"`
	IDNumber string `json:"idNumber" validate:"required,max=20"`
	Password string `json:"password" validate:"required,min=8"`
}

// AdminRegisterService handles creating ward administrators.
type AdminRegisterService interface {
	Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error)
}

type adminRegisterService struct {
	creator identityCreator
}

// NewAdminRegisterService builds an admin registration service.
func NewAdminRegisterService(params RegisterServiceParams) (AdminRegisterService, error) {
	creator, err := newIdentityCreator(params)
	if err != nil {
		return nil, err
	}
	return &adminRegisterService{creator: creator}, nil
}

func (s *adminRegisterService) Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error) {
	user, err := s.creator.create(ctx, newIdentity{
		FullName: req.FullName,
		Phone:    req.Phone,
		IDNumber: req.IDNumber,
		Password: req.Password,
		Role:     enums.UserRoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}
