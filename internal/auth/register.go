package auth

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/internal/users"
	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	"github.com/voo-ward/voo-citizen-backend/pkg/db"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/phone"
	"github.com/voo-ward/voo-citizen-backend/pkg/security"
)

const duplicateIdentityMessage = "Phone or ID already registered"

// RegisterRequest contains the payload required for onboarding a citizen.
type RegisterRequest struct {
	FullName string  `json:"fullName" validate:"required,max=120"`
	Phone    string  `json:"phone" validate:"required,min=9,max=20"`
	IDNumber string  `json:"idNumber" validate:"required,max=20"`
	Password string  `json:"password" validate:"required,min=6"`
	Village  *string `json:"village,omitempty" validate:"omitempty,max=120"`
	FCMToken *string `json:"fcmToken,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner       txRunner
	UserRepo       users.Repository
	PasswordConfig config.PasswordConfig
	CountryCode    string
}

type registerService struct {
	creator identityCreator
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	creator, err := newIdentityCreator(params)
	if err != nil {
		return nil, err
	}
	return &registerService{creator: creator}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	user, err := s.creator.create(ctx, newIdentity{
		FullName: req.FullName,
		Phone:    req.Phone,
		IDNumber: req.IDNumber,
		Password: req.Password,
		Village:  req.Village,
		FCMToken: normalizeDeviceToken(req.FCMToken),
		Role:     enums.UserRoleCitizen,
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

type newIdentity struct {
	FullName string
	Phone    string
	IDNumber string
	Password string
	Village  *string
	FCMToken *string
	Role     enums.UserRole
}

// identityCreator owns the duplicate check and insert shared by citizen and
// admin registration.
type identityCreator struct {
	tx          txRunner
	users       users.Repository
	passwordCfg config.PasswordConfig
	countryCode string
}

func newIdentityCreator(params RegisterServiceParams) (identityCreator, error) {
	if params.TxRunner == nil {
		return identityCreator{}, fmt.Errorf("transaction runner required")
	}
	if params.UserRepo == nil {
		return identityCreator{}, fmt.Errorf("user repository is required")
	}
	countryCode := params.CountryCode
	if countryCode == "" {
		countryCode = phone.DefaultCountryCode
	}
	return identityCreator{
		tx:          params.TxRunner,
		users:       params.UserRepo,
		passwordCfg: params.PasswordConfig,
		countryCode: countryCode,
	}, nil
}

func (c identityCreator) create(ctx context.Context, in newIdentity) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fullName is required")
	}
	idNumber := strings.TrimSpace(in.IDNumber)
	if idNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idNumber is required")
	}
	normalized := phone.NormalizeWithCode(in.Phone, c.countryCode)
	if len(normalized) < 10 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is invalid")
	}
	if in.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if !in.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	passwordHash, err := security.HashPassword(in.Password, c.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := c.users.WithTx(tx)

		exists, err := repo.ExistsByPhoneOrIDNumber(ctx, phone.CandidatesWithCode(in.Phone, c.countryCode), idNumber)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user identity")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, duplicateIdentityMessage)
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			FullName:     fullName,
			Phone:        normalized,
			IDNumber:     idNumber,
			PasswordHash: passwordHash,
			Role:         in.Role,
			Village:      trimmedOrNil(in.Village),
			FCMToken:     in.FCMToken,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateIdentityMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
