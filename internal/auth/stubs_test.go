package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/internal/users"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUserRepository struct {
	byID        map[uuid.UUID]*models.User
	created     *models.User
	createErr   error
	rehashed    string
	lastLoginAt *time.Time
}

func newStubUserRepository(seed ...*models.User) *stubUserRepository {
	repo := &stubUserRepository{byID: map[uuid.UUID]*models.User{}}
	for _, user := range seed {
		repo.byID[user.ID] = user
	}
	return repo
}

func (s *stubUserRepository) WithTx(*gorm.DB) users.Repository { return s }

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	s.byID[user.ID] = user
	s.created = user
	return user, nil
}

func (s *stubUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) FindByPhones(ctx context.Context, phones []string) (*models.User, error) {
	for _, user := range s.byID {
		for _, p := range phones {
			if user.Phone == p {
				return user, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) ExistsByPhoneOrIDNumber(ctx context.Context, phones []string, idNumber string) (bool, error) {
	for _, user := range s.byID {
		if user.IDNumber == idNumber {
			return true, nil
		}
		for _, p := range phones {
			if user.Phone == p {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *stubUserRepository) UpdateLogin(ctx context.Context, id uuid.UUID, at time.Time, fcmToken *string) error {
	user, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.lastLoginAt = &at
	if fcmToken != nil {
		user.FCMToken = fcmToken
	}
	return nil
}

func (s *stubUserRepository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, fcmToken *string) error {
	user, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.FCMToken = fcmToken
	return nil
}

func (s *stubUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.rehashed = hash
	return nil
}

func (s *stubUserRepository) IncrementIssuesReported(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubUserRepository) IncrementIssuesResolved(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubSessionManager struct {
	userID   uuid.UUID
	accessID string
	err      error
}

func (s *stubSessionManager) Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.userID = userID
	s.accessID = accessID
	return "refresh-" + accessID, nil
}
