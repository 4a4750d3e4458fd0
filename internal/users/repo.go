package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByPhones(ctx context.Context, phones []string) (*models.User, error)
	ExistsByPhoneOrIDNumber(ctx context.Context, phones []string, idNumber string) (bool, error)
	UpdateLogin(ctx context.Context, id uuid.UUID, at time.Time, fcmToken *string) error
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, fcmToken *string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	IncrementIssuesReported(ctx context.Context, id uuid.UUID) error
	IncrementIssuesResolved(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by their UUID.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhones returns the first user whose phone matches any of the candidates.
func (r *repository) FindByPhones(ctx context.Context, phones []string) (*models.User, error) {
	if len(phones) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("phone IN ?", phones).
		Order("created_at ASC").
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByPhoneOrIDNumber reports whether any of the phones or the ID number is taken.
func (r *repository) ExistsByPhoneOrIDNumber(ctx context.Context, phones []string, idNumber string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("id_number = ?", idNumber)
	if len(phones) > 0 {
		query = query.Or("phone IN ?", phones)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateLogin stamps last_login_at and, when provided, replaces the device token.
func (r *repository) UpdateLogin(ctx context.Context, id uuid.UUID, at time.Time, fcmToken *string) error {
	updates := map[string]any{"last_login_at": at}
	if fcmToken != nil {
		updates["fcm_token"] = *fcmToken
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}

// UpdateDeviceToken overwrites the push token. A nil token clears it.
func (r *repository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, fcmToken *string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("fcm_token", fcmToken)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePasswordHash stores a re-derived hash after a parameter upgrade.
func (r *repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// IncrementIssuesReported bumps the reporter counter by one.
func (r *repository) IncrementIssuesReported(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "issues_reported")
}

// IncrementIssuesResolved bumps the resolved counter by one.
func (r *repository) IncrementIssuesResolved(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "issues_resolved")
}

func (r *repository) increment(ctx context.Context, id uuid.UUID, column string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}
