package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/pkg/db"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/dbtest"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

func newRepo(t *testing.T) Repository {
	t.Helper()
	return NewRepository(dbtest.Open(t, &models.User{}))
}

func seedUser(t *testing.T, repo Repository, phone, idNumber string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		FullName:     "Wanjiku Kamau",
		Phone:        phone,
		IDNumber:     idNumber,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func TestCreateDefaultsToActiveCitizen(t *testing.T) {
	repo := newRepo(t)
	user := seedUser(t, repo, "+254712345678", "12345678")

	require.NotEqual(t, uuid.Nil, user.ID)
	require.Equal(t, enums.UserRoleCitizen, user.Role)
	require.True(t, user.IsActive)

	loaded, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "+254712345678", loaded.Phone)
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	repo := newRepo(t)
	seedUser(t, repo, "+254712345678", "12345678")

	_, err := repo.Create(context.Background(), CreateUserDTO{
		FullName:     "Other",
		Phone:        "+254712345678",
		IDNumber:     "87654321",
		PasswordHash: "hash",
	})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestFindByPhonesMatchesAnyCandidate(t *testing.T) {
	repo := newRepo(t)
	user := seedUser(t, repo, "+254712345678", "12345678")
	ctx := context.Background()

	found, err := repo.FindByPhones(ctx, []string{"0712345678", "+254712345678"})
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = repo.FindByPhones(ctx, []string{"0700000000"})
	require.True(t, db.IsNotFound(err))

	_, err = repo.FindByPhones(ctx, nil)
	require.True(t, db.IsNotFound(err))
}

func TestExistsByPhoneOrIDNumber(t *testing.T) {
	repo := newRepo(t)
	seedUser(t, repo, "+254712345678", "12345678")
	ctx := context.Background()

	exists, err := repo.ExistsByPhoneOrIDNumber(ctx, []string{"+254799999999"}, "12345678")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByPhoneOrIDNumber(ctx, []string{"+254712345678"}, "00000000")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByPhoneOrIDNumber(ctx, []string{"+254799999999"}, "00000000")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUpdateLoginAndDeviceToken(t *testing.T) {
	repo := newRepo(t)
	user := seedUser(t, repo, "+254712345678", "12345678")
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	token := "device-1"
	require.NoError(t, repo.UpdateLogin(ctx, user.ID, at, &token))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLoginAt)
	require.True(t, loaded.LastLoginAt.Equal(at))
	require.True(t, loaded.HasDeviceToken())

	require.NoError(t, repo.UpdateDeviceToken(ctx, user.ID, nil))
	loaded, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, loaded.HasDeviceToken())

	err = repo.UpdateDeviceToken(ctx, uuid.New(), &token)
	require.True(t, db.IsNotFound(err))
}

func TestIncrementCounters(t *testing.T) {
	repo := newRepo(t)
	user := seedUser(t, repo, "+254712345678", "12345678")
	ctx := context.Background()

	require.NoError(t, repo.IncrementIssuesReported(ctx, user.ID))
	require.NoError(t, repo.IncrementIssuesReported(ctx, user.ID))
	require.NoError(t, repo.IncrementIssuesResolved(ctx, user.ID))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.IssuesReported)
	require.Equal(t, 1, loaded.IssuesResolved)
}
