package feedback

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/dbtest"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

func TestSubmitAndListMine(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t, &models.Feedback{})))
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()
	rating := 4

	created, err := svc.Submit(ctx, userID, SubmitRequest{Message: "  Great response on the water issue ", Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "general", created.Category)
	assert.Equal(t, "Great response on the water issue", created.Message)

	_, err = svc.Submit(ctx, uuid.New(), SubmitRequest{Message: "Someone else"})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Rating)
	assert.Equal(t, 4, *mine[0].Rating)
}

func TestSubmitValidation(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t, &models.Feedback{})))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Submit(ctx, uuid.New(), SubmitRequest{Message: " "})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	bad := 6
	_, err = svc.Submit(ctx, uuid.New(), SubmitRequest{Message: "ok", Rating: &bad})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
