package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/internal/announcements"
	"github.com/voo-ward/voo-citizen-backend/internal/emergencycontacts"
	"github.com/voo-ward/voo-citizen-backend/internal/feedback"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

type stubAnnouncements struct {
	actorID uuid.UUID
	created announcements.CreateRequest
}

func (s *stubAnnouncements) ListActive(ctx context.Context) ([]announcements.AnnouncementDTO, error) {
	return []announcements.AnnouncementDTO{
		{ID: uuid.New(), Title: "Water rationing", Priority: enums.AnnouncementPriorityUrgent},
	}, nil
}

func (s *stubAnnouncements) Create(ctx context.Context, actorID uuid.UUID, req announcements.CreateRequest) (*announcements.AnnouncementDTO, error) {
	s.actorID = actorID
	s.created = req
	return &announcements.AnnouncementDTO{ID: uuid.New(), Title: req.Title, CreatedBy: actorID, CreatedAt: time.Now()}, nil
}

type stubContacts struct{}

func (stubContacts) List(ctx context.Context) ([]emergencycontacts.ContactDTO, error) {
	return emergencycontacts.Defaults(), nil
}

func (stubContacts) Create(ctx context.Context, req emergencycontacts.CreateRequest) (*emergencycontacts.ContactDTO, error) {
	id := uuid.New()
	return &emergencycontacts.ContactDTO{ID: &id, Name: req.Name, Phone: req.Phone}, nil
}

type stubFeedback struct {
	userID uuid.UUID
	items  []feedback.FeedbackDTO
}

func (s *stubFeedback) Submit(ctx context.Context, userID uuid.UUID, req feedback.SubmitRequest) (*feedback.FeedbackDTO, error) {
	s.userID = userID
	if req.Rating != nil && *req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	return &feedback.FeedbackDTO{ID: uuid.New(), Category: "general", Message: req.Message}, nil
}

func (s *stubFeedback) ListMine(ctx context.Context, userID uuid.UUID) ([]feedback.FeedbackDTO, error) {
	s.userID = userID
	return s.items, nil
}

func TestListAnnouncements(t *testing.T) {
	rec := httptest.NewRecorder()
	ListAnnouncements(&stubAnnouncements{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/announcements", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Water rationing")
}

func TestCreateAnnouncementRecordsActor(t *testing.T) {
	svc := &stubAnnouncements{}
	adminID := uuid.New()
	body, _ := json.Marshal(map[string]string{"title": "Road closure", "content": "Kamukunji road closed Friday", "priority": "high"})

	rec := httptest.NewRecorder()
	CreateAnnouncement(svc, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/announcements", body, adminID))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, adminID, svc.actorID)
	assert.Equal(t, "high", svc.created.Priority)
}

func TestCreateAnnouncementValidation(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"title": "No content"})

	rec := httptest.NewRecorder()
	CreateAnnouncement(&stubAnnouncements{}, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/announcements", body, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAnnouncementRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/announcements", bytes.NewReader([]byte(`{"title":"a","content":"b"}`)))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	CreateAnnouncement(&stubAnnouncements{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListEmergencyContacts(t *testing.T) {
	rec := httptest.NewRecorder()
	ListEmergencyContacts(stubContacts{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/emergency-contacts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "999")
}

func TestCreateEmergencyContact(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"name": "Ward Office", "phone": "0712345678"})

	rec := httptest.NewRecorder()
	CreateEmergencyContact(stubContacts{}, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/emergency-contacts", body, uuid.New()))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ward Office")
}

func TestSubmitFeedback(t *testing.T) {
	svc := &stubFeedback{}
	userID := uuid.New()
	body, _ := json.Marshal(map[string]any{"message": "The app is great", "rating": 5})

	rec := httptest.NewRecorder()
	SubmitFeedback(svc, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/feedback", body, userID))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, svc.userID)
}

func TestSubmitFeedbackRatingOutOfRange(t *testing.T) {
	body, _ := json.Marshal(map[string]any{"message": "x", "rating": 9})

	rec := httptest.NewRecorder()
	SubmitFeedback(&stubFeedback{}, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/feedback", body, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMyFeedback(t *testing.T) {
	userID := uuid.New()
	svc := &stubFeedback{items: []feedback.FeedbackDTO{{ID: uuid.New(), Message: "Thanks"}}}

	rec := httptest.NewRecorder()
	ListMyFeedback(svc, nil).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/feedback/my", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, svc.userID)
	assert.Contains(t, rec.Body.String(), "Thanks")
}
