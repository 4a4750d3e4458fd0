package lostid

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/api/middleware"
	internallostid "github.com/voo-ward/voo-citizen-backend/internal/lostid"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

type stubService struct {
	reportReq  internallostid.ReportRequest
	reportErr  error
	update     internallostid.UpdateStatusInput
	listParams internallostid.ListParams
}

func (s *stubService) Report(ctx context.Context, reporterID uuid.UUID, req internallostid.ReportRequest) (*internallostid.ReportDTO, error) {
	s.reportReq = req
	if s.reportErr != nil {
		return nil, s.reportErr
	}
	return &internallostid.ReportDTO{ID: uuid.New(), ReportNumber: "LID-2026-00001", ReporterID: reporterID, Status: enums.LostIDStatusPending}, nil
}

func (s *stubService) UpdateStatus(ctx context.Context, input internallostid.UpdateStatusInput) (*internallostid.ReportDTO, error) {
	s.update = input
	status, err := enums.ParseLostIDStatus(input.Request.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	return &internallostid.ReportDTO{ID: input.ReportID, Status: status, CollectionLocation: input.Request.CollectionLocation}, nil
}

func (s *stubService) ListMine(ctx context.Context, reporterID uuid.UUID) ([]internallostid.ReportDTO, error) {
	return []internallostid.ReportDTO{}, nil
}

func (s *stubService) List(ctx context.Context, params internallostid.ListParams) (*internallostid.ListResult, error) {
	s.listParams = params
	return &internallostid.ListResult{Items: []internallostid.ReportDTO{}}, nil
}

func newTestRouter(svc internallostid.Service, userID uuid.UUID, role enums.UserRole) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUserID(req.Context(), userID.String())
			ctx = middleware.WithRole(ctx, string(role))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/api/lost-id/report", Report(svc, nil))
	r.Get("/api/lost-id/my", ListMine(svc, nil))
	r.Get("/api/lost-id/admin", List(svc, nil))
	r.Patch("/api/lost-id/{id}/status", UpdateStatus(svc, nil))
	return r
}

func TestReport(t *testing.T) {
	svc := &stubService{}
	body := []byte(`{"idNumber":"12345678","fullName":"Wanjiru Kamau","lastSeenLocation":"Gikomba market","contactPhone":"0722000000"}`)
	rec := httptest.NewRecorder()
	newTestRouter(svc, uuid.New(), enums.UserRoleCitizen).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/lost-id/report", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "12345678", svc.reportReq.IDNumber)
	assert.Contains(t, rec.Body.String(), `"reportNumber":"LID-2026-00001"`)
}

func TestReportRequiresIDNumber(t *testing.T) {
	body := []byte(`{"fullName":"Wanjiru Kamau"}`)
	rec := httptest.NewRecorder()
	newTestRouter(&stubService{}, uuid.New(), enums.UserRoleCitizen).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/lost-id/report", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportDuplicateActive(t *testing.T) {
	svc := &stubService{reportErr: pkgerrors.New(pkgerrors.CodeConflict, "This ID has already been reported")}
	body := []byte(`{"idNumber":"12345678","fullName":"Wanjiru Kamau"}`)
	rec := httptest.NewRecorder()
	newTestRouter(svc, uuid.New(), enums.UserRoleCitizen).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/lost-id/report", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminListFilters(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc, uuid.New(), enums.UserRoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lost-id/admin?status=processing", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "processing", svc.listParams.Status)
	assert.Equal(t, 25, svc.listParams.Limit)
}

func TestUpdateStatusFound(t *testing.T) {
	svc := &stubService{}
	adminID := uuid.New()
	reportID := uuid.New()
	body := []byte(`{"status":"found","collectionLocation":"Chief's office"}`)
	rec := httptest.NewRecorder()
	newTestRouter(svc, adminID, enums.UserRoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/lost-id/"+reportID.String()+"/status", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reportID, svc.update.ReportID)
	assert.Equal(t, adminID, svc.update.ActorID)
	assert.Contains(t, rec.Body.String(), `"collectionLocation":"Chief's office"`)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	body := []byte(`{"status":"lost"}`)
	rec := httptest.NewRecorder()
	newTestRouter(&stubService{}, uuid.New(), enums.UserRoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/lost-id/"+uuid.NewString()+"/status", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
