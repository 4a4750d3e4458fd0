package ai

import (
	"net/http"
	"strings"

	"github.com/voo-ward/voo-citizen-backend/api/middleware"
	"github.com/voo-ward/voo-citizen-backend/api/responses"
	"github.com/voo-ward/voo-citizen-backend/api/validators"
	internalai "github.com/voo-ward/voo-citizen-backend/internal/ai"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	"github.com/voo-ward/voo-citizen-backend/pkg/pagination"
)

type analyzeImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

type enhanceRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
	Category    string `json:"category"`
}

type suggestCategoryRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required,notblank,max=2000"`
}

func unavailable(r *http.Request, logg *logger.Logger, w http.ResponseWriter) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ai service unavailable"))
}

// AnalyzeImage returns the model's read of a hosted photo. Model failures
// come back as the fallback analysis, never as an error.
func AnalyzeImage(svc internalai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, logg, w)
			return
		}

		var body analyzeImageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, svc.AnalyzeImage(r.Context(), body.ImageURL))
	}
}

func EnhanceDescription(svc internalai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, logg, w)
			return
		}

		var body enhanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category := enums.IssueCategoryOther
		if strings.TrimSpace(body.Category) != "" {
			parsed, err := enums.ParseIssueCategory(body.Category)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			category = parsed
		}

		enhanced := svc.EnhanceDescription(r.Context(), body.Description, category)
		responses.WriteSuccess(w, map[string]string{"enhancedDescription": enhanced})
	}
}

func SuggestCategory(svc internalai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, logg, w)
			return
		}

		var body suggestCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category := svc.SuggestCategory(r.Context(), body.Description)
		responses.WriteSuccess(w, map[string]string{"category": category.String()})
	}
}

// Chat answers the caller and records the exchange when history is enabled.
func Chat(svc internalai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, logg, w)
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body chatRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply := svc.Chat(r.Context(), userID, body.Message)
		responses.WriteSuccess(w, map[string]string{"response": reply})
	}
}

func ChatHistory(svc internalai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, logg, w)
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.ChatHistory(r.Context(), userID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if history == nil {
			history = []internalai.Exchange{}
		}
		responses.WriteSuccess(w, map[string]any{"items": history})
	}
}
