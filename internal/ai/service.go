// Package ai wraps the multimodal model behind calls that always return a
// usable value. Failures are logged, counted and replaced by fixed fallbacks.
package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	"github.com/voo-ward/voo-citizen-backend/pkg/metrics"
	"github.com/voo-ward/voo-citizen-backend/pkg/openai"
)

const (
	fallbackTitle       = "Issue Report"
	fallbackDescription = "Unable to analyze image automatically"
	// FallbackChatReply is returned when the assistant cannot be reached.
	FallbackChatReply = "I'm having trouble connecting. Please try again."
)

type completer interface {
	Complete(ctx context.Context, req openai.Request) (string, error)
}

// Analysis is the model's structured read of an issue photo.
type Analysis struct {
	Category                enums.IssueCategory `json:"category"`
	Title                   string              `json:"title"`
	Description             string              `json:"description"`
	Urgency                 enums.Urgency       `json:"urgency"`
	Confidence              float64             `json:"confidence"`
	EstimatedResolutionTime string              `json:"estimatedResolutionTime,omitempty"`
	Fallback                bool                `json:"-"`
}

// Solution is the suggested remediation plan attached to an issue detail.
type Solution struct {
	EstimatedTime         string   `json:"estimatedTime"`
	RequiredResources     []string `json:"requiredResources"`
	SuggestedActions      []string `json:"suggestedActions"`
	Priority              string   `json:"priority"`
	ResponsibleDepartment string   `json:"responsibleDepartment"`
}

// Service is the never-failing assistant surface.
type Service interface {
	AnalyzeImage(ctx context.Context, imageURL string) Analysis
	EnhanceDescription(ctx context.Context, text string, category enums.IssueCategory) string
	SuggestSolution(ctx context.Context, category enums.IssueCategory, description string) *Solution
	SuggestCategory(ctx context.Context, description string) enums.IssueCategory
	Chat(ctx context.Context, userID uuid.UUID, message string) string
	ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]Exchange, error)
}

// ServiceParams wires the model client and optional transcript store. A nil
// Completer makes every call return its fallback.
type ServiceParams struct {
	Completer completer
	History   HistoryStore
	Logger    *logger.Logger
	Metrics   *metrics.AdapterMetrics
}

type service struct {
	model   completer
	history HistoryStore
	logg    *logger.Logger
	metrics *metrics.AdapterMetrics
	now     func() time.Time
}

// NewService builds the assistant wrapper.
func NewService(params ServiceParams) Service {
	return &service{
		model:   params.Completer,
		history: params.History,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FallbackAnalysis is what AnalyzeImage returns when the model is unusable.
func FallbackAnalysis() Analysis {
	return Analysis{
		Category:    enums.IssueCategoryOther,
		Title:       fallbackTitle,
		Description: fallbackDescription,
		Urgency:     enums.UrgencyMedium,
		Confidence:  0,
		Fallback:    true,
	}
}

type rawAnalysis struct {
	Category                string          `json:"category"`
	Title                   string          `json:"title"`
	Description             string          `json:"description"`
	Urgency                 string          `json:"urgency"`
	Confidence              json.Number     `json:"confidence"`
	EstimatedResolutionTime json.RawMessage `json:"estimatedResolutionTime"`
}

func (s *service) AnalyzeImage(ctx context.Context, imageURL string) Analysis {
	if strings.TrimSpace(imageURL) == "" {
		return FallbackAnalysis()
	}
	content, err := s.complete(ctx, "analyze", openai.Request{
		System:    analyzeSystemPrompt(),
		User:      analyzeUserPrompt,
		ImageURL:  imageURL,
		MaxTokens: analyzeMaxTokens,
		JSON:      true,
	})
	if err != nil {
		return FallbackAnalysis()
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		s.fallback(ctx, "analyze", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode analysis"))
		return FallbackAnalysis()
	}

	out := Analysis{
		Category:                enums.IssueCategoryOther,
		Title:                   strings.TrimSpace(raw.Title),
		Description:             strings.TrimSpace(raw.Description),
		Urgency:                 enums.UrgencyMedium,
		Confidence:              clampConfidence(raw.Confidence),
		EstimatedResolutionTime: flexibleString(raw.EstimatedResolutionTime),
	}
	if category, err := enums.ParseIssueCategory(raw.Category); err == nil {
		out.Category = category
	}
	if urgency, err := enums.ParseUrgency(raw.Urgency); err == nil {
		out.Urgency = urgency
	}
	if out.Title == "" {
		out.Title = fallbackTitle
	}
	return out
}

func (s *service) EnhanceDescription(ctx context.Context, text string, category enums.IssueCategory) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if !category.IsValid() {
		category = enums.IssueCategoryOther
	}
	content, err := s.complete(ctx, "enhance", openai.Request{
		System:    enhanceSystemPrompt(category),
		User:      text,
		MaxTokens: enhanceMaxTokens,
	})
	if err != nil {
		return text
	}
	return strings.Trim(content, "\"")
}

func (s *service) SuggestSolution(ctx context.Context, category enums.IssueCategory, description string) *Solution {
	content, err := s.complete(ctx, "solution", openai.Request{
		System:    solutionSystemPrompt,
		User:      solutionUserPrompt(category, description),
		MaxTokens: solutionMaxTokens,
		JSON:      true,
	})
	if err != nil {
		return nil
	}
	var solution Solution
	if err := json.Unmarshal([]byte(content), &solution); err != nil {
		s.fallback(ctx, "solution", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode solution"))
		return nil
	}
	return &solution
}

func (s *service) SuggestCategory(ctx context.Context, description string) enums.IssueCategory {
	if strings.TrimSpace(description) == "" {
		return enums.IssueCategoryOther
	}
	content, err := s.complete(ctx, "category", openai.Request{
		System:    categorySystemPrompt(),
		User:      description,
		MaxTokens: categoryMaxTokens,
	})
	if err != nil {
		return enums.IssueCategoryOther
	}
	category, err := enums.ParseIssueCategory(strings.Trim(content, "\".` "))
	if err != nil {
		return enums.IssueCategoryOther
	}
	return category
}

func (s *service) Chat(ctx context.Context, userID uuid.UUID, message string) string {
	reply, err := s.complete(ctx, "chat", openai.Request{
		System:    chatSystemPrompt,
		User:      message,
		MaxTokens: chatMaxTokens,
	})
	fellBack := err != nil
	if fellBack {
		reply = FallbackChatReply
	}

	if s.history != nil && userID != uuid.Nil {
		if err := s.history.Append(ctx, Exchange{
			UserID:    userID.String(),
			Message:   message,
			Reply:     reply,
			Fallback:  fellBack,
			CreatedAt: s.now(),
		}); err != nil && s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"error": err.Error()})
			s.logg.Warn(logCtx, "ai.chat.history_failed")
		}
	}
	return reply
}

func (s *service) ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]Exchange, error) {
	if s.history == nil {
		return []Exchange{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	items, err := s.history.Recent(ctx, userID.String(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat history")
	}
	return items, nil
}

func (s *service) complete(ctx context.Context, call string, req openai.Request) (string, error) {
	if s.model == nil {
		err := pkgerrors.New(pkgerrors.CodeDependency, "assistant is not configured")
		s.fallback(ctx, call, err)
		return "", err
	}
	started := time.Now()
	content, err := s.model.Complete(ctx, req)
	s.metrics.Observe("ai_"+call, started, err)
	if err == nil && strings.TrimSpace(content) == "" {
		err = pkgerrors.New(pkgerrors.CodeDependency, "assistant returned empty content")
	}
	if err != nil {
		s.fallback(ctx, call, err)
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (s *service) fallback(ctx context.Context, call string, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"error": err.Error()})
	s.logg.Warn(logCtx, "ai."+call+".fallback")
}

func clampConfidence(raw json.Number) float64 {
	value, err := raw.Float64()
	if err != nil {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// flexibleString accepts the estimate as a JSON string or number.
func flexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return strings.Trim(string(raw), "\" ")
}
