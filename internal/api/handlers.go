package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/surveyforge/backend/internal/chat"
	"github.com/surveyforge/backend/internal/diff"
	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/evaluator"
	"github.com/surveyforge/backend/internal/export"
	"github.com/surveyforge/backend/internal/generator"
	"github.com/surveyforge/backend/internal/llm"
	"github.com/surveyforge/backend/internal/repository"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	repo      repository.Repository
	generator *generator.Generator
	loop      *generator.Controller
	evaluator *evaluator.Service
	chat      *chat.Service
	sessions  *chat.Manager
	factory   llm.ClientFactory
	log       *zap.Logger
}

// Deps bundles the services a Handler needs.
type Deps struct {
	Repo      repository.Repository
	Generator *generator.Generator
	Loop      *generator.Controller
	Evaluator *evaluator.Service
	Chat      *chat.Service
	Sessions  *chat.Manager
	Factory   llm.ClientFactory
	Log       *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		repo:      deps.Repo,
		generator: deps.Generator,
		loop:      deps.Loop,
		evaluator: deps.Evaluator,
		chat:      deps.Chat,
		sessions:  deps.Sessions,
		factory:   deps.Factory,
		log:       log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Models
	mux.HandleFunc("GET /api/models", h.ListModels)

	// Authoring pipeline
	mux.HandleFunc("POST /api/survey-config/extract", h.ExtractSurveyConfig)
	mux.HandleFunc("POST /api/variable-model", h.GenerateVariableModel)
	mux.HandleFunc("POST /api/questions/generate", h.GenerateQuestions)
	mux.HandleFunc("POST /api/questions/evaluate", h.EvaluateQuestions)

	// Chat
	mux.HandleFunc("POST /api/chat", h.Chat)

	// Surveys
	mux.HandleFunc("GET /api/surveys", h.ListSurveys)
	mux.HandleFunc("POST /api/surveys", h.CreateSurvey)
	mux.HandleFunc("GET /api/surveys/{surveyId}", h.GetSurvey)
	mux.HandleFunc("PUT /api/surveys/{surveyId}", h.UpdateSurvey)
	mux.HandleFunc("DELETE /api/surveys/{surveyId}", h.DeleteSurvey)
	mux.HandleFunc("POST /api/surveys/{surveyId}/generate", h.GenerateForSurvey)

	// Snapshots
	mux.HandleFunc("GET /api/surveys/{surveyId}/snapshots", h.ListSnapshots)
	mux.HandleFunc("GET /api/surveys/{surveyId}/snapshots/{snapshotId}", h.GetSnapshot)
	mux.HandleFunc("GET /api/surveys/{surveyId}/snapshots/{snapshotId}/diff", h.DiffSnapshots)

	// Export
	mux.HandleFunc("GET /api/surveys/{surveyId}/export", h.ExportPack)
}

// Error response helpers

type errorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err, message string) {
	writeJSON(w, status, errorResponse{Error: err, Message: message})
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// Models

type listModelsResponse struct {
	Providers       []llm.ProviderInfo `json:"providers"`
	DefaultProvider llm.Provider       `json:"default_provider"`
	DefaultModel    string             `json:"default_model"`
}

func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	if h.factory == nil || !h.factory.Available() {
		writeJSON(w, http.StatusOK, listModelsResponse{
			Providers: []llm.ProviderInfo{},
		})
		return
	}

	writeJSON(w, http.StatusOK, listModelsResponse{
		Providers:       h.factory.ListProviders(),
		DefaultProvider: h.factory.DefaultProvider(),
		DefaultModel:    h.factory.DefaultModel(),
	})
}

// Authoring pipeline

type extractConfigRequest struct {
	Text string `json:"text"`
}

type extractConfigResponse struct {
	Config domain.SurveyConfig `json:"config"`
}

func (h *Handler) ExtractSurveyConfig(w http.ResponseWriter, r *http.Request) {
	var req extractConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "text is required")
		return
	}

	cfg, err := h.generator.ExtractSurveyConfig(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "extraction_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, extractConfigResponse{Config: cfg})
}

type variableModelRequest struct {
	Config domain.SurveyConfig `json:"config"`
}

type variableModelResponse struct {
	VariableModel domain.VariableModel `json:"variable_model"`
}

func (h *Handler) GenerateVariableModel(w http.ResponseWriter, r *http.Request) {
	var req variableModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.Config.Topic() == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "config title or goal is required")
		return
	}

	model, err := h.generator.GenerateVariableModel(r.Context(), req.Config)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "generation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, variableModelResponse{VariableModel: model})
}

type generateRequest struct {
	Config        domain.SurveyConfig  `json:"config"`
	VariableModel domain.VariableModel `json:"variable_model"`
	// PreviousQuestions seeds the first attempt with questions a prior
	// run produced and the admin rejected, so the model avoids them.
	PreviousQuestions []domain.Question `json:"previous_questions,omitempty"`
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.Config.Topic() == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "config title or goal is required")
		return
	}

	result, err := h.loop.Run(r.Context(), req.Config, req.VariableModel,
		generator.Options{PreviousQuestions: req.PreviousQuestions})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "generation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type evaluateRequest struct {
	Topic     string            `json:"topic"`
	Questions []domain.Question `json:"questions"`
}

type evaluateResponse struct {
	Evaluations       []domain.EvaluationRecord `json:"evaluations"`
	NeedsRegeneration bool                      `json:"needs_regeneration"`
	IssueCount        int                       `json:"issue_count"`
}

func (h *Handler) EvaluateQuestions(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "questions are required")
		return
	}

	evaluations := h.evaluator.Evaluate(r.Context(), req.Topic, req.Questions)
	thresholds := h.evaluator.Thresholds()

	writeJSON(w, http.StatusOK, evaluateResponse{
		Evaluations:       evaluations,
		NeedsRegeneration: evaluator.NeedsRegeneration(evaluations, thresholds),
		IssueCount:        evaluator.IssueCount(evaluations, thresholds),
	})
}

// Chat

type chatRequest struct {
	SessionID     string               `json:"session_id"`
	Action        string               `json:"action"`
	Config        domain.SurveyConfig  `json:"config"`
	VariableModel domain.VariableModel `json:"variable_model"`
	// Questions is the current set, consumed by the regenerate action.
	Questions []domain.Question `json:"questions,omitempty"`
	Messages  []llm.Message     `json:"messages"`
}

type chatResponse struct {
	Reply                string                    `json:"reply"`
	Action               string                    `json:"action"`
	RegeneratedQuestions []domain.Question         `json:"regenerated_questions,omitempty"`
	Evaluations          []domain.EvaluationRecord `json:"evaluations,omitempty"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "session_id is required")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "messages are required")
		return
	}

	action := req.Action
	if action == "" {
		action = chat.ActionChat
	}

	ctx, done := h.sessions.Begin(r.Context(), req.SessionID)
	defer done()

	switch action {
	case chat.ActionChat:
		reply, err := h.chat.Reply(ctx, req.Config, req.VariableModel, req.Messages)
		if err != nil {
			writeChatError(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Action: chat.ActionChat})

	case chat.ActionRegenerate:
		// The latest user message carries the improvement feedback.
		feedback := req.Messages[len(req.Messages)-1].Content
		result, err := h.chat.Regenerate(ctx, req.Config, req.VariableModel, feedback, req.Questions)
		if err != nil {
			writeChatError(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Reply:                fmt.Sprintf("Regenerated %d questions based on your feedback.", len(result.Questions)),
			Action:               chat.ActionRegenerate,
			RegeneratedQuestions: result.Questions,
			Evaluations:          result.Evaluations,
		})

	default:
		writeError(w, http.StatusBadRequest, "validation_error", "unknown action: "+action)
	}
}

func writeChatError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case chat.Superseded(ctx):
		writeError(w, http.StatusConflict, "superseded", "A newer request replaced this one")
	case errors.Is(err, llm.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", "Chat service not configured")
	default:
		writeError(w, http.StatusUnprocessableEntity, "chat_failed", err.Error())
	}
}

// Surveys

type createSurveyRequest struct {
	Config        domain.SurveyConfig  `json:"config"`
	VariableModel domain.VariableModel `json:"variable_model"`
}

func (h *Handler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req createSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.Config.Topic() == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "config title or goal is required")
		return
	}

	now := time.Now().UTC()
	survey := &domain.Survey{
		ID:            uuid.New(),
		Config:        req.Config,
		VariableModel: req.VariableModel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.repo.CreateSurvey(r.Context(), survey); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create survey")
		return
	}

	writeJSON(w, http.StatusCreated, survey)
}

type listSurveysResponse struct {
	Surveys []*domain.Survey `json:"surveys"`
}

func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.repo.ListSurveys(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list surveys")
		return
	}
	if surveys == nil {
		surveys = []*domain.Survey{}
	}
	writeJSON(w, http.StatusOK, listSurveysResponse{Surveys: surveys})
}

type getSurveyResponse struct {
	Survey           *domain.Survey `json:"survey"`
	LatestSnapshotID *uuid.UUID     `json:"latest_snapshot_id"`
}

func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}

	survey, err := h.repo.GetSurvey(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get survey")
		return
	}

	var latestID *uuid.UUID
	if latest, err := h.repo.GetLatestSnapshot(r.Context(), id); err == nil {
		latestID = &latest.ID
	}

	writeJSON(w, http.StatusOK, getSurveyResponse{Survey: survey, LatestSnapshotID: latestID})
}

func (h *Handler) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}

	var req createSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.Config.Topic() == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "config title or goal is required")
		return
	}

	survey, err := h.repo.GetSurvey(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get survey")
		return
	}

	survey.Config = req.Config
	survey.VariableModel = req.VariableModel
	survey.UpdatedAt = time.Now().UTC()

	if err := h.repo.UpdateSurvey(r.Context(), survey); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update survey")
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

func (h *Handler) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}

	if err := h.repo.DeleteSurvey(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete survey")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateForSurvey runs the quality loop for a stored survey and
// persists the result as a new snapshot.

type generateForSurveyResponse struct {
	SnapshotID uuid.UUID                `json:"snapshot_id"`
	Result     *domain.GenerationResult `json:"result"`
}

func (h *Handler) GenerateForSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}

	survey, err := h.repo.GetSurvey(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get survey")
		return
	}

	result, err := h.loop.Run(r.Context(), survey.Config, survey.VariableModel, generator.Options{})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "generation_failed", err.Error())
		return
	}

	now := time.Now().UTC()
	snapshot := &domain.QuestionSetSnapshot{
		ID:           uuid.New(),
		SurveyID:     survey.ID,
		Questions:    result.Questions,
		Evaluations:  result.Evaluations,
		Regenerated:  result.Regenerated,
		AttemptsMade: result.AttemptsMade,
		CreatedAt:    now,
	}

	err = h.repo.WithTx(r.Context(), func(tx repository.Repository) error {
		if err := tx.CreateSnapshot(r.Context(), snapshot); err != nil {
			return err
		}
		survey.UpdatedAt = now
		return tx.UpdateSurvey(r.Context(), survey)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save snapshot")
		return
	}

	writeJSON(w, http.StatusOK, generateForSurveyResponse{
		SnapshotID: snapshot.ID,
		Result:     result,
	})
}

// Snapshots

type listSnapshotsResponse struct {
	Snapshots []*domain.QuestionSetSnapshot `json:"snapshots"`
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	surveyID, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}

	if _, err := h.repo.GetSurvey(r.Context(), surveyID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get survey")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	snapshots, err := h.repo.ListSnapshots(r.Context(), surveyID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list snapshots")
		return
	}
	if snapshots == nil {
		snapshots = []*domain.QuestionSetSnapshot{}
	}

	writeJSON(w, http.StatusOK, listSnapshotsResponse{Snapshots: snapshots})
}

// snapshotForSurvey loads a snapshot and verifies it belongs to the survey.
func (h *Handler) snapshotForSurvey(w http.ResponseWriter, r *http.Request, surveyID, snapshotID uuid.UUID) (*domain.QuestionSetSnapshot, bool) {
	snapshot, err := h.repo.GetSnapshot(r.Context(), snapshotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Snapshot not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get snapshot")
		return nil, false
	}
	if snapshot.SurveyID != surveyID {
		writeError(w, http.StatusNotFound, "not_found", "Snapshot not found in this survey")
		return nil, false
	}
	return snapshot, true
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	surveyID, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}
	snapshotID, err := parseUUID(r.PathValue("snapshotId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid snapshot ID format")
		return
	}

	snapshot, ok := h.snapshotForSurvey(w, r, surveyID, snapshotID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Diff

type diffResponse struct {
	Diff *diff.Result `json:"diff"`
}

func (h *Handler) DiffSnapshots(w http.ResponseWriter, r *http.Request) {
	surveyID, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}
	targetID, err := parseUUID(r.PathValue("snapshotId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid snapshot ID format")
		return
	}

	baseIDStr := r.URL.Query().Get("base")
	if baseIDStr == "" {
		writeError(w, http.StatusBadRequest, "missing_param", "base snapshot ID is required")
		return
	}
	baseID, err := parseUUID(baseIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid base snapshot ID format")
		return
	}

	targetSnap, ok := h.snapshotForSurvey(w, r, surveyID, targetID)
	if !ok {
		return
	}
	baseSnap, ok := h.snapshotForSurvey(w, r, surveyID, baseID)
	if !ok {
		return
	}

	result := diff.QuestionSets(baseSnap.Questions, targetSnap.Questions, baseID.String(), targetID.String())
	writeJSON(w, http.StatusOK, diffResponse{Diff: result})
}

// Export

func (h *Handler) ExportPack(w http.ResponseWriter, r *http.Request) {
	surveyID, err := parseUUID(r.PathValue("surveyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid survey ID format")
		return
	}

	survey, err := h.repo.GetSurvey(r.Context(), surveyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get survey")
		return
	}

	var snapshot *domain.QuestionSetSnapshot
	if sidStr := r.URL.Query().Get("snapshot_id"); sidStr != "" {
		snapshotID, err := parseUUID(sidStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_uuid", "Invalid snapshot ID format")
			return
		}
		var ok bool
		snapshot, ok = h.snapshotForSurvey(w, r, surveyID, snapshotID)
		if !ok {
			return
		}
	} else {
		snapshot, err = h.repo.GetLatestSnapshot(r.Context(), surveyID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusUnprocessableEntity, "no_snapshot", "No snapshot to export")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get snapshot")
			return
		}
	}

	contents, err := export.GeneratePack(export.Input{Survey: survey, Snapshot: snapshot})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_error", "Failed to generate export")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteZip(contents, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "zip_error", "Failed to create zip")
		return
	}

	filename := fmt.Sprintf("%s-survey-pack.zip", sanitizeFilename(survey.Config.Topic()))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func sanitizeFilename(name string) string {
	safe := ""
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			safe += string(r)
		} else if r == ' ' {
			safe += "-"
		}
	}
	if safe == "" {
		safe = "survey"
	}
	return safe
}
