package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patientportal/backend/internal/auth"
	"github.com/patientportal/backend/internal/models"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for course progress business logic
type ProgressService interface {
	// Method MarkVideoComplete record a watched video and return the recomputed progress of its program.
	//
	// models.ErrProgramNotFound, models.ErrModuleNotFound or models.ErrVideoNotFound is returned when the
	// target is missing from the catalog; nothing is written in that case.
	MarkVideoComplete(ctx context.Context, completion models.VideoCompletion) (*models.ProgramProgress, error)
	// Method GetProgramProgress retrieve the persisted progress of a user in a program.
	//
	// A program the user has not started reports zero progress for each module.
	GetProgramProgress(ctx context.Context, userID, programID string) (*models.ProgramProgress, error)
	// Method ListUserProgress retrieve the progress of a user in every program they started.
	ListUserProgress(ctx context.Context, userID string) ([]models.UserProgramProgress, error)
	// Method GetCompletionRecord retrieve every completed video of a user grouped by program and module.
	GetCompletionRecord(ctx context.Context, userID string) (*models.CompletionRecord, error)
	// Method RecalculateProgramProgress recompute and persist progress against the current catalog.
	RecalculateProgramProgress(ctx context.Context, userID, programID string) (*models.ProgramProgress, error)
}

// ProgressHandler handles HTTP requests for user course progress
type ProgressHandler struct {
	BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Route("/progress/{userId}", func(r chi.Router) {
		r.Get("/", h.ListProgress)
		r.Get("/completion-record", h.GetCompletionRecord)
		r.Get("/{programId}", h.GetProgramProgress)
		r.Post("/{programId}/recalculate", h.RecalculateProgramProgress)
		r.Post("/{programId}/{moduleId}/{videoId}/complete", h.MarkVideoComplete)
	})
}

// authorizeUser writes 403 and returns false when the caller may not access userID's progress
func (h *ProgressHandler) authorizeUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok || !principal.CanActFor(userID) {
		h.RespondError(w, http.StatusForbidden, "access to this user's progress is not allowed")
		return false
	}
	return true
}

// ListProgress handles GET /progress/{userId}
// @Summary List user progress
// @Description Get the persisted progress of a user in every program they started
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {array} models.UserProgramProgress
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /progress/{userId} [get]
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !h.authorizeUser(w, r, userID) {
		return
	}

	list, err := h.service.ListUserProgress(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, "list progress", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, list)
}

// GetCompletionRecord handles GET /progress/{userId}/completion-record
// @Summary Get completion record
// @Description Get every video the user completed, grouped by program and module
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.CompletionRecord
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /progress/{userId}/completion-record [get]
func (h *ProgressHandler) GetCompletionRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !h.authorizeUser(w, r, userID) {
		return
	}

	record, err := h.service.GetCompletionRecord(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, "get completion record", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, record)
}

// GetProgramProgress handles GET /progress/{userId}/{programId}
// @Summary Get program progress
// @Description Get module progress, program progress and program status of a user in one program
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} models.ProgramProgress
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "Program not found"
// @Failure 500 {object} map[string]string
// @Router /progress/{userId}/{programId} [get]
func (h *ProgressHandler) GetProgramProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !h.authorizeUser(w, r, userID) {
		return
	}

	result, err := h.service.GetProgramProgress(r.Context(), userID, chi.URLParam(r, "programId"))
	if err != nil {
		h.RespondServiceError(w, r, "get program progress", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// MarkVideoComplete handles POST /progress/{userId}/{programId}/{moduleId}/{videoId}/complete
// @Summary Mark a video as completed
// @Description Record that the user watched a video and return the recomputed progress of the program.
// @Description Completing the same video again is harmless and returns the same progress.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Param programId path string true "Program ID"
// @Param moduleId path string true "Module ID"
// @Param videoId path string true "Video ID"
// @Success 200 {object} models.ProgramProgress
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "Program, module or video not found"
// @Failure 500 {object} map[string]string "Store unreachable"
// @Router /progress/{userId}/{programId}/{moduleId}/{videoId}/complete [post]
func (h *ProgressHandler) MarkVideoComplete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !h.authorizeUser(w, r, userID) {
		return
	}

	completion := models.VideoCompletion{
		UserID:    userID,
		ProgramID: chi.URLParam(r, "programId"),
		ModuleID:  chi.URLParam(r, "moduleId"),
		VideoID:   chi.URLParam(r, "videoId"),
	}

	result, err := h.service.MarkVideoComplete(r.Context(), completion)
	if err != nil {
		h.RespondServiceError(w, r, "mark video complete", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// RecalculateProgramProgress handles POST /progress/{userId}/{programId}/recalculate
// @Summary Recalculate program progress
// @Description Recompute the user's progress against the current catalog, e.g. after videos were added or removed
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} models.ProgramProgress
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "Program not found"
// @Failure 500 {object} map[string]string
// @Router /progress/{userId}/{programId}/recalculate [post]
func (h *ProgressHandler) RecalculateProgramProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !h.authorizeUser(w, r, userID) {
		return
	}

	result, err := h.service.RecalculateProgramProgress(r.Context(), userID, chi.URLParam(r, "programId"))
	if err != nil {
		h.RespondServiceError(w, r, "recalculate progress", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}
