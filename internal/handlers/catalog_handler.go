package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patientportal/backend/internal/models"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for course catalog business logic
type CatalogService interface {
	// Method ListActivePrograms retrieve the programs learners can enroll in, without their module tree.
	ListActivePrograms(ctx context.Context) ([]models.ProgramListItem, error)
	// Method GetPublishedProgram retrieve a non-draft program with its ordered module tree.
	//
	// Draft programs are reported as models.ErrProgramNotFound.
	GetPublishedProgram(ctx context.Context, programID string) (*models.Program, error)
	// Method ListPrograms retrieve every program, optionally filtered by lifecycle status.
	//
	// An unknown status returns a *models.ValidationError.
	ListPrograms(ctx context.Context, status string) ([]models.ProgramListItem, error)
	GetProgram(ctx context.Context, programID string) (*models.Program, error)
	CreateProgram(ctx context.Context, req *models.CreateProgramRequest) (*models.Program, error)
	UpdateProgram(ctx context.Context, programID string, req *models.UpdateProgramRequest) error
	DeleteProgram(ctx context.Context, programID string) error
	CreateModule(ctx context.Context, programID string, req *models.CreateModuleRequest) (*models.Module, error)
	UpdateModule(ctx context.Context, moduleID string, req *models.UpdateModuleRequest) error
	DeleteModule(ctx context.Context, moduleID string) error
	CreateVideo(ctx context.Context, moduleID string, req *models.CreateVideoRequest) (*models.Video, error)
	UpdateVideo(ctx context.Context, videoID string, req *models.UpdateVideoRequest) error
	DeleteVideo(ctx context.Context, videoID string) error
}

// CatalogHandler handles HTTP requests for the course catalog
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers the learner catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/programs", func(r chi.Router) {
		r.Get("/", h.ListActivePrograms)
		r.Get("/{programId}", h.GetPublishedProgram)
	})
}

// RegisterAdminRoutes registers the catalog management routes
func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		// Programs
		r.Get("/programs", h.ListPrograms)
		r.Post("/programs", h.CreateProgram)
		r.Get("/programs/{programId}", h.GetProgram)
		r.Patch("/programs/{programId}", h.UpdateProgram)
		r.Delete("/programs/{programId}", h.DeleteProgram)

		// Modules
		r.Post("/programs/{programId}/modules", h.CreateModule)
		r.Patch("/modules/{moduleId}", h.UpdateModule)
		r.Delete("/modules/{moduleId}", h.DeleteModule)

		// Videos
		r.Post("/modules/{moduleId}/videos", h.CreateVideo)
		r.Patch("/videos/{videoId}", h.UpdateVideo)
		r.Delete("/videos/{videoId}", h.DeleteVideo)
	})
}

// ListActivePrograms handles GET /programs
// @Summary List programs
// @Description Get the active programs with module and video counts
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Success 200 {array} models.ProgramListItem
// @Failure 500 {object} map[string]string
// @Router /programs [get]
func (h *CatalogHandler) ListActivePrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.service.ListActivePrograms(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, "list programs", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, programs)
}

// GetPublishedProgram handles GET /programs/{programId}
// @Summary Get program
// @Description Get a program with its modules and videos, ordered for display
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} models.Program
// @Failure 404 {object} map[string]string "Program not found"
// @Failure 500 {object} map[string]string
// @Router /programs/{programId} [get]
func (h *CatalogHandler) GetPublishedProgram(w http.ResponseWriter, r *http.Request) {
	program, err := h.service.GetPublishedProgram(r.Context(), chi.URLParam(r, "programId"))
	if err != nil {
		h.RespondServiceError(w, r, "get program", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, program)
}

// ListPrograms handles GET /admin/programs
// @Summary List all programs
// @Description Get every program with module and video counts. Requires admin role (JWT authentication).
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Lifecycle status filter: active, draft or completed"
// @Success 200 {array} models.ProgramListItem
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 500 {object} map[string]string
// @Router /admin/programs [get]
func (h *CatalogHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.service.ListPrograms(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.RespondServiceError(w, r, "list programs", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, programs)
}

// GetProgram handles GET /admin/programs/{programId}
// @Summary Get program (admin)
// @Description Get a program of any status with its module tree. Requires admin role (JWT authentication).
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} models.Program
// @Failure 404 {object} map[string]string "Program not found"
// @Failure 500 {object} map[string]string
// @Router /admin/programs/{programId} [get]
func (h *CatalogHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	program, err := h.service.GetProgram(r.Context(), chi.URLParam(r, "programId"))
	if err != nil {
		h.RespondServiceError(w, r, "get program", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, program)
}

// CreateProgram handles POST /admin/programs
// @Summary Create program
// @Description Create a new program. The status defaults to draft. Requires admin role (JWT authentication).
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param program body models.CreateProgramRequest true "Program creation request"
// @Success 201 {object} models.Program
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 500 {object} map[string]string
// @Router /admin/programs [post]
func (h *CatalogHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProgramRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	program, err := h.service.CreateProgram(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, "create program", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, program)
}

// UpdateProgram handles PATCH /admin/programs/{programId}
// @Summary Update program
// @Description Update a program (partial update). Requires admin role (JWT authentication).
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param program body models.UpdateProgramRequest true "Program update request"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Program not found"
// @Failure 500 {object} map[string]string
// @Router /admin/programs/{programId} [patch]
func (h *CatalogHandler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProgramRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateProgram(r.Context(), chi.URLParam(r, "programId"), &req); err != nil {
		h.RespondServiceError(w, r, "update program", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteProgram handles DELETE /admin/programs/{programId}
// @Summary Delete program
// @Description Delete a program with its modules and videos. Requires admin role (JWT authentication).
// @Tags admin
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Program not found"
// @Failure 500 {object} map[string]string
// @Router /admin/programs/{programId} [delete]
func (h *CatalogHandler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProgram(r.Context(), chi.URLParam(r, "programId")); err != nil {
		h.RespondServiceError(w, r, "delete program", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateModule handles POST /admin/programs/{programId}/modules
// @Summary Create module
// @Description Add a module to a program. Requires admin role (JWT authentication).
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param module body models.CreateModuleRequest true "Module creation request"
// @Success 201 {object} models.Module
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Program not found"
// @Failure 500 {object} map[string]string
// @Router /admin/programs/{programId}/modules [post]
func (h *CatalogHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateModuleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	module, err := h.service.CreateModule(r.Context(), chi.URLParam(r, "programId"), &req)
	if err != nil {
		h.RespondServiceError(w, r, "create module", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, module)
}

// UpdateModule handles PATCH /admin/modules/{moduleId}
// @Summary Update module
// @Description Update a module (partial update). Requires admin role (JWT authentication).
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Param module body models.UpdateModuleRequest true "Module update request"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Module not found"
// @Failure 500 {object} map[string]string
// @Router /admin/modules/{moduleId} [patch]
func (h *CatalogHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateModuleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateModule(r.Context(), chi.URLParam(r, "moduleId"), &req); err != nil {
		h.RespondServiceError(w, r, "update module", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteModule handles DELETE /admin/modules/{moduleId}
// @Summary Delete module
// @Description Delete a module with its videos. Requires admin role (JWT authentication).
// @Tags admin
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Module not found"
// @Failure 500 {object} map[string]string
// @Router /admin/modules/{moduleId} [delete]
func (h *CatalogHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteModule(r.Context(), chi.URLParam(r, "moduleId")); err != nil {
		h.RespondServiceError(w, r, "delete module", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateVideo handles POST /admin/modules/{moduleId}/videos
// @Summary Create video
// @Description Add a video to a module. Requires admin role (JWT authentication).
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Param video body models.CreateVideoRequest true "Video creation request"
// @Success 201 {object} models.Video
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Module not found"
// @Failure 500 {object} map[string]string
// @Router /admin/modules/{moduleId}/videos [post]
func (h *CatalogHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	video, err := h.service.CreateVideo(r.Context(), chi.URLParam(r, "moduleId"), &req)
	if err != nil {
		h.RespondServiceError(w, r, "create video", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, video)
}

// UpdateVideo handles PATCH /admin/videos/{videoId}
// @Summary Update video
// @Description Update a video (partial update). Requires admin role (JWT authentication).
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param videoId path string true "Video ID"
// @Param video body models.UpdateVideoRequest true "Video update request"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Video not found"
// @Failure 500 {object} map[string]string
// @Router /admin/videos/{videoId} [patch]
func (h *CatalogHandler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateVideo(r.Context(), chi.URLParam(r, "videoId"), &req); err != nil {
		h.RespondServiceError(w, r, "update video", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteVideo handles DELETE /admin/videos/{videoId}
// @Summary Delete video
// @Description Delete a video. Completions of the video stop counting towards progress. Requires admin role (JWT authentication).
// @Tags admin
// @Security BearerAuth
// @Param videoId path string true "Video ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Video not found"
// @Failure 500 {object} map[string]string
// @Router /admin/videos/{videoId} [delete]
func (h *CatalogHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteVideo(r.Context(), chi.URLParam(r, "videoId")); err != nil {
		h.RespondServiceError(w, r, "delete video", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
