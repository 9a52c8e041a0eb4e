package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/patientportal/backend/internal/middleware"
	"github.com/patientportal/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to a status code.
// Validation errors are 400, missing catalog entities 404, anything else is logged and reported as 500.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.RespondError(w, http.StatusBadRequest, strings.Join(validationErr.Fields, "; "))
	case models.IsNotFound(err):
		h.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.Logger.Error("failed to "+action,
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
