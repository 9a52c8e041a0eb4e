package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/patientportal/backend/internal/models"
	"go.uber.org/zap"
)

// CatalogStore is the interface that wraps methods for programs, modules and videos data access
type CatalogStore interface {
	CatalogReader
	// Method ListPrograms retrieve programs without their module tree.
	//
	// When "status" is not nil only programs in that lifecycle state are returned.
	ListPrograms(ctx context.Context, status *models.ProgramLifecycle) ([]models.ProgramListItem, error)
	CreateProgram(ctx context.Context, program *models.Program) error
	// Method UpdateProgram apply the non-nil fields of the request.
	//
	// If the program does not exist, models.ErrProgramNotFound is returned.
	UpdateProgram(ctx context.Context, programID string, req *models.UpdateProgramRequest) error
	// Method DeleteProgram delete a program together with its modules and videos.
	DeleteProgram(ctx context.Context, programID string) error
	// Method CreateModule insert a module. models.ErrProgramNotFound is returned when the program is missing.
	CreateModule(ctx context.Context, module *models.Module) error
	UpdateModule(ctx context.Context, moduleID string, req *models.UpdateModuleRequest) error
	DeleteModule(ctx context.Context, moduleID string) error
	// Method CreateVideo insert a video. models.ErrModuleNotFound is returned when the module is missing.
	CreateVideo(ctx context.Context, video *models.Video) error
	UpdateVideo(ctx context.Context, videoID string, req *models.UpdateVideoRequest) error
	DeleteVideo(ctx context.Context, videoID string) error
}

type catalogService struct {
	repo   CatalogStore
	logger *zap.Logger
	newID  func() string
}

// NewCatalogService creates a new course catalog service
func NewCatalogService(repo CatalogStore, logger *zap.Logger) *catalogService {
	return &catalogService{
		repo:   repo,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// ListActivePrograms returns the programs learners can enroll in
func (s *catalogService) ListActivePrograms(ctx context.Context) ([]models.ProgramListItem, error) {
	active := models.ProgramLifecycleActive
	programs, err := s.repo.ListPrograms(ctx, &active)
	if err != nil {
		s.logger.Error("failed to list active programs", zap.Error(err))
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	return programs, nil
}

// GetPublishedProgram returns a program tree for learners. Draft programs are reported as missing.
func (s *catalogService) GetPublishedProgram(ctx context.Context, programID string) (*models.Program, error) {
	program, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.Status == models.ProgramLifecycleDraft {
		return nil, models.ErrProgramNotFound
	}
	return program, nil
}

// ListPrograms returns all programs, optionally filtered by lifecycle status.
// An empty status means no filter.
func (s *catalogService) ListPrograms(ctx context.Context, status string) ([]models.ProgramListItem, error) {
	var filter *models.ProgramLifecycle
	if status != "" {
		lifecycle := models.ProgramLifecycle(status)
		if !lifecycle.Valid() {
			return nil, &models.ValidationError{Fields: []string{"status must be one of active, draft, completed"}}
		}
		filter = &lifecycle
	}

	programs, err := s.repo.ListPrograms(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list programs", zap.String("status", status), zap.Error(err))
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	return programs, nil
}

// GetProgram returns a program with its ordered module tree regardless of status
func (s *catalogService) GetProgram(ctx context.Context, programID string) (*models.Program, error) {
	if err := models.ValidateID("programId", programID); err != nil {
		return nil, err
	}

	program, err := s.repo.GetProgramTree(ctx, programID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to get program", zap.String("program_id", programID), zap.Error(err))
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	return program, nil
}

// CreateProgram creates a program with a generated id
func (s *catalogService) CreateProgram(ctx context.Context, req *models.CreateProgramRequest) (*models.Program, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	program := &models.Program{
		ID:          s.newID(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Modules:     []models.Module{},
	}
	if err := s.repo.CreateProgram(ctx, program); err != nil {
		s.logger.Error("failed to create program", zap.Error(err))
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	s.logger.Info("program created", zap.String("program_id", program.ID))
	return program, nil
}

// UpdateProgram applies a partial update to a program
func (s *catalogService) UpdateProgram(ctx context.Context, programID string, req *models.UpdateProgramRequest) error {
	if err := models.ValidateID("programId", programID); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return s.wrap("update program", programID, s.repo.UpdateProgram(ctx, programID, req))
}

// DeleteProgram deletes a program and everything it owns
func (s *catalogService) DeleteProgram(ctx context.Context, programID string) error {
	if err := models.ValidateID("programId", programID); err != nil {
		return err
	}
	return s.wrap("delete program", programID, s.repo.DeleteProgram(ctx, programID))
}

// CreateModule adds a module to a program
func (s *catalogService) CreateModule(ctx context.Context, programID string, req *models.CreateModuleRequest) (*models.Module, error) {
	if err := models.ValidateID("programId", programID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	module := &models.Module{
		ID:        s.newID(),
		ProgramID: programID,
		Title:     req.Title,
		Order:     req.Order,
		Videos:    []models.Video{},
	}
	if err := s.wrap("create module", programID, s.repo.CreateModule(ctx, module)); err != nil {
		return nil, err
	}
	return module, nil
}

// UpdateModule applies a partial update to a module
func (s *catalogService) UpdateModule(ctx context.Context, moduleID string, req *models.UpdateModuleRequest) error {
	if err := models.ValidateID("moduleId", moduleID); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return s.wrap("update module", moduleID, s.repo.UpdateModule(ctx, moduleID, req))
}

// DeleteModule deletes a module and its videos
func (s *catalogService) DeleteModule(ctx context.Context, moduleID string) error {
	if err := models.ValidateID("moduleId", moduleID); err != nil {
		return err
	}
	return s.wrap("delete module", moduleID, s.repo.DeleteModule(ctx, moduleID))
}

// CreateVideo adds a video to a module
func (s *catalogService) CreateVideo(ctx context.Context, moduleID string, req *models.CreateVideoRequest) (*models.Video, error) {
	if err := models.ValidateID("moduleId", moduleID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	video := &models.Video{
		ID:              s.newID(),
		ModuleID:        moduleID,
		Title:           req.Title,
		URL:             req.URL,
		DurationSeconds: req.DurationSeconds,
		Order:           req.Order,
	}
	if err := s.wrap("create video", moduleID, s.repo.CreateVideo(ctx, video)); err != nil {
		return nil, err
	}
	return video, nil
}

// UpdateVideo applies a partial update to a video
func (s *catalogService) UpdateVideo(ctx context.Context, videoID string, req *models.UpdateVideoRequest) error {
	if err := models.ValidateID("videoId", videoID); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return s.wrap("update video", videoID, s.repo.UpdateVideo(ctx, videoID, req))
}

// DeleteVideo deletes a video. Completions of the video stay stored and stop counting towards progress.
func (s *catalogService) DeleteVideo(ctx context.Context, videoID string) error {
	if err := models.ValidateID("videoId", videoID); err != nil {
		return err
	}
	return s.wrap("delete video", videoID, s.repo.DeleteVideo(ctx, videoID))
}

// wrap passes not-found errors through and logs and wraps everything else
func (s *catalogService) wrap(action, id string, err error) error {
	if err == nil || models.IsNotFound(err) {
		return err
	}
	s.logger.Error("failed to "+action, zap.String("id", id), zap.Error(err))
	return fmt.Errorf("failed to %s: %w", action, err)
}
