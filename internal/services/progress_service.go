package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patientportal/backend/internal/metrics"
	"github.com/patientportal/backend/internal/models"
	"github.com/patientportal/backend/internal/progress"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CatalogReader is the interface that wraps read access to the course catalog
type CatalogReader interface {
	// Method GetProgramTree retrieve a program with all of its modules and videos.
	//
	// Modules and videos are ordered by their order field, ties broken by id.
	// If the program does not exist, models.ErrProgramNotFound is returned together with "nil" value.
	GetProgramTree(ctx context.Context, programID string) (*models.Program, error)
}

// ProgressStore is the interface that wraps methods for completed videos and derived progress data access
type ProgressStore interface {
	// Method GetCompletionRecord retrieve every completed video id of a user, grouped by program and module.
	GetCompletionRecord(ctx context.Context, userID string) (*models.CompletionRecord, error)
	// Method GetProgress retrieve the persisted progress of a user in one program.
	//
	// "nil" is returned without error when the user has not started the program.
	GetProgress(ctx context.Context, userID, programID string) (*models.UserProgramProgress, error)
	// Method ListProgress retrieve the persisted progress of a user in every started program.
	ListProgress(ctx context.Context, userID string) ([]models.UserProgramProgress, error)
	// Method SaveCompletion record a completed video and overwrite the program's derived progress with compute's result.
	//
	// The user's progress row is locked and the completion set is re-read inside the write transaction,
	// so compute always sees every video completed so far. Recording an already completed video does not fail.
	SaveCompletion(ctx context.Context, completion models.VideoCompletion, compute models.ProgressFunc) (models.ProgressUpdate, error)
	// Method RecalculateProgress overwrite the program's derived progress with compute's result under the same lock.
	//
	// Nothing is written when the user has not started the program; the update then reports Written false.
	RecalculateProgress(ctx context.Context, userID, programID string, compute models.ProgressFunc) (models.ProgressUpdate, error)
}

// CompletionNotifier publishes program completion events
type CompletionNotifier interface {
	NotifyProgramCompleted(ctx context.Context, event models.ProgramCompletedEvent) error
}

type progressService struct {
	catalog  CatalogReader
	store    ProgressStore
	notifier CompletionNotifier
	metrics  *metrics.Collector
	retry    retrier
	logger   *zap.Logger
	now      func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(
	catalog CatalogReader,
	store ProgressStore,
	notifier CompletionNotifier,
	collector *metrics.Collector,
	policy RetryPolicy,
	logger *zap.Logger,
) *progressService {
	return &progressService{
		catalog:  catalog,
		store:    store,
		notifier: notifier,
		metrics:  collector,
		retry: retrier{
			policy: policy,
			logger: logger,
			onRetry: func(operation string) {
				collector.StoreRetriesTotal.WithLabelValues(operation).Inc()
			},
		},
		logger: logger,
		now:    time.Now,
	}
}

// MarkVideoComplete records that the user watched a video and recomputes the program's progress.
//
// Unknown program, module or video ids are rejected before anything is written, and so are
// programs still in draft. The rollup itself runs inside the store's write transaction.
func (s *progressService) MarkVideoComplete(ctx context.Context, completion models.VideoCompletion) (*models.ProgramProgress, error) {
	if err := completion.Validate(); err != nil {
		return nil, err
	}

	program, err := s.loadProgram(ctx, completion.UserID, completion.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.Status == models.ProgramLifecycleDraft {
		return nil, models.ErrProgramNotFound
	}

	module := program.FindModule(completion.ModuleID)
	if module == nil {
		return nil, models.ErrModuleNotFound
	}
	if !module.HasVideo(completion.VideoID) {
		return nil, models.ErrVideoNotFound
	}

	update, err := retryValue(ctx, s.retry, "save_completion", func(ctx context.Context) (models.ProgressUpdate, error) {
		return s.store.SaveCompletion(ctx, completion, func(completed models.ProgramCompletion) models.ProgramProgress {
			return progress.Compute(program, completed)
		})
	})
	if err != nil {
		s.metrics.ProgressRecomputeTotal.WithLabelValues("error").Inc()
		s.logger.Error("failed to save completion",
			zap.String("user_id", completion.UserID),
			zap.String("program_id", completion.ProgramID),
			zap.String("video_id", completion.VideoID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save completion: %w", err)
	}

	s.metrics.VideoCompletionsTotal.Inc()
	s.metrics.ProgressRecomputeTotal.WithLabelValues("completion").Inc()
	s.logger.Debug("video completed",
		zap.String("user_id", completion.UserID),
		zap.String("program_id", completion.ProgramID),
		zap.String("module_id", completion.ModuleID),
		zap.String("video_id", completion.VideoID),
		zap.Int("program_progress", update.Progress.ProgramProgress),
	)

	s.notifyIfCompleted(ctx, completion.UserID, completion.ProgramID, update)

	return &update.Progress, nil
}

// GetProgramProgress returns the persisted progress of a user in a program.
// A program the user has not started yet reports zero for every module.
func (s *progressService) GetProgramProgress(ctx context.Context, userID, programID string) (*models.ProgramProgress, error) {
	if err := validateIDs(userID, programID); err != nil {
		return nil, err
	}

	var (
		program *models.Program
		saved   *models.UserProgramProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		program, err = retryValue(gctx, s.retry, "get_program_tree", func(ctx context.Context) (*models.Program, error) {
			return s.catalog.GetProgramTree(ctx, programID)
		})
		return err
	})
	g.Go(func() error {
		var err error
		saved, err = retryValue(gctx, s.retry, "get_progress", func(ctx context.Context) (*models.UserProgramProgress, error) {
			return s.store.GetProgress(ctx, userID, programID)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		if models.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to get program progress",
			zap.String("user_id", userID),
			zap.String("program_id", programID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get program progress: %w", err)
	}

	if saved == nil {
		result := progress.Compute(program, nil)
		return &result, nil
	}

	return &saved.ProgramProgress, nil
}

// ListUserProgress returns the persisted progress of a user in every program they started
func (s *progressService) ListUserProgress(ctx context.Context, userID string) ([]models.UserProgramProgress, error) {
	if err := models.ValidateID("userId", userID); err != nil {
		return nil, err
	}

	list, err := retryValue(ctx, s.retry, "list_progress", func(ctx context.Context) ([]models.UserProgramProgress, error) {
		return s.store.ListProgress(ctx, userID)
	})
	if err != nil {
		s.logger.Error("failed to list progress", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	return list, nil
}

// GetCompletionRecord returns every video the user completed, grouped by program and module
func (s *progressService) GetCompletionRecord(ctx context.Context, userID string) (*models.CompletionRecord, error) {
	if err := models.ValidateID("userId", userID); err != nil {
		return nil, err
	}

	record, err := retryValue(ctx, s.retry, "get_completion_record", func(ctx context.Context) (*models.CompletionRecord, error) {
		return s.store.GetCompletionRecord(ctx, userID)
	})
	if err != nil {
		s.logger.Error("failed to get completion record", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get completion record: %w", err)
	}

	return record, nil
}

// RecalculateProgramProgress recomputes a user's progress against the current catalog without
// adding a completion. Nothing is written when the user has not started the program.
func (s *progressService) RecalculateProgramProgress(ctx context.Context, userID, programID string) (*models.ProgramProgress, error) {
	if err := validateIDs(userID, programID); err != nil {
		return nil, err
	}

	program, err := s.loadProgram(ctx, userID, programID)
	if err != nil {
		return nil, err
	}

	update, err := retryValue(ctx, s.retry, "recalculate_progress", func(ctx context.Context) (models.ProgressUpdate, error) {
		return s.store.RecalculateProgress(ctx, userID, programID, func(completed models.ProgramCompletion) models.ProgramProgress {
			return progress.Compute(program, completed)
		})
	})
	if err != nil {
		s.metrics.ProgressRecomputeTotal.WithLabelValues("error").Inc()
		s.logger.Error("failed to save recalculated progress",
			zap.String("user_id", userID),
			zap.String("program_id", programID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	if update.Written {
		s.metrics.ProgressRecomputeTotal.WithLabelValues("recalculate").Inc()
		s.notifyIfCompleted(ctx, userID, programID, update)
	}

	return &update.Progress, nil
}

// loadProgram fetches the program tree with retries
func (s *progressService) loadProgram(ctx context.Context, userID, programID string) (*models.Program, error) {
	program, err := retryValue(ctx, s.retry, "get_program_tree", func(ctx context.Context) (*models.Program, error) {
		return s.catalog.GetProgramTree(ctx, programID)
	})
	if err == nil {
		return program, nil
	}
	if models.IsNotFound(err) {
		return nil, err
	}

	s.logger.Error("failed to load program",
		zap.String("user_id", userID),
		zap.String("program_id", programID),
		zap.Error(err),
	)
	return nil, fmt.Errorf("failed to load program: %w", err)
}

// notifyIfCompleted publishes a completion event when the write moved the status to completed.
// Failures are logged and counted; the progress write has already committed.
func (s *progressService) notifyIfCompleted(ctx context.Context, userID, programID string, update models.ProgressUpdate) {
	if !update.Completed() {
		return
	}

	s.metrics.ProgramsCompletedTotal.Inc()

	event := models.ProgramCompletedEvent{
		UserID:      userID,
		ProgramID:   programID,
		CompletedAt: s.now().UTC(),
	}
	if err := s.notifier.NotifyProgramCompleted(ctx, event); err != nil {
		s.metrics.NotificationFailedTotal.Inc()
		s.logger.Error("failed to publish program completion",
			zap.String("user_id", userID),
			zap.String("program_id", programID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("program completed",
		zap.String("user_id", userID),
		zap.String("program_id", programID),
	)
}

func validateIDs(userID, programID string) error {
	if err := models.ValidateID("userId", userID); err != nil {
		return err
	}
	return models.ValidateID("programId", programID)
}
