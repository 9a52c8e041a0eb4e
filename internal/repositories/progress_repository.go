package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/patientportal/backend/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new repository for completed videos and derived progress
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// GetCompletionRecord retrieves every video a user completed, grouped by program and module
func (r *progressRepository) GetCompletionRecord(ctx context.Context, userID string) (*models.CompletionRecord, error) {
	query := `
		SELECT program_id, module_id, video_id
		FROM user_completed_videos
		WHERE user_id = ?
		ORDER BY program_id, module_id, completed_at, video_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed videos: %w", err)
	}
	defer rows.Close()

	record := &models.CompletionRecord{
		UserID:   userID,
		Programs: map[string]models.ProgramCompletion{},
	}
	for rows.Next() {
		var programID, moduleID, videoID string
		if err := rows.Scan(&programID, &moduleID, &videoID); err != nil {
			return nil, fmt.Errorf("failed to scan completed video: %w", err)
		}
		if record.Programs[programID] == nil {
			record.Programs[programID] = models.ProgramCompletion{}
		}
		record.Programs[programID][moduleID] = append(record.Programs[programID][moduleID], videoID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return record, nil
}

// GetProgress retrieves the persisted progress of a user in a program.
// It returns nil without error when the user has not started the program.
func (r *progressRepository) GetProgress(ctx context.Context, userID, programID string) (*models.UserProgramProgress, error) {
	query := `
		SELECT progress, status, updated_at
		FROM user_program_progress
		WHERE user_id = ? AND program_id = ?
		LIMIT 1
	`

	progress := models.UserProgramProgress{ProgramID: programID}
	err := r.db.QueryRowContext(ctx, query, userID, programID).Scan(
		&progress.ProgramProgress.ProgramProgress,
		&progress.ProgramStatus,
		&progress.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program progress: %w", err)
	}

	moduleQuery := `
		SELECT module_id, percentage
		FROM user_module_progress
		WHERE user_id = ? AND program_id = ?
	`

	rows, err := r.db.QueryContext(ctx, moduleQuery, userID, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query module progress: %w", err)
	}
	defer rows.Close()

	progress.ModuleProgress = map[string]int{}
	for rows.Next() {
		var moduleID string
		var percentage int
		if err := rows.Scan(&moduleID, &percentage); err != nil {
			return nil, fmt.Errorf("failed to scan module progress: %w", err)
		}
		progress.ModuleProgress[moduleID] = percentage
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &progress, nil
}

// ListProgress retrieves the persisted progress of a user in every program they started
func (r *progressRepository) ListProgress(ctx context.Context, userID string) ([]models.UserProgramProgress, error) {
	query := `
		SELECT program_id, progress, status, updated_at
		FROM user_program_progress
		WHERE user_id = ?
		ORDER BY program_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query program progress: %w", err)
	}
	defer rows.Close()

	list := []models.UserProgramProgress{}
	index := map[string]int{}
	for rows.Next() {
		p := models.UserProgramProgress{}
		if err := rows.Scan(&p.ProgramID, &p.ProgramProgress.ProgramProgress, &p.ProgramStatus, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan program progress: %w", err)
		}
		p.ModuleProgress = map[string]int{}
		index[p.ProgramID] = len(list)
		list = append(list, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(list) == 0 {
		return list, nil
	}

	moduleQuery := `
		SELECT program_id, module_id, percentage
		FROM user_module_progress
		WHERE user_id = ?
	`

	moduleRows, err := r.db.QueryContext(ctx, moduleQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query module progress: %w", err)
	}
	defer moduleRows.Close()

	for moduleRows.Next() {
		var programID, moduleID string
		var percentage int
		if err := moduleRows.Scan(&programID, &moduleID, &percentage); err != nil {
			return nil, fmt.Errorf("failed to scan module progress: %w", err)
		}
		if i, ok := index[programID]; ok {
			list[i].ModuleProgress[moduleID] = percentage
		}
	}

	if err = moduleRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return list, nil
}

// SaveCompletion records a completed video and overwrites the derived progress of its program
// in one transaction. The user's progress row is locked before the completion set is read, so
// concurrent completions in one program are serialized and compute always sees every video.
// Recording an already completed video is a no-op for the completion set.
func (r *progressRepository) SaveCompletion(ctx context.Context, completion models.VideoCompletion, compute models.ProgressFunc) (models.ProgressUpdate, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.ProgressUpdate{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	previous, err := lockProgress(ctx, tx, completion.UserID, completion.ProgramID)
	if err != nil {
		return models.ProgressUpdate{}, err
	}

	query := `
		INSERT IGNORE INTO user_completed_videos (user_id, program_id, module_id, video_id)
		VALUES (?, ?, ?, ?)
	`

	if _, err := tx.ExecContext(ctx, query,
		completion.UserID,
		completion.ProgramID,
		completion.ModuleID,
		completion.VideoID,
	); err != nil {
		return models.ProgressUpdate{}, fmt.Errorf("failed to record completed video: %w", err)
	}

	completed, err := loadCompletion(ctx, tx, completion.UserID, completion.ProgramID)
	if err != nil {
		return models.ProgressUpdate{}, err
	}

	result := compute(completed)
	if err := writeProgress(ctx, tx, completion.UserID, completion.ProgramID, result); err != nil {
		return models.ProgressUpdate{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.ProgressUpdate{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ProgressUpdate{PreviousStatus: previous, Progress: result, Written: true}, nil
}

// RecalculateProgress re-derives the progress of a program from the stored completion set under
// the same row lock as SaveCompletion. Nothing is written when the user has not started the program.
func (r *progressRepository) RecalculateProgress(ctx context.Context, userID, programID string, compute models.ProgressFunc) (models.ProgressUpdate, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.ProgressUpdate{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	previous, err := lockProgress(ctx, tx, userID, programID)
	if err != nil {
		return models.ProgressUpdate{}, err
	}

	completed, err := loadCompletion(ctx, tx, userID, programID)
	if err != nil {
		return models.ProgressUpdate{}, err
	}

	result := compute(completed)
	if previous == "" && len(completed) == 0 {
		// the deferred rollback drops the placeholder row
		return models.ProgressUpdate{Progress: result}, nil
	}

	if err := writeProgress(ctx, tx, userID, programID, result); err != nil {
		return models.ProgressUpdate{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.ProgressUpdate{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ProgressUpdate{PreviousStatus: previous, Progress: result, Written: true}, nil
}

// lockProgress takes the row lock of a user's program progress for the rest of tx.
// A placeholder row is inserted when the user has not started the program, and the
// returned status is then empty.
func lockProgress(ctx context.Context, tx *sql.Tx, userID, programID string) (models.ProgressStatus, error) {
	status, err := selectProgressForUpdate(ctx, tx, userID, programID)
	if err != sql.ErrNoRows {
		return status, err
	}

	insertQuery := `
		INSERT IGNORE INTO user_program_progress (user_id, program_id, progress, status)
		VALUES (?, ?, 0, ?)
	`
	res, err := tx.ExecContext(ctx, insertQuery, userID, programID, models.ProgressStatusActive)
	if err != nil {
		return "", fmt.Errorf("failed to lock program progress: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to lock program progress: %w", err)
	}
	if inserted > 0 {
		return "", nil
	}

	// another request inserted the row first
	status, err = selectProgressForUpdate(ctx, tx, userID, programID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("failed to lock program progress: %w", err)
	}
	return status, err
}

// selectProgressForUpdate returns sql.ErrNoRows unwrapped when the row does not exist
func selectProgressForUpdate(ctx context.Context, tx *sql.Tx, userID, programID string) (models.ProgressStatus, error) {
	query := `
		SELECT status
		FROM user_program_progress
		WHERE user_id = ? AND program_id = ?
		FOR UPDATE
	`

	var status models.ProgressStatus
	err := tx.QueryRowContext(ctx, query, userID, programID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock program progress: %w", err)
	}

	return status, nil
}

// loadCompletion reads the videos a user completed in a program, grouped by module
func loadCompletion(ctx context.Context, tx *sql.Tx, userID, programID string) (models.ProgramCompletion, error) {
	query := `
		SELECT module_id, video_id
		FROM user_completed_videos
		WHERE user_id = ? AND program_id = ?
		ORDER BY module_id, completed_at, video_id
	`

	rows, err := tx.QueryContext(ctx, query, userID, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed videos: %w", err)
	}
	defer rows.Close()

	completion := models.ProgramCompletion{}
	for rows.Next() {
		var moduleID, videoID string
		if err := rows.Scan(&moduleID, &videoID); err != nil {
			return nil, fmt.Errorf("failed to scan completed video: %w", err)
		}
		completion[moduleID] = append(completion[moduleID], videoID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return completion, nil
}

// writeProgress replaces the module progress rows and upserts the program row
func writeProgress(ctx context.Context, tx *sql.Tx, userID, programID string, result models.ProgramProgress) error {
	deleteQuery := `
		DELETE FROM user_module_progress
		WHERE user_id = ? AND program_id = ?
	`
	if _, err := tx.ExecContext(ctx, deleteQuery, userID, programID); err != nil {
		return fmt.Errorf("failed to clear module progress: %w", err)
	}

	if len(result.ModuleProgress) > 0 {
		moduleIDs := make([]string, 0, len(result.ModuleProgress))
		for id := range result.ModuleProgress {
			moduleIDs = append(moduleIDs, id)
		}
		slices.Sort(moduleIDs)

		placeholders := make([]string, len(moduleIDs))
		args := make([]any, 0, len(moduleIDs)*4)
		for i, moduleID := range moduleIDs {
			placeholders[i] = "(?, ?, ?, ?)"
			args = append(args, userID, programID, moduleID, result.ModuleProgress[moduleID])
		}

		insertQuery := fmt.Sprintf(`
			INSERT INTO user_module_progress (user_id, program_id, module_id, percentage)
			VALUES %s
		`, strings.Join(placeholders, ","))

		if _, err := tx.ExecContext(ctx, insertQuery, args...); err != nil {
			return fmt.Errorf("failed to write module progress: %w", err)
		}
	}

	upsertQuery := `
		INSERT INTO user_program_progress (user_id, program_id, progress, status)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			progress = VALUES(progress),
			status = VALUES(status)
	`
	if _, err := tx.ExecContext(ctx, upsertQuery, userID, programID, result.ProgramProgress, result.ProgramStatus); err != nil {
		return fmt.Errorf("failed to write program progress: %w", err)
	}

	return nil
}
