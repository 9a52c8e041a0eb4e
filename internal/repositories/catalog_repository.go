package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/patientportal/backend/internal/models"
)

// mysqlErrNoReferencedRow is returned when a foreign key points at a missing parent row
const mysqlErrNoReferencedRow = 1452

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new course catalog repository
func NewCatalogRepository(db *sql.DB) *catalogRepository {
	return &catalogRepository{
		db: db,
	}
}

// GetProgramTree retrieves a program with its modules and videos, ordered by sort order then id.
// Both reads run in one read-only transaction so the tree is a consistent snapshot.
func (r *catalogRepository) GetProgramTree(ctx context.Context, programID string) (*models.Program, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, name, description, status
		FROM programs
		WHERE id = ?
		LIMIT 1
	`

	var program models.Program
	err = tx.QueryRowContext(ctx, query, programID).Scan(
		&program.ID,
		&program.Name,
		&program.Description,
		&program.Status,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	treeQuery := `
		SELECT
			m.id,
			m.title,
			m.sort_order,
			v.id,
			v.title,
			v.url,
			v.duration_seconds,
			v.sort_order
		FROM modules m
		LEFT JOIN videos v ON v.module_id = m.id
		WHERE m.program_id = ?
		ORDER BY m.sort_order, m.id, v.sort_order, v.id
	`

	rows, err := tx.QueryContext(ctx, treeQuery, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query program modules: %w", err)
	}
	defer rows.Close()

	program.Modules = []models.Module{}
	for rows.Next() {
		var (
			module        models.Module
			videoID       sql.NullString
			videoTitle    sql.NullString
			videoURL      sql.NullString
			videoDuration sql.NullInt64
			videoOrder    sql.NullInt64
		)
		if err := rows.Scan(
			&module.ID,
			&module.Title,
			&module.Order,
			&videoID,
			&videoTitle,
			&videoURL,
			&videoDuration,
			&videoOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan module row: %w", err)
		}

		last := len(program.Modules) - 1
		if last < 0 || program.Modules[last].ID != module.ID {
			module.ProgramID = program.ID
			module.Videos = []models.Video{}
			program.Modules = append(program.Modules, module)
			last++
		}

		if videoID.Valid {
			program.Modules[last].Videos = append(program.Modules[last].Videos, models.Video{
				ID:              videoID.String,
				ModuleID:        module.ID,
				Title:           videoTitle.String,
				URL:             videoURL.String,
				DurationSeconds: int(videoDuration.Int64),
				Order:           int(videoOrder.Int64),
			})
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// the column collation may order id ties differently from byte order
	program.SortTree()

	return &program, nil
}

// ListPrograms retrieves programs with module and video counts, optionally filtered by status
func (r *catalogRepository) ListPrograms(ctx context.Context, status *models.ProgramLifecycle) ([]models.ProgramListItem, error) {
	whereClause := ""
	args := []any{}
	if status != nil {
		whereClause = "WHERE p.status = ?"
		args = append(args, *status)
	}

	query := fmt.Sprintf(`
		SELECT
			p.id,
			p.name,
			p.description,
			p.status,
			COUNT(DISTINCT m.id) as module_count,
			COUNT(v.id) as video_count
		FROM programs p
		LEFT JOIN modules m ON m.program_id = p.id
		LEFT JOIN videos v ON v.module_id = m.id
		%s
		GROUP BY p.id, p.name, p.description, p.status
		ORDER BY p.name, p.id
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	programs := []models.ProgramListItem{}
	for rows.Next() {
		var p models.ProgramListItem
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.ModuleCount, &p.VideoCount); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return programs, nil
}

// CreateProgram inserts a new program
func (r *catalogRepository) CreateProgram(ctx context.Context, program *models.Program) error {
	query := `
		INSERT INTO programs (id, name, description, status)
		VALUES (?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		program.ID,
		program.Name,
		program.Description,
		program.Status,
	); err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}

	return nil
}

// UpdateProgram applies the non-nil fields of req to the program
func (r *catalogRepository) UpdateProgram(ctx context.Context, programID string, req *models.UpdateProgramRequest) error {
	var setParts []string
	var args []any

	if req.Name != nil {
		setParts = append(setParts, "name = ?")
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		setParts = append(setParts, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Status != nil {
		setParts = append(setParts, "status = ?")
		args = append(args, *req.Status)
	}

	return r.update(ctx, "programs", programID, setParts, args, models.ErrProgramNotFound)
}

// DeleteProgram deletes a program; modules and videos are removed by cascade
func (r *catalogRepository) DeleteProgram(ctx context.Context, programID string) error {
	return r.delete(ctx, "programs", programID, models.ErrProgramNotFound)
}

// CreateModule inserts a new module into an existing program
func (r *catalogRepository) CreateModule(ctx context.Context, module *models.Module) error {
	query := `
		INSERT INTO modules (id, program_id, title, sort_order)
		VALUES (?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		module.ID,
		module.ProgramID,
		module.Title,
		module.Order,
	); err != nil {
		if isMissingParent(err) {
			return models.ErrProgramNotFound
		}
		return fmt.Errorf("failed to create module: %w", err)
	}

	return nil
}

// UpdateModule applies the non-nil fields of req to the module
func (r *catalogRepository) UpdateModule(ctx context.Context, moduleID string, req *models.UpdateModuleRequest) error {
	var setParts []string
	var args []any

	if req.Title != nil {
		setParts = append(setParts, "title = ?")
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Order != nil {
		setParts = append(setParts, "sort_order = ?")
		args = append(args, *req.Order)
	}

	return r.update(ctx, "modules", moduleID, setParts, args, models.ErrModuleNotFound)
}

// DeleteModule deletes a module; videos are removed by cascade
func (r *catalogRepository) DeleteModule(ctx context.Context, moduleID string) error {
	return r.delete(ctx, "modules", moduleID, models.ErrModuleNotFound)
}

// CreateVideo inserts a new video into an existing module
func (r *catalogRepository) CreateVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, module_id, title, url, duration_seconds, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		video.ID,
		video.ModuleID,
		video.Title,
		video.URL,
		video.DurationSeconds,
		video.Order,
	); err != nil {
		if isMissingParent(err) {
			return models.ErrModuleNotFound
		}
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// UpdateVideo applies the non-nil fields of req to the video
func (r *catalogRepository) UpdateVideo(ctx context.Context, videoID string, req *models.UpdateVideoRequest) error {
	var setParts []string
	var args []any

	if req.Title != nil {
		setParts = append(setParts, "title = ?")
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.URL != nil {
		setParts = append(setParts, "url = ?")
		args = append(args, *req.URL)
	}
	if req.DurationSeconds != nil {
		setParts = append(setParts, "duration_seconds = ?")
		args = append(args, *req.DurationSeconds)
	}
	if req.Order != nil {
		setParts = append(setParts, "sort_order = ?")
		args = append(args, *req.Order)
	}

	return r.update(ctx, "videos", videoID, setParts, args, models.ErrVideoNotFound)
}

// DeleteVideo deletes a video
func (r *catalogRepository) DeleteVideo(ctx context.Context, videoID string) error {
	return r.delete(ctx, "videos", videoID, models.ErrVideoNotFound)
}

// update runs an UPDATE by primary key. The DSN sets clientFoundRows, so zero rows means a missing row.
func (r *catalogRepository) update(ctx context.Context, table, id string, setParts []string, args []any, notFound error) error {
	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = ?
	`, table, strings.Join(setParts, ", "))

	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

func (r *catalogRepository) delete(ctx context.Context, table, id string, notFound error) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

func isMissingParent(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrNoReferencedRow
}
