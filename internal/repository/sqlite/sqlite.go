package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/repository"
)

// dbtx is the common surface of *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLiteRepository implements Repository using SQLite. Structured
// columns (config, variable model, questions, evaluations) are stored as
// JSON text; timestamps as RFC3339 strings.
type SQLiteRepository struct {
	db *sql.DB // nil inside a transaction wrapper
	q  dbtx
}

// New creates a new SQLite repository.
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	repo := &SQLiteRepository{db: db, q: db}
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS surveys (
		id TEXT PRIMARY KEY,
		config TEXT NOT NULL, -- JSON object: SurveyConfig
		variable_model TEXT NOT NULL, -- JSON object: VariableModel
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		survey_id TEXT NOT NULL REFERENCES surveys(id),
		questions TEXT NOT NULL, -- JSON array
		evaluations TEXT NOT NULL, -- JSON array
		regenerated INTEGER NOT NULL DEFAULT 0,
		attempts_made INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_survey ON snapshots(survey_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);
	`

	_, err := r.q.ExecContext(context.Background(), schema)
	return err
}

func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// WithTx executes fn within a transaction. Inside a transaction it
// simply reuses the current one.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(repository.Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SQLiteRepository{q: tx}
	if err := fn(txRepo); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Surveys

func (r *SQLiteRepository) CreateSurvey(ctx context.Context, s *domain.Survey) error {
	configJSON, err := json.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	modelJSON, err := json.Marshal(s.VariableModel)
	if err != nil {
		return fmt.Errorf("marshal variable model: %w", err)
	}

	_, err = r.q.ExecContext(ctx,
		`INSERT INTO surveys (id, config, variable_model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID.String(), string(configJSON), string(modelJSON),
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSurvey(ctx context.Context, id uuid.UUID) (*domain.Survey, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, config, variable_model, created_at, updated_at FROM surveys WHERE id = ?`, id.String())

	var s domain.Survey
	var idStr, configJSON, modelJSON, createdStr, updatedStr string
	if err := row.Scan(&idStr, &configJSON, &modelJSON, &createdStr, &updatedStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := scanSurvey(&s, idStr, configJSON, modelJSON, createdStr, updatedStr); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepository) ListSurveys(ctx context.Context) ([]*domain.Survey, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, config, variable_model, created_at, updated_at FROM surveys ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var surveys []*domain.Survey
	for rows.Next() {
		var s domain.Survey
		var idStr, configJSON, modelJSON, createdStr, updatedStr string
		if err := rows.Scan(&idStr, &configJSON, &modelJSON, &createdStr, &updatedStr); err != nil {
			return nil, err
		}
		if err := scanSurvey(&s, idStr, configJSON, modelJSON, createdStr, updatedStr); err != nil {
			return nil, err
		}
		surveys = append(surveys, &s)
	}
	return surveys, rows.Err()
}

func (r *SQLiteRepository) UpdateSurvey(ctx context.Context, s *domain.Survey) error {
	configJSON, err := json.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	modelJSON, err := json.Marshal(s.VariableModel)
	if err != nil {
		return fmt.Errorf("marshal variable model: %w", err)
	}

	res, err := r.q.ExecContext(ctx,
		`UPDATE surveys SET config = ?, variable_model = ?, updated_at = ? WHERE id = ?`,
		string(configJSON), string(modelJSON), s.UpdatedAt.Format(time.RFC3339), s.ID.String())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	idStr := id.String()
	if _, err := r.q.ExecContext(ctx, `DELETE FROM snapshots WHERE survey_id = ?`, idStr); err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, idStr)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSurvey(s *domain.Survey, idStr, configJSON, modelJSON, createdStr, updatedStr string) error {
	var err error
	s.ID, err = uuid.Parse(idStr)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(configJSON), &s.Config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := json.Unmarshal([]byte(modelJSON), &s.VariableModel); err != nil {
		return fmt.Errorf("unmarshal variable model: %w", err)
	}
	s.CreatedAt, err = time.Parse(time.RFC3339, createdStr)
	if err != nil {
		return err
	}
	s.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr)
	return err
}

// Snapshots

func (r *SQLiteRepository) CreateSnapshot(ctx context.Context, snap *domain.QuestionSetSnapshot) error {
	questionsJSON, err := json.Marshal(snap.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	evaluationsJSON, err := json.Marshal(snap.Evaluations)
	if err != nil {
		return fmt.Errorf("marshal evaluations: %w", err)
	}

	regenerated := 0
	if snap.Regenerated {
		regenerated = 1
	}

	_, err = r.q.ExecContext(ctx,
		`INSERT INTO snapshots (id, survey_id, questions, evaluations, regenerated, attempts_made, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), snap.SurveyID.String(), string(questionsJSON), string(evaluationsJSON),
		regenerated, snap.AttemptsMade, snap.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.QuestionSetSnapshot, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, survey_id, questions, evaluations, regenerated, attempts_made, created_at
		 FROM snapshots WHERE id = ?`, id.String())
	snap, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return snap, err
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context, surveyID uuid.UUID, limit int) ([]*domain.QuestionSetSnapshot, error) {
	query := `SELECT id, survey_id, questions, evaluations, regenerated, attempts_made, created_at
		 FROM snapshots WHERE survey_id = ? ORDER BY created_at DESC`
	args := []interface{}{surveyID.String()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.QuestionSetSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (r *SQLiteRepository) GetLatestSnapshot(ctx context.Context, surveyID uuid.UUID) (*domain.QuestionSetSnapshot, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, survey_id, questions, evaluations, regenerated, attempts_made, created_at
		 FROM snapshots WHERE survey_id = ? ORDER BY created_at DESC, id LIMIT 1`, surveyID.String())
	snap, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return snap, err
}

func scanSnapshot(scan func(dest ...interface{}) error) (*domain.QuestionSetSnapshot, error) {
	var snap domain.QuestionSetSnapshot
	var idStr, surveyIDStr, questionsJSON, evaluationsJSON, createdStr string
	var regenerated int
	if err := scan(&idStr, &surveyIDStr, &questionsJSON, &evaluationsJSON, &regenerated, &snap.AttemptsMade, &createdStr); err != nil {
		return nil, err
	}

	var err error
	snap.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	snap.SurveyID, err = uuid.Parse(surveyIDStr)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questionsJSON), &snap.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal([]byte(evaluationsJSON), &snap.Evaluations); err != nil {
		return nil, fmt.Errorf("unmarshal evaluations: %w", err)
	}
	snap.Regenerated = regenerated != 0
	snap.CreatedAt, err = time.Parse(time.RFC3339, createdStr)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Ensure the implementation satisfies the interface
var _ repository.Repository = (*SQLiteRepository)(nil)
