package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/surveyforge/backend/internal/domain"
)

// Repository defines the interface for persistent storage.
type Repository interface {
	// Surveys
	CreateSurvey(ctx context.Context, survey *domain.Survey) error
	GetSurvey(ctx context.Context, id uuid.UUID) (*domain.Survey, error)
	ListSurveys(ctx context.Context) ([]*domain.Survey, error)
	UpdateSurvey(ctx context.Context, survey *domain.Survey) error
	DeleteSurvey(ctx context.Context, id uuid.UUID) error

	// Question set snapshots
	CreateSnapshot(ctx context.Context, snapshot *domain.QuestionSetSnapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.QuestionSetSnapshot, error)
	ListSnapshots(ctx context.Context, surveyID uuid.UUID, limit int) ([]*domain.QuestionSetSnapshot, error)
	GetLatestSnapshot(ctx context.Context, surveyID uuid.UUID) (*domain.QuestionSetSnapshot, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Repository) error) error

	// Lifecycle
	Close() error
}
