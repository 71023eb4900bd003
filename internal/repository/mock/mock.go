package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/repository"
)

// Repository is an in-memory mock repository for testing.
type Repository struct {
	mu        sync.RWMutex
	surveys   map[uuid.UUID]*domain.Survey
	snapshots map[uuid.UUID]*domain.QuestionSetSnapshot
}

// New creates a new mock repository.
func New() *Repository {
	return &Repository{
		surveys:   make(map[uuid.UUID]*domain.Survey),
		snapshots: make(map[uuid.UUID]*domain.QuestionSetSnapshot),
	}
}

// Surveys

func (r *Repository) CreateSurvey(ctx context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surveys[survey.ID] = survey
	return nil
}

func (r *Repository) GetSurvey(ctx context.Context, id uuid.UUID) (*domain.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (r *Repository) ListSurveys(ctx context.Context) ([]*domain.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Survey, 0, len(r.surveys))
	for _, s := range r.surveys {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *Repository) UpdateSurvey(ctx context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[survey.ID]; !ok {
		return domain.ErrNotFound
	}
	r.surveys[survey.ID] = survey
	return nil
}

func (r *Repository) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[id]; !ok {
		return domain.ErrNotFound
	}
	for snapID, snap := range r.snapshots {
		if snap.SurveyID == id {
			delete(r.snapshots, snapID)
		}
	}
	delete(r.surveys, id)
	return nil
}

// Snapshots

func (r *Repository) CreateSnapshot(ctx context.Context, snapshot *domain.QuestionSetSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.ID] = snapshot
	return nil
}

func (r *Repository) GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.QuestionSetSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snap, nil
}

func (r *Repository) ListSnapshots(ctx context.Context, surveyID uuid.UUID, limit int) ([]*domain.QuestionSetSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.QuestionSetSnapshot
	for _, snap := range r.snapshots {
		if snap.SurveyID == surveyID {
			result = append(result, snap)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *Repository) GetLatestSnapshot(ctx context.Context, surveyID uuid.UUID) (*domain.QuestionSetSnapshot, error) {
	snapshots, err := r.ListSnapshots(ctx, surveyID, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, domain.ErrNotFound
	}
	return snapshots[0], nil
}

// WithTx executes fn directly; the mock has no transaction semantics.
func (r *Repository) WithTx(ctx context.Context, fn func(repository.Repository) error) error {
	return fn(r)
}

func (r *Repository) Close() error { return nil }

var _ repository.Repository = (*Repository)(nil)
