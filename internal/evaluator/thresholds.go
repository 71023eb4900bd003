package evaluator

import "github.com/surveyforge/backend/internal/domain"

// Thresholds holds the quality floors used by the regeneration decision,
// the issue tally, and the feedback builder. One threshold set drives all
// three so a question flagged for regeneration is always the one the
// feedback describes.
type Thresholds struct {
	// MinLLMScore is the floor for each judge sub-score (clarity,
	// neutrality, answerability, relevance).
	MinLLMScore int `mapstructure:"min_llm_score"`

	// MinVariableRelevance is the cosine-similarity floor between a
	// question and its assigned driver/dependent variable.
	MinVariableRelevance float64 `mapstructure:"min_variable_relevance"`

	// MinControlRelevance is the looser floor applied to control
	// (demographic) variables.
	MinControlRelevance float64 `mapstructure:"min_control_relevance"`

	// MaxDuplicateSimilarity is the ceiling above which two questions
	// count as duplicates.
	MaxDuplicateSimilarity float64 `mapstructure:"max_duplicate_similarity"`
}

// DefaultThresholds returns the standard quality floors.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinLLMScore:            4,
		MinVariableRelevance:   0.3,
		MinControlRelevance:    0.2,
		MaxDuplicateSimilarity: 0.85,
	}
}

// relevanceFloor returns the role-aware variable-relevance floor.
func (t Thresholds) relevanceFloor(role domain.VariableRole) float64 {
	if role == domain.RoleControl {
		return t.MinControlRelevance
	}
	return t.MinVariableRelevance
}
