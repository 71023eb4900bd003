package evaluator

import "github.com/surveyforge/backend/internal/domain"

// NeedsRegeneration reports whether any record in the set fails any
// quality check. One failing question condemns the whole set; the
// regeneration prompt carries per-question feedback so the generator
// knows which ones to fix.
func NeedsRegeneration(evals []domain.EvaluationRecord, t Thresholds) bool {
	for _, e := range evals {
		if recordIssueCount(e, t) > 0 {
			return true
		}
	}
	return false
}

// IssueCount tallies every failing check across the set. The
// regeneration loop uses it to rank candidate sets when no attempt
// reaches a clean pass.
func IssueCount(evals []domain.EvaluationRecord, t Thresholds) int {
	total := 0
	for _, e := range evals {
		total += recordIssueCount(e, t)
	}
	return total
}

func recordIssueCount(e domain.EvaluationRecord, t Thresholds) int {
	n := 0
	if e.LLMScores.Relevance < t.MinLLMScore {
		n++
	}
	if e.LLMScores.Clarity < t.MinLLMScore {
		n++
	}
	if e.LLMScores.Neutrality < t.MinLLMScore {
		n++
	}
	if e.LLMScores.Answerability < t.MinLLMScore {
		n++
	}
	if e.VariableRelevance < t.relevanceFloor(e.VariableRole) {
		n++
	}
	if e.MaxDuplicateSimilarity > t.MaxDuplicateSimilarity {
		n++
	}
	n += len(e.RuleViolations)
	n += len(e.ResponseOptionIssues)
	if e.SkipLogicIssue != nil {
		n++
	}
	if e.ResponseScaleIssue != nil {
		n++
	}
	return n
}
