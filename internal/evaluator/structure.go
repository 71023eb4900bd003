package evaluator

import (
	"fmt"

	"github.com/surveyforge/backend/internal/domain"
)

// ValidateSkipLogic checks referential integrity of branch references
// across the whole question set. Defects are findings, not errors: the
// evaluator flags them and callers decide repair policy.
func ValidateSkipLogic(questions []domain.Question) []domain.QuestionIssue {
	issues := []domain.QuestionIssue{}

	ids := make(map[string]bool, len(questions))
	for _, q := range questions {
		ids[q.ID] = true
	}

	for _, q := range questions {
		if q.BranchFrom == nil {
			continue
		}
		if !ids[*q.BranchFrom] {
			issues = append(issues, domain.QuestionIssue{
				Question: q.Text,
				Issue:    fmt.Sprintf("Branch references non-existent question: %s", *q.BranchFrom),
			})
		}
		if q.BranchCondition == nil || q.BranchCondition.Operator == "" {
			issues = append(issues, domain.QuestionIssue{
				Question: q.Text,
				Issue:    "Branch condition missing or invalid",
			})
		}
	}

	return issues
}

// CheckScaleConsistency flags likert questions whose option count
// deviates from the most common likert scale in the set, and likewise for
// rating questions. With zero or one distinct scale size in a category
// there is nothing to be inconsistent with.
func CheckScaleConsistency(questions []domain.Question) []domain.QuestionIssue {
	issues := []domain.QuestionIssue{}
	issues = append(issues, scaleIssues(questions, domain.QuestionTypeLikert, "Likert")...)
	issues = append(issues, scaleIssues(questions, domain.QuestionTypeRating, "rating")...)
	return issues
}

func scaleIssues(questions []domain.Question, qType domain.QuestionType, label string) []domain.QuestionIssue {
	counts := make(map[int]int)
	order := []int{}
	for _, q := range questions {
		if q.Type != qType || len(q.Options) == 0 {
			continue
		}
		n := len(q.Options)
		if counts[n] == 0 {
			order = append(order, n)
		}
		counts[n]++
	}
	if len(counts) < 2 {
		return nil
	}

	// Mode; ties broken by first appearance in question order.
	dominant := order[0]
	for _, n := range order[1:] {
		if counts[n] > counts[dominant] {
			dominant = n
		}
	}

	var issues []domain.QuestionIssue
	for _, q := range questions {
		if q.Type != qType || len(q.Options) == 0 || len(q.Options) == dominant {
			continue
		}
		issues = append(issues, domain.QuestionIssue{
			Question: q.Text,
			Issue: fmt.Sprintf("Inconsistent %s scale: uses %d-point scale but survey mostly uses %d-point",
				label, len(q.Options), dominant),
		})
	}
	return issues
}
