package evaluator

import (
	"fmt"
	"strings"

	"github.com/surveyforge/backend/internal/domain"
)

// BuildFeedback renders the evaluation findings as regeneration
// guidance for the question generator. Every check uses the same
// thresholds as the regeneration decision, so each flagged question
// lists exactly the problems that condemned the set.
func BuildFeedback(evals []domain.EvaluationRecord, topic string, t Thresholds) string {
	type flagged struct {
		question string
		problems []string
	}
	var bad []flagged

	for _, e := range evals {
		var p []string
		if e.LLMScores.Relevance < t.MinLLMScore {
			p = append(p, fmt.Sprintf("low relevance to topic (%d/5)", e.LLMScores.Relevance))
		}
		if e.LLMScores.Clarity < t.MinLLMScore {
			p = append(p, fmt.Sprintf("low clarity (%d/5)", e.LLMScores.Clarity))
		}
		if e.LLMScores.Neutrality < t.MinLLMScore {
			p = append(p, fmt.Sprintf("potential bias or leading language (%d/5)", e.LLMScores.Neutrality))
		}
		if e.LLMScores.Answerability < t.MinLLMScore {
			p = append(p, fmt.Sprintf("low answerability (%d/5)", e.LLMScores.Answerability))
		}
		if e.VariableRelevance < t.relevanceFloor(e.VariableRole) {
			p = append(p, fmt.Sprintf("question doesn't match its variable %q (similarity: %g)",
				e.Variable, e.VariableRelevance))
		}
		if e.MaxDuplicateSimilarity > t.MaxDuplicateSimilarity {
			p = append(p, "too similar to another question")
		}
		if len(e.RuleViolations) > 0 {
			p = append(p, fmt.Sprintf("rule violations: %s", strings.Join(e.RuleViolations, ", ")))
		}
		if len(e.ResponseOptionIssues) > 0 {
			p = append(p, fmt.Sprintf("response option issues: %s", strings.Join(e.ResponseOptionIssues, ", ")))
		}
		if e.SkipLogicIssue != nil {
			p = append(p, issueText(e.SkipLogicIssue, "invalid skip logic"))
		}
		if e.ResponseScaleIssue != nil {
			p = append(p, issueText(e.ResponseScaleIssue, "inconsistent response scale"))
		}
		if e.LLMScores.Answerability < t.MinLLMScore || e.LLMScores.Clarity < t.MinLLMScore {
			p = append(p, "possible double-barreled question; split into separate questions, each measuring one thing only")
		}
		if len(p) > 0 {
			bad = append(bad, flagged{question: e.Question, problems: p})
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Survey topic: %s\n\n", topic)
	b.WriteString("The following questions need improvement:\n\n")
	for _, f := range bad {
		fmt.Fprintf(&b, "- %s\n  Problems: %s\n", f.question, strings.Join(f.problems, ", "))
	}
	b.WriteString("\nRegenerate improved questions that better match the topic and their assigned variables.")
	return b.String()
}

func issueText(issue *domain.QuestionIssue, fallback string) string {
	if issue.Issue != "" {
		return issue.Issue
	}
	return fallback
}
