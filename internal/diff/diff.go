package diff

import (
	"reflect"
	"sort"

	"github.com/surveyforge/backend/internal/domain"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Change represents a single change between two question sets, keyed by
// question ID.
type Change struct {
	QuestionID string           `json:"question_id"`
	Type       ChangeType       `json:"type"`
	Fields     []string         `json:"fields,omitempty"`
	Old        *domain.Question `json:"old,omitempty"`
	New        *domain.Question `json:"new,omitempty"`
}

// Result contains the diff between two question sets.
type Result struct {
	Changes  []Change `json:"changes"`
	Summary  Summary  `json:"summary"`
	BaseID   string   `json:"base_id"`
	TargetID string   `json:"target_id"`
}

// Summary provides aggregate counts.
type Summary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}

// QuestionSets computes the diff between two question sets. Questions
// are matched by ID; a question present in both sets with any field
// changed is reported as modified with the changed field names.
func QuestionSets(base, target []domain.Question, baseID, targetID string) *Result {
	baseByID := make(map[string]*domain.Question, len(base))
	for i := range base {
		baseByID[base[i].ID] = &base[i]
	}
	targetByID := make(map[string]*domain.Question, len(target))
	for i := range target {
		targetByID[target[i].ID] = &target[i]
	}

	var changes []Change

	for i := range base {
		old := &base[i]
		if _, ok := targetByID[old.ID]; !ok {
			changes = append(changes, Change{
				QuestionID: old.ID,
				Type:       ChangeRemoved,
				Old:        old,
			})
		}
	}

	for i := range target {
		next := &target[i]
		old, ok := baseByID[next.ID]
		if !ok {
			changes = append(changes, Change{
				QuestionID: next.ID,
				Type:       ChangeAdded,
				New:        next,
			})
			continue
		}
		if fields := changedFields(old, next); len(fields) > 0 {
			changes = append(changes, Change{
				QuestionID: next.ID,
				Type:       ChangeModified,
				Fields:     fields,
				Old:        old,
				New:        next,
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].QuestionID < changes[j].QuestionID
	})

	summary := Summary{Total: len(changes)}
	for _, c := range changes {
		switch c.Type {
		case ChangeAdded:
			summary.Added++
		case ChangeRemoved:
			summary.Removed++
		case ChangeModified:
			summary.Modified++
		}
	}

	return &Result{
		Changes:  changes,
		Summary:  summary,
		BaseID:   baseID,
		TargetID: targetID,
	}
}

func changedFields(old, next *domain.Question) []string {
	var fields []string
	if old.Text != next.Text {
		fields = append(fields, "text")
	}
	if old.Type != next.Type {
		fields = append(fields, "type")
	}
	if old.Variable != next.Variable {
		fields = append(fields, "variable")
	}
	if old.VariableRole != next.VariableRole {
		fields = append(fields, "variableRole")
	}
	if !reflect.DeepEqual(old.Options, next.Options) {
		fields = append(fields, "options")
	}
	if old.Required != next.Required {
		fields = append(fields, "required")
	}
	if !stringPtrEqual(old.BranchFrom, next.BranchFrom) {
		fields = append(fields, "branchFrom")
	}
	if !reflect.DeepEqual(old.BranchCondition, next.BranchCondition) {
		fields = append(fields, "branchCondition")
	}
	return fields
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
