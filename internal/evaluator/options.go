package evaluator

import "strings"

// Response option issue tags.
const (
	OptionIssueNoValid      = "no_valid_options"
	OptionIssueDuplicates   = "duplicate_options"
	OptionIssueYesNoMixed   = "yes_no_mixed_with_other_choices"
	OptionIssueOnlyOne      = "only_one_option"
)

// ValidateResponseOptions checks an option list for degenerate shapes.
// Comparison happens on trimmed lowercase copies; the originals are not
// mutated. no_valid_options short-circuits every other check.
func ValidateResponseOptions(options []string) []string {
	issues := []string{}
	if len(options) == 0 {
		return issues
	}

	valid := make([]string, 0, len(options))
	for _, o := range options {
		if strings.TrimSpace(o) != "" {
			valid = append(valid, o)
		}
	}
	if len(valid) == 0 {
		return append(issues, OptionIssueNoValid)
	}

	normalized := make([]string, len(valid))
	for i, o := range valid {
		normalized[i] = strings.ToLower(strings.TrimSpace(o))
	}

	seen := make(map[string]bool, len(normalized))
	hasDup := false
	hasYes, hasNo := false, false
	for _, o := range normalized {
		if seen[o] {
			hasDup = true
		}
		seen[o] = true
		if o == "yes" {
			hasYes = true
		}
		if o == "no" {
			hasNo = true
		}
	}

	if hasDup {
		issues = append(issues, OptionIssueDuplicates)
	}
	if (hasYes || hasNo) && len(normalized) > 2 {
		issues = append(issues, OptionIssueYesNoMixed)
	}
	if len(valid) == 1 {
		issues = append(issues, OptionIssueOnlyOne)
	}

	return issues
}
