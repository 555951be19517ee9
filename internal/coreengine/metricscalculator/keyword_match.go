package metricscalculator

import "strings"

// SplitKeywords parses a comma-separated keyword specification into a
// cleaned list: entries are trimmed and blanks dropped, original order kept.
func SplitKeywords(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	parts := strings.Split(spec, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// CheckAnswerWithKeywords reports whether the answer contains every keyword
// of the comma-separated spec, matching case-insensitively on substring
// containment. The second return value lists the keywords that did not
// appear, in spec order.
//
// An empty or blank spec yields (false, nil): a missing keyword list is a
// configuration gap, not a vacuously passing answer.
func CheckAnswerWithKeywords(answer, spec string) (bool, []string) {
	return CheckAnswerWithKeywordList(answer, SplitKeywords(spec))
}

// CheckAnswerWithKeywordList is CheckAnswerWithKeywords over an
// already-parsed keyword list.
func CheckAnswerWithKeywordList(answer string, keywords []string) (bool, []string) {
	if len(keywords) == 0 {
		return false, nil
	}
	lowered := strings.ToLower(answer)
	var missing []string
	for _, k := range keywords {
		if !strings.Contains(lowered, strings.ToLower(k)) {
			missing = append(missing, k)
		}
	}
	return len(missing) == 0, missing
}
