package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Default column names for the QA dataset. Callers may override them per
// file; unknown names still fall back to the alias lists below.
const (
	DefaultIDColumn       = "id"
	DefaultQuestionColumn = "zh_question"
	DefaultAnswerColumn   = "Ans-ch"
)

// columnAliases maps a logical column key to the header spellings seen in
// the wild. Datasets arrive from spreadsheets with inconsistent headers,
// so resolution tries the caller's preferred name first and then every
// known alias.
var columnAliases = map[string][]string{
	"id":       {"id", "編號"},
	"question": {"zh_question", "中文問題", "Q-ch", "Q_CH", "Q_ch", "QCH"},
	"answer":   {"Ans-ch", "中文回答", "Answer-ch", "A-ch"},
}

// NormalizeHeader trims a header cell and folds full-width parentheses to
// ASCII so user-supplied column names and spreadsheet exports compare
// equal.
func NormalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "（", "(")
	s = strings.ReplaceAll(s, "）", ")")
	return strings.TrimPrefix(s, "\uFEFF")
}

// ResolveColumn picks the actual header matching the preferred name or one
// of the aliases registered under key. Exact matches win over
// case-insensitive ones.
func ResolveColumn(columns []string, preferred, key string) (string, error) {
	normalized := make([]string, len(columns))
	lowered := make(map[string]string, len(columns))
	for i, col := range columns {
		normalized[i] = NormalizeHeader(col)
		if _, ok := lowered[strings.ToLower(normalized[i])]; !ok {
			lowered[strings.ToLower(normalized[i])] = normalized[i]
		}
	}

	searchOrder := make([]string, 0, 1+len(columnAliases[key]))
	if preferred != "" {
		searchOrder = append(searchOrder, preferred)
	}
	searchOrder = append(searchOrder, columnAliases[key]...)

	for _, candidate := range searchOrder {
		candidate = NormalizeHeader(candidate)
		if candidate == "" {
			continue
		}
		for _, col := range normalized {
			if col == candidate {
				return col, nil
			}
		}
		if actual, ok := lowered[strings.ToLower(candidate)]; ok {
			return actual, nil
		}
	}
	return "", fmt.Errorf("no column matching %q (aliases: %v) in %v", preferred, columnAliases[key], normalized)
}

// ResolveAnswerColumn finds the reference-answer column for uploads. The
// caller's preferred name wins when it matches a header exactly; then the
// registered aliases are tried, and finally any header containing "Ans" or
// "回答". Returns "" when the file simply has no answer column.
func ResolveAnswerColumn(columns []string, preferred string) string {
	normalized := make([]string, len(columns))
	for i, col := range columns {
		normalized[i] = NormalizeHeader(col)
	}
	if preferred = NormalizeHeader(preferred); preferred != "" {
		for _, col := range normalized {
			if col == preferred {
				return col
			}
		}
	}
	if col, err := ResolveColumn(normalized, DefaultAnswerColumn, "answer"); err == nil {
		return col
	}
	for _, col := range normalized {
		if strings.Contains(col, "Ans") || strings.Contains(col, "回答") {
			return col
		}
	}
	return ""
}

// ParseQuestionID converts an id cell to an integer. Spreadsheet exports
// frequently render integral ids as floats ("12.0"), so those are accepted
// too.
func ParseQuestionID(value string) (int, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return 0, fmt.Errorf("question id is blank")
	}
	if id, err := strconv.Atoi(text); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("cannot parse question id %q", value)
	}
	return int(f), nil
}
