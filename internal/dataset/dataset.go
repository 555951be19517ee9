// Package dataset loads the CSV inputs of a test run: QA datasets with
// flexible column headers, answer keyword files, and STT testsets. All
// loaders read the whole file up front and fail before any processing
// starts when a required column is missing.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/logging"
)

const keywordColumn = "check_keywords_zh"

// table is a parsed CSV file with normalized headers.
type table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()
	return parseTable(f, path)
}

func parseTable(r io.Reader, name string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", name)
	}

	t := &table{index: make(map[string]int)}
	for i, col := range records[0] {
		name := NormalizeHeader(col)
		t.headers = append(t.headers, name)
		if _, ok := t.index[name]; !ok {
			t.index[name] = i
		}
	}
	t.rows = records[1:]
	return t, nil
}

// cell returns the row's value under the resolved column, or "" when the
// row is shorter than the header.
func (t *table) cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// LoadItems reads a QA dataset into test items. idColumn and
// questionColumn are required (the aliases are tried when the preferred
// name is absent); answerColumn is optional and resolves to "" reference
// answers when no answer column exists. Rows with unparseable ids or
// blank questions are skipped with a warning.
func LoadItems(path, idColumn, questionColumn, answerColumn string, logger *zap.Logger) ([]pipeline.TestItem, error) {
	log := logging.OrNop(logger).Sugar()

	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	resolvedID, err := ResolveColumn(t.headers, idColumn, "id")
	if err != nil {
		return nil, err
	}
	resolvedQuestion, err := ResolveColumn(t.headers, questionColumn, "question")
	if err != nil {
		return nil, err
	}
	resolvedAnswer := ""
	if answerColumn != "" {
		if resolvedAnswer, err = ResolveColumn(t.headers, answerColumn, "answer"); err != nil {
			return nil, err
		}
	} else if col, err := ResolveColumn(t.headers, DefaultAnswerColumn, "answer"); err == nil {
		resolvedAnswer = col
	}

	var items []pipeline.TestItem
	for _, row := range t.rows {
		id, err := ParseQuestionID(t.cell(row, resolvedID))
		if err != nil {
			log.Warnf("Skipping row with invalid id: %v", err)
			continue
		}
		question := strings.TrimSpace(t.cell(row, resolvedQuestion))
		if question == "" {
			log.Warnf("Skipping id=%d due to empty question text", id)
			continue
		}
		item := pipeline.TestItem{ID: id, Question: question}
		if resolvedAnswer != "" {
			item.ReferenceAnswer = strings.TrimSpace(t.cell(row, resolvedAnswer))
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadQuestionMap reads id → question text, skipping rows with bad ids or
// blank questions.
func LoadQuestionMap(path, idColumn, questionColumn string, logger *zap.Logger) (map[int]string, error) {
	return loadColumnMap(path, idColumn, questionColumn, "question", logger)
}

// LoadAnswerMap reads id → reference answer text.
func LoadAnswerMap(path, idColumn, answerColumn string, logger *zap.Logger) (map[int]string, error) {
	return loadColumnMap(path, idColumn, answerColumn, "answer", logger)
}

func loadColumnMap(path, idColumn, valueColumn, key string, logger *zap.Logger) (map[int]string, error) {
	log := logging.OrNop(logger).Sugar()

	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	resolvedID, err := ResolveColumn(t.headers, idColumn, "id")
	if err != nil {
		return nil, err
	}
	resolvedValue, err := ResolveColumn(t.headers, valueColumn, key)
	if err != nil {
		return nil, err
	}

	out := make(map[int]string)
	for _, row := range t.rows {
		id, err := ParseQuestionID(t.cell(row, resolvedID))
		if err != nil {
			log.Warnf("Skipping row with invalid id: %v", err)
			continue
		}
		if value := strings.TrimSpace(t.cell(row, resolvedValue)); value != "" {
			out[id] = value
		}
	}
	return out, nil
}

// LoadKeywordMap reads an answer-keywords CSV: columns "id" and
// "check_keywords_zh". Rows with unparseable ids are skipped with a
// warning; blank keyword cells are dropped.
func LoadKeywordMap(path string, logger *zap.Logger) (map[int]string, error) {
	log := logging.OrNop(logger).Sugar()

	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	resolvedID, err := ResolveColumn(t.headers, DefaultIDColumn, "id")
	if err != nil {
		return nil, err
	}
	if _, ok := t.index[keywordColumn]; !ok {
		return nil, fmt.Errorf("keywords file %s has no %q column", path, keywordColumn)
	}

	out := make(map[int]string)
	for _, row := range t.rows {
		id, err := ParseQuestionID(t.cell(row, resolvedID))
		if err != nil {
			log.Warnf("Skipping keyword row with invalid id: %v", err)
			continue
		}
		if value := strings.TrimSpace(t.cell(row, keywordColumn)); value != "" {
			out[id] = value
		}
	}
	return out, nil
}
