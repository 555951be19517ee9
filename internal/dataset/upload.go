package dataset

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/logging"
)

// UploadedDataset is a QA dataset parsed from an uploaded CSV, together
// with the column mapping that was detected so the client can show the
// user which headers were picked up.
type UploadedDataset struct {
	Items   []pipeline.TestItem
	Columns []string

	IDColumn       string
	QuestionColumn string
	// AnswerColumn is "" when the file carries no recognizable reference
	// answers; items then run without scoring.
	AnswerColumn string
}

// ParseUpload parses a dataset received over HTTP. Unlike LoadItems it
// never requires an answer column: uploads frequently carry questions
// only, and the answer header is hunted down by substring as a last
// resort. Blank column names fall back to the defaults.
func ParseUpload(r io.Reader, idColumn, questionColumn, answerColumn string, logger *zap.Logger) (*UploadedDataset, error) {
	log := logging.OrNop(logger).Sugar()

	if idColumn == "" {
		idColumn = DefaultIDColumn
	}
	if questionColumn == "" {
		questionColumn = DefaultQuestionColumn
	}

	t, err := parseTable(r, "upload")
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
	resolvedAnswer := ResolveAnswerColumn(t.headers, answerColumn)

	parsed := &UploadedDataset{
		Items:          []pipeline.TestItem{},
		Columns:        t.headers,
		IDColumn:       resolvedID,
		QuestionColumn: resolvedQuestion,
		AnswerColumn:   resolvedAnswer,
	}
	for _, row := range t.rows {
		id, err := ParseQuestionID(t.cell(row, resolvedID))
		if err != nil {
			log.Warnf("Skipping uploaded row with invalid id: %v", err)
			continue
		}
		question := strings.TrimSpace(t.cell(row, resolvedQuestion))
		if question == "" {
			log.Warnf("Skipping uploaded id=%d due to empty question text", id)
			continue
		}
		item := pipeline.TestItem{ID: id, Question: question}
		if resolvedAnswer != "" {
			item.ReferenceAnswer = strings.TrimSpace(t.cell(row, resolvedAnswer))
		}
		parsed.Items = append(parsed.Items, item)
	}
	return parsed, nil
}
