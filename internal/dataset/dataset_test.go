package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadItemsResolvesAliasedColumns(t *testing.T) {
	path := writeCSV(t, "zoo.csv",
		"編號,中文問題,中文回答\n"+
			"1,獅子吃什麼?,肉\n"+
			"2, 大象住在哪裡? ,草原\n")

	items, err := LoadItems(path, "id", "zh_question", "", nil)
	require.NoError(t, err)

	assert.Equal(t, []pipeline.TestItem{
		{ID: 1, Question: "獅子吃什麼?", ReferenceAnswer: "肉"},
		{ID: 2, Question: "大象住在哪裡?", ReferenceAnswer: "草原"},
	}, items)
}

func TestLoadItemsSkipsBadRows(t *testing.T) {
	path := writeCSV(t, "zoo.csv",
		"id,zh_question,Ans-ch\n"+
			"x,bad id row,skip\n"+
			"3,,blank question\n"+
			"4,good question,answer\n")

	items, err := LoadItems(path, "id", "zh_question", "", nil)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].ID)
	assert.Equal(t, "good question", items[0].Question)
}

func TestLoadItemsWithoutAnswerColumn(t *testing.T) {
	path := writeCSV(t, "zoo.csv",
		"id,zh_question\n"+
			"1,獅子吃什麼?\n")

	items, err := LoadItems(path, "id", "zh_question", "", nil)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Empty(t, items[0].ReferenceAnswer)
}

func TestLoadItemsMissingQuestionColumn(t *testing.T) {
	path := writeCSV(t, "zoo.csv", "id,other\n1,x\n")

	_, err := LoadItems(path, "id", "zh_question", "", nil)
	require.Error(t, err)
}

func TestLoadItemsFloatIDs(t *testing.T) {
	path := writeCSV(t, "zoo.csv",
		"id,zh_question\n"+
			"12.0,question text\n")

	items, err := LoadItems(path, "id", "zh_question", "", nil)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 12, items[0].ID)
}

func TestLoadQuestionAndAnswerMaps(t *testing.T) {
	path := writeCSV(t, "zoo.csv",
		"id,zh_question,Ans-ch\n"+
			"1,q one,a one\n"+
			"2,q two,\n")

	questions, err := LoadQuestionMap(path, "id", "zh_question", nil)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "q one", 2: "q two"}, questions)

	answers, err := LoadAnswerMap(path, "id", "Ans-ch", nil)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "a one"}, answers)
}

func TestLoadKeywordMap(t *testing.T) {
	path := writeCSV(t, "keywords.csv",
		"id,check_keywords_zh\n"+
			"1,\"肉, 草\"\n"+
			"oops,skipped\n"+
			"3,\n")

	keywords, err := LoadKeywordMap(path, nil)
	require.NoError(t, err)

	assert.Equal(t, map[int]string{1: "肉, 草"}, keywords)
}

func TestLoadKeywordMapMissingColumn(t *testing.T) {
	path := writeCSV(t, "keywords.csv", "id,notes\n1,x\n")

	_, err := LoadKeywordMap(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_keywords_zh")
}

func TestLoadSTTTestset(t *testing.T) {
	path := writeCSV(t, "stt_testset.csv",
		"id,wav_path,speaker_type,noise_level,ref_transcript,canonical_query_id\n"+
			"1,audio/q1_v1.wav,azure_tts,quiet,獅子吃什麼?,1\n"+
			"2,audio/q2_v1.wav,human,noisy,大象住在哪裡?,9\n")

	samples, err := LoadSTTTestset(path, nil)
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, STTSample{
		ID: 1, WAVPath: "audio/q1_v1.wav", RefTranscript: "獅子吃什麼?",
		CanonicalQueryID: 1, SpeakerType: "azure_tts", NoiseLevel: "quiet",
	}, samples[0])
	assert.Equal(t, 9, samples[1].CanonicalQueryID)
}

func TestLoadSTTTestsetCanonicalFallsBackToID(t *testing.T) {
	path := writeCSV(t, "stt_testset.csv",
		"id,wav_path,ref_transcript\n"+
			"5,audio/q5.wav,hello\n")

	samples, err := LoadSTTTestset(path, nil)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.Equal(t, 5, samples[0].CanonicalQueryID)
}

func TestLoadSTTTestsetMissingColumn(t *testing.T) {
	path := writeCSV(t, "stt_testset.csv", "id,wav_path\n1,a.wav\n")

	_, err := LoadSTTTestset(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ref_transcript")
}

func TestWriteSTTTestsetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stt_testset.csv")
	in := []STTSample{
		{ID: 1, WAVPath: "audio/q1_v1.wav", RefTranscript: "獅子吃什麼?", CanonicalQueryID: 1, SpeakerType: "azure_tts", NoiseLevel: "quiet"},
	}

	require.NoError(t, WriteSTTTestset(path, in))

	out, err := LoadSTTTestset(path, nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
