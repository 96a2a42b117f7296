package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"promptlab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparisonRow_ToRecord(t *testing.T) {
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	row := comparisonRow{
		ID:                 "42",
		Prompt:             sql.NullString{String: "Explain recursion", Valid: true},
		EvaluationBase:     []byte(`{"criteria_scores": {"accuracy": 7, "tone": 8}, "score": 71}`),
		EvaluationEnhanced: []byte(`{"criteria_scores": {"accuracy": 9, "tone": 8}, "score": 88}`),
		BaseUsage:          []byte(`{"promptTokens": 120, "completionTokens": 300, "totalTokens": 420}`),
		EnhancedUsage:      []byte(`{"promptTokens": 260, "completionTokens": 410, "totalTokens": 670}`),
		Options:            []byte(`{"defineRole": true, "provideContext": false, "cot": true}`),
		CreatedAt:          created,
	}

	rec, err := row.toRecord()
	require.NoError(t, err)

	assert.Equal(t, "42", rec.ID.String())
	assert.Equal(t, "Explain recursion", rec.Prompt)
	assert.Equal(t, 71.0, rec.BaseScore)
	assert.Equal(t, 88.0, rec.EnhancedScore)
	assert.Equal(t, 17.0, rec.ScoreDiff())
	assert.Equal(t, 420, rec.BaseUsage.TotalTokens)
	assert.Equal(t, 410, rec.EnhancedUsage.CompletionTokens)
	assert.Equal(t, 9.0, rec.EnhancedCriteria["accuracy"])
	assert.Equal(t, created, rec.CreatedAt)
	assert.Empty(t, rec.Feedback)
	assert.Equal(t, []string{"cot", "defineRole"}, rec.Techniques())
}

func TestComparisonRow_NullUsage(t *testing.T) {
	row := comparisonRow{
		ID:                 "7",
		EvaluationBase:     []byte(`{"score": 50}`),
		EvaluationEnhanced: []byte(`{"score": 55}`),
		BaseUsage:          []byte("null"),
	}

	rec, err := row.toRecord()
	require.NoError(t, err)
	assert.Zero(t, rec.BaseUsage.TotalTokens)
	assert.Nil(t, rec.BaseCriteria)
	assert.Nil(t, rec.Options)
}

func TestComparisonRow_BadJSON(t *testing.T) {
	row := comparisonRow{ID: "9", EvaluationBase: []byte(`{"score": "high"}`)}

	_, err := row.toRecord()
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnreadableInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "evaluation_base_prompt")
}

func TestComparisonRow_BadOptions(t *testing.T) {
	row := comparisonRow{ID: "11", Options: []byte(`["cot"]`)}

	_, err := row.toRecord()
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnreadableInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "options")
}

func TestOpen_RequiresURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestNewComparisonRepository_DefaultTable(t *testing.T) {
	assert.Equal(t, "comparisons", NewComparisonRepository(nil, "").table)
}
