package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"promptlab/internal/errors"
	"promptlab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDataReader_Workbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Prompt", "Base_Score", "Enhanced_Score", "base_tokens", "enhanced_tokens", "base_accuracy", "enhanced_accuracy"},
		{"explain DNS", 72, 85, 310, 450, 7, 9},
		{"sort a list", 64, 66, 200, 260, 6, 6},
		{},
		{"haiku", 80, 78, 90, 120, "", ""},
	})

	records, err := NewDataReader(path, nil).ListComparisons(context.Background(), ports.ComparisonFilter{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "explain DNS", records[0].Prompt)
	assert.Equal(t, []float64{13, 2, -2}, records.ScoreDiffs())
	assert.Equal(t, []float64{450, 260, 120}, records.EnhancedTokens())
	assert.Equal(t, []string{"accuracy"}, records.CriterionNames())
	assert.Nil(t, records[2].BaseCriteria)
	for _, r := range records {
		assert.NotEmpty(t, r.ID.String())
	}
}

func TestDataReader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	content := "id,base_score,enhanced_score,created_at,options\n" +
		"r1,50,60,2025-04-01T10:00:00Z,defineRole;cot\n" +
		"r2,55,52,2025-04-02T10:00:00Z,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	records, err := NewDataReader(path, nil).ListComparisons(context.Background(), ports.ComparisonFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID.String())
	assert.Equal(t, 2025, records[0].CreatedAt.Year())
	assert.False(t, records.HasTokenUsage())
	assert.Equal(t, []string{"cot", "defineRole"}, records[0].Techniques())

	rec, err := NewDataReader(path, nil).GetComparison(context.Background(), "r2")
	require.NoError(t, err)
	assert.Equal(t, -3.0, rec.ScoreDiff())
	assert.Nil(t, rec.Options)
}

func TestDataReader_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx"), nil).ReadData()
		assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	})

	t.Run("missing score column", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{{"base_score", "other"}, {1, 2}})
		_, err := NewDataReader(path, nil).ListComparisons(context.Background(), ports.ComparisonFilter{})
		assert.Equal(t, errors.CodeUnreadableInput, errors.GetCode(err))
	})

	t.Run("non numeric score", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{{"base_score", "enhanced_score"}, {"high", 2}})
		_, err := NewDataReader(path, nil).ListComparisons(context.Background(), ports.ComparisonFilter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("non finite score", func(t *testing.T) {
		for _, cell := range []string{"NaN", "Inf", "-infinity"} {
			path := filepath.Join(t.TempDir(), "scores.csv")
			require.NoError(t, os.WriteFile(path, []byte("base_score,enhanced_score\n50,"+cell+"\n"), 0o600))

			_, err := NewDataReader(path, nil).ListComparisons(context.Background(), ports.ComparisonFilter{})
			require.Error(t, err, cell)
			assert.Equal(t, errors.CodeUnreadableInput, errors.GetCode(err), cell)
			assert.Contains(t, err.Error(), "not a finite number", cell)
		}
	})

	t.Run("header only", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{{"base_score", "enhanced_score"}})
		_, err := NewDataReader(path, nil).ReadData()
		assert.Equal(t, errors.CodeUnreadableInput, errors.GetCode(err))
	})
}
