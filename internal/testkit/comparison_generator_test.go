package testkit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"promptlab/adapters/jsonfile"
	"promptlab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparisonGenerator_Basic(t *testing.T) {
	config := DefaultComparisonConfig()
	config.Count = 12

	records := NewComparisonGenerator(config).GenerateRecords()
	require.Len(t, records, 12)

	for i, r := range records {
		assert.False(t, r.ID.String() == "", "record %d has empty ID", i)
		assert.GreaterOrEqual(t, r.BaseScore, 0.0)
		assert.LessOrEqual(t, r.EnhancedScore, 10.0)
		assert.Equal(t, r.BaseUsage.PromptTokens+r.BaseUsage.CompletionTokens, r.BaseUsage.TotalTokens)
		assert.Len(t, r.BaseCriteria, len(config.Criteria))
		assert.Len(t, r.Options, len(config.Techniques))
		if i > 0 {
			assert.False(t, r.CreatedAt.Before(records[i-1].CreatedAt), "records must be ordered")
		}
	}
}

func TestComparisonGenerator_Deterministic(t *testing.T) {
	config := DefaultComparisonConfig()

	first := NewComparisonGenerator(config).GenerateRecords()
	second := NewComparisonGenerator(config).GenerateRecords()
	assert.Equal(t, first, second)

	config.Seed = 7
	other := NewComparisonGenerator(config).GenerateRecords()
	assert.NotEqual(t, first.ScoreDiffs(), other.ScoreDiffs())
}

func TestComparisonGenerator_TechniquesDoNotShiftScores(t *testing.T) {
	config := DefaultComparisonConfig()
	withTechniques := NewComparisonGenerator(config).GenerateRecords()

	config.Techniques = nil
	without := NewComparisonGenerator(config).GenerateRecords()

	assert.Equal(t, without.ScoreDiffs(), withTechniques.ScoreDiffs())
	assert.Empty(t, without.TechniqueNames())
	assert.NotEmpty(t, withTechniques.TechniqueNames())
	for _, r := range without {
		assert.Nil(t, r.Options)
	}
}

func TestComparisonGenerator_AllTies(t *testing.T) {
	config := DefaultComparisonConfig()
	config.TieRate = 1

	for _, d := range NewComparisonGenerator(config).GenerateRecords().ScoreDiffs() {
		assert.Equal(t, 0.0, d)
	}
}

func TestComparisonGenerator_WriteToFileRoundTripsThroughJSONSource(t *testing.T) {
	config := DefaultComparisonConfig()
	config.Count = 8
	path := filepath.Join(t.TempDir(), "comparisons.json")

	written, err := NewComparisonGenerator(config).WriteToFile(path)
	require.NoError(t, err)

	read, err := jsonfile.NewSource(path).ListComparisons(context.Background(), ports.ComparisonFilter{})
	require.NoError(t, err)
	assert.Equal(t, written.ScoreDiffs(), read.ScoreDiffs())
	assert.Equal(t, written.BaseTokens(), read.BaseTokens())
}

func TestInMemorySource_Filter(t *testing.T) {
	config := DefaultComparisonConfig()
	config.Count = 10
	kit := NewTestKit(config)

	all, err := kit.Source().ListComparisons(context.Background(), ports.ComparisonFilter{})
	require.NoError(t, err)
	require.Len(t, all, 10)

	limited, err := kit.Source().ListComparisons(context.Background(), ports.ComparisonFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	since, err := kit.Source().ListComparisons(context.Background(), ports.ComparisonFilter{Since: all[5].CreatedAt})
	require.NoError(t, err)
	assert.Len(t, since, 5)

	kit.Source().Add(all[0])
	grown, err := kit.Source().ListComparisons(context.Background(), ports.ComparisonFilter{Since: time.Time{}})
	require.NoError(t, err)
	assert.Len(t, grown, 11)
}

func TestTestKit_ComparisonService(t *testing.T) {
	kit := NewTestKit(DefaultComparisonConfig())
	report, err := kit.ComparisonService(nil).Run(context.Background(), kit.Source(), ports.ComparisonFilter{})
	require.NoError(t, err)

	require.NotNil(t, report.Scores.Wilcoxon)
	assert.True(t, report.Scores.Wilcoxon.IsSignificant)
	assert.Greater(t, report.Scores.EnhancedMean, report.Scores.BaseMean)
}
