package testkit

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"promptlab/domain/comparison"
	"promptlab/domain/core"
)

// ComparisonGeneratorConfig configures the synthetic comparison generator
type ComparisonGeneratorConfig struct {
	Count         int       `json:"count"`
	BaseMean      float64   `json:"base_mean"`
	Improvement   float64   `json:"improvement"`    // mean enhanced-minus-base score shift
	Noise         float64   `json:"noise"`          // SD of the per-pair shift
	TieRate       float64   `json:"tie_rate"`       // share of pairs scored identically
	Criteria      []string  `json:"criteria"`       // per-criterion scores are generated when set
	Techniques    []string  `json:"techniques"`     // enhancement options toggled per record
	TechniqueRate float64   `json:"technique_rate"` // chance each technique is enabled
	BaseTokens    float64   `json:"base_tokens"`    // mean total tokens of the base prompt
	TokenOverhead float64   `json:"token_overhead"` // extra tokens spent by the enhanced prompt
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
}

// DefaultComparisonConfig returns a moderate, clearly positive improvement
func DefaultComparisonConfig() ComparisonGeneratorConfig {
	return ComparisonGeneratorConfig{
		Count:         40,
		BaseMean:      6.0,
		Improvement:   0.8,
		Noise:         1.0,
		TieRate:       0.1,
		Criteria:      []string{"accuracy", "clarity", "completeness"},
		Techniques:    []string{"defineRole", "provideContext", "setFormat", "examples", "constraints", "cot"},
		TechniqueRate: 0.5,
		BaseTokens:    420,
		TokenOverhead: 90,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:          42,
	}
}

// ComparisonGenerator produces deterministic base-vs-enhanced evaluations
type ComparisonGenerator struct {
	config ComparisonGeneratorConfig
	rng    *rand.Rand
	optRng *rand.Rand // separate stream so toggling techniques leaves scores unchanged
}

// NewComparisonGenerator creates a generator seeded from config.Seed
func NewComparisonGenerator(config ComparisonGeneratorConfig) *ComparisonGenerator {
	return &ComparisonGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
		optRng: rand.New(rand.NewSource(config.Seed + 1)),
	}
}

// GenerateRecords returns Count records ordered by creation time
func (g *ComparisonGenerator) GenerateRecords() comparison.Records {
	records := make(comparison.Records, 0, g.config.Count)
	span := g.config.EndDate.Sub(g.config.StartDate)
	step := time.Duration(0)
	if g.config.Count > 0 && span > 0 {
		step = span / time.Duration(g.config.Count)
	}

	for i := 0; i < g.config.Count; i++ {
		tie := g.rng.Float64() < g.config.TieRate
		base := g.score(g.config.BaseMean + g.rng.NormFloat64())
		enhanced := base
		if !tie {
			enhanced = g.score(base + g.config.Improvement + g.config.Noise*g.rng.NormFloat64())
		}

		rec := comparison.Record{
			ID:            core.ComparisonID(fmt.Sprintf("cmp_%04d", i+1)),
			Prompt:        fmt.Sprintf("synthetic prompt %d", i+1),
			BaseScore:     base,
			EnhancedScore: enhanced,
			BaseUsage:     g.usage(g.config.BaseTokens),
			EnhancedUsage: g.usage(g.config.BaseTokens + g.config.TokenOverhead),
			CreatedAt:     g.config.StartDate.Add(time.Duration(i) * step),
		}

		if len(g.config.Criteria) > 0 {
			rec.BaseCriteria = make(map[string]float64, len(g.config.Criteria))
			rec.EnhancedCriteria = make(map[string]float64, len(g.config.Criteria))
			for _, name := range g.config.Criteria {
				b := g.score(base + 0.5*g.rng.NormFloat64())
				rec.BaseCriteria[name] = b
				rec.EnhancedCriteria[name] = g.score(b + (enhanced - base) + 0.5*g.rng.NormFloat64())
			}
		}

		if len(g.config.Techniques) > 0 {
			rec.Options = make(map[string]bool, len(g.config.Techniques))
			for _, name := range g.config.Techniques {
				rec.Options[name] = g.optRng.Float64() < g.config.TechniqueRate
			}
		}

		records = append(records, rec)
	}
	return records
}

// WriteToFile writes the generated records as an indented JSON array
func (g *ComparisonGenerator) WriteToFile(path string) (comparison.Records, error) {
	records := g.GenerateRecords()
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to write records: %w", err)
	}
	return records, nil
}

// score clamps to the 0-10 rubric and rounds to one decimal so ties occur
func (g *ComparisonGenerator) score(v float64) float64 {
	v = math.Max(0, math.Min(10, v))
	return math.Round(v*10) / 10
}

func (g *ComparisonGenerator) usage(mean float64) comparison.Usage {
	if mean <= 0 {
		return comparison.Usage{}
	}
	total := int(math.Max(1, math.Round(mean+0.15*mean*g.rng.NormFloat64())))
	prompt := total * 3 / 5
	return comparison.Usage{
		PromptTokens:     prompt,
		CompletionTokens: total - prompt,
		TotalTokens:      total,
	}
}
