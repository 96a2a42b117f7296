// Package comparison holds the base-vs-enhanced evaluation records the
// statistics engine consumes.
package comparison

import (
	"sort"
	"time"

	"promptlab/domain/core"
)

// Usage is the token accounting reported by the model provider for one call
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Record is one evaluated pair: the same task answered from the base prompt
// and from the enhanced prompt, each scored 1-100 by the evaluator.
type Record struct {
	ID            core.ComparisonID `json:"id"`
	Prompt        string            `json:"prompt"`
	BaseScore     float64           `json:"base_score"`
	EnhancedScore float64           `json:"enhanced_score"`
	BaseUsage     Usage             `json:"base_prompt_usage"`
	EnhancedUsage Usage             `json:"enhanced_prompt_usage"`
	Feedback      string            `json:"feedback,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`

	// Per-criterion 1-10 scores (accuracy, relevance, tone, ...) when the evaluator gave them
	BaseCriteria     map[string]float64 `json:"base_criteria,omitempty"`
	EnhancedCriteria map[string]float64 `json:"enhanced_criteria,omitempty"`

	// Enhancement techniques toggled for the enhanced prompt (defineRole, cot, ...)
	Options map[string]bool `json:"options,omitempty"`
}

// ScoreDiff returns enhanced minus base
func (r Record) ScoreDiff() float64 {
	return r.EnhancedScore - r.BaseScore
}

// Techniques lists the enabled options, sorted
func (r Record) Techniques() []string {
	var names []string
	for name, on := range r.Options {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Records is an ordered batch of comparisons. Index i of every derived
// sequence refers to the same record, so the sequences stay paired.
type Records []Record

// BaseScores returns the base-prompt scores in record order
func (rs Records) BaseScores() []float64 {
	return rs.project(func(r Record) float64 { return r.BaseScore })
}

// EnhancedScores returns the enhanced-prompt scores in record order
func (rs Records) EnhancedScores() []float64 {
	return rs.project(func(r Record) float64 { return r.EnhancedScore })
}

// ScoreDiffs returns enhanced minus base for every record
func (rs Records) ScoreDiffs() []float64 {
	return rs.project(Record.ScoreDiff)
}

// BaseTokens returns total token usage of the base prompt per record
func (rs Records) BaseTokens() []float64 {
	return rs.project(func(r Record) float64 { return float64(r.BaseUsage.TotalTokens) })
}

// EnhancedTokens returns total token usage of the enhanced prompt per record
func (rs Records) EnhancedTokens() []float64 {
	return rs.project(func(r Record) float64 { return float64(r.EnhancedUsage.TotalTokens) })
}

// HasTokenUsage reports whether any record carries usage numbers
func (rs Records) HasTokenUsage() bool {
	for _, r := range rs {
		if r.BaseUsage.TotalTokens != 0 || r.EnhancedUsage.TotalTokens != 0 {
			return true
		}
	}
	return false
}

// CriterionNames lists every criterion scored on both sides of at least one record
func (rs Records) CriterionNames() []string {
	seen := map[string]bool{}
	for _, r := range rs {
		for name := range r.BaseCriteria {
			if _, ok := r.EnhancedCriteria[name]; ok {
				seen[name] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CriterionScores returns paired base/enhanced scores for one criterion,
// skipping records that lack it on either side
func (rs Records) CriterionScores(name string) (base, enhanced []float64) {
	for _, r := range rs {
		b, okB := r.BaseCriteria[name]
		e, okE := r.EnhancedCriteria[name]
		if okB && okE {
			base = append(base, b)
			enhanced = append(enhanced, e)
		}
	}
	return base, enhanced
}

// TechniqueNames lists every option enabled on at least one record
func (rs Records) TechniqueNames() []string {
	seen := map[string]bool{}
	for _, r := range rs {
		for _, name := range r.Techniques() {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PartitionByTechnique splits records on whether the named option was
// enabled. Both halves keep record order.
func (rs Records) PartitionByTechnique(name string) (with, without Records) {
	for _, r := range rs {
		if r.Options[name] {
			with = append(with, r)
		} else {
			without = append(without, r)
		}
	}
	return with, without
}

func (rs Records) project(f func(Record) float64) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = f(r)
	}
	return out
}
