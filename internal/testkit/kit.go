package testkit

import (
	"context"
	"sync"

	"promptlab/adapters/stats/compare"
	"promptlab/app"
	"promptlab/domain/comparison"
	"promptlab/domain/core"
	"promptlab/internal"
	"promptlab/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	source *InMemorySource
	engine *compare.Engine
}

// NewTestKit creates a kit whose source holds records generated from config
func NewTestKit(config ComparisonGeneratorConfig) *TestKit {
	return NewTestKitWithRecords(NewComparisonGenerator(config).GenerateRecords())
}

// NewTestKitWithRecords creates a kit around fixed records
func NewTestKitWithRecords(records comparison.Records) *TestKit {
	return &TestKit{
		source: NewInMemorySource(records),
		engine: compare.NewEngine(compare.DefaultConfig(), nil),
	}
}

// Source returns the in-memory comparison source
func (t *TestKit) Source() *InMemorySource {
	return t.source
}

// Engine returns a default-configured engine without logging
func (t *TestKit) Engine() *compare.Engine {
	return t.engine
}

// ComparisonService returns a service wired to the kit's engine
func (t *TestKit) ComparisonService(logger *internal.Logger) *app.ComparisonService {
	return app.NewComparisonService(t.engine, logger)
}

// InMemorySource implements ports.ComparisonSource over a slice
type InMemorySource struct {
	mu      sync.RWMutex
	records comparison.Records
}

var (
	_ ports.ComparisonSource = (*InMemorySource)(nil)
	_ ports.ComparisonLookup = (*InMemorySource)(nil)
)

// NewInMemorySource copies records into a new source
func NewInMemorySource(records comparison.Records) *InMemorySource {
	return &InMemorySource{records: append(comparison.Records(nil), records...)}
}

// Add appends records
func (s *InMemorySource) Add(records ...comparison.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// ListComparisons returns a filtered copy of the stored records
func (s *InMemorySource) ListComparisons(ctx context.Context, filter ports.ComparisonFilter) (comparison.Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ports.ApplyFilter(append(comparison.Records(nil), s.records...), filter), nil
}

// GetComparison returns a copy of the record with the given id
func (s *InMemorySource) GetComparison(ctx context.Context, id core.ComparisonID) (*comparison.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ports.FindComparison(s.records, id)
}
