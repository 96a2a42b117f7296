package ports

import (
	"context"
	"fmt"
	"time"

	"promptlab/domain/comparison"
	"promptlab/domain/core"
	"promptlab/internal/errors"
)

// ComparisonFilter narrows which stored comparisons are returned
type ComparisonFilter struct {
	Since time.Time // zero means no lower bound
	Limit int       // 0 means no limit
}

// ComparisonSource provides read-only access to evaluated prompt comparisons.
// Records come back oldest first so that index i pairs base and enhanced
// results of the same evaluation.
type ComparisonSource interface {
	ListComparisons(ctx context.Context, filter ComparisonFilter) (comparison.Records, error)
}

// ApplyFilter applies filter to records already held in memory
func ApplyFilter(records comparison.Records, filter ComparisonFilter) comparison.Records {
	out := make(comparison.Records, 0, len(records))
	for _, r := range records {
		if !filter.Since.IsZero() && r.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

// ComparisonLookup is implemented by sources that can fetch one record by id
type ComparisonLookup interface {
	GetComparison(ctx context.Context, id core.ComparisonID) (*comparison.Record, error)
}

// ComparisonNotFound is the NOT_FOUND error every lookup returns for a missing id
func ComparisonNotFound(id core.ComparisonID) error {
	return errors.WithCode(errors.CodeNotFound, fmt.Errorf("%w with id %s", core.ErrComparisonNotFound, id))
}

// FindComparison looks id up in records already held in memory
func FindComparison(records comparison.Records, id core.ComparisonID) (*comparison.Record, error) {
	for i := range records {
		if records[i].ID == id {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, ComparisonNotFound(id)
}
