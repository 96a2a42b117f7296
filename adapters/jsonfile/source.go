// Package jsonfile reads comparison records from a JSON array on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"

	"promptlab/domain/comparison"
	"promptlab/domain/core"
	"promptlab/internal/errors"
	"promptlab/ports"
)

// Source implements ports.ComparisonSource over a JSON file
type Source struct {
	path string
}

// NewSource creates a JSON file source
func NewSource(path string) *Source {
	return &Source{path: path}
}

var (
	_ ports.ComparisonSource = (*Source)(nil)
	_ ports.ComparisonLookup = (*Source)(nil)
)

// ListComparisons decodes the file on every call so edits are picked up
func (s *Source) ListComparisons(ctx context.Context, filter ports.ComparisonFilter) (comparison.Records, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ports.ApplyFilter(records, filter), nil
}

// GetComparison finds one record by id. Records without an id in the file
// get a fresh one per read and so cannot be looked up.
func (s *Source) GetComparison(ctx context.Context, id core.ComparisonID) (*comparison.Record, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ports.FindComparison(records, id)
}

func (s *Source) load(ctx context.Context) (comparison.Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("comparison file " + s.path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", s.path)
	}

	var records comparison.Records
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.UnreadableInput("comparison file "+s.path+" is not a JSON array of records", err)
	}

	for i := range records {
		if records[i].ID.String() == "" {
			records[i].ID = core.NewComparisonID()
		}
	}

	return records, nil
}
