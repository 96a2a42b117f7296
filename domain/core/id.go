package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// Domain-specific ID types
type (
	ComparisonID ID
	ReportID     ID
)

func (id ComparisonID) String() string { return ID(id).String() }
func (id ReportID) String() string     { return ID(id).String() }

// NewComparisonID creates a fresh comparison identifier
func NewComparisonID() ComparisonID { return ComparisonID(NewID()) }

// NewReportID creates a fresh report identifier
func NewReportID() ReportID { return ReportID(NewID()) }

// ParseComparisonID parses a string into ComparisonID
func ParseComparisonID(s string) (ComparisonID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("comparison ID cannot be empty")
	}
	return ComparisonID(s), nil
}
