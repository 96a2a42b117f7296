package excel

// RawRowData represents a row of raw spreadsheet data keyed by normalised header
type RawRowData map[string]string

// SheetData represents the complete spreadsheet as strings
type SheetData struct {
	Headers []string     // Column headers, lower-cased and trimmed
	Rows    []RawRowData // Data rows
}

// Recognised column headers
const (
	ColumnID               = "id"
	ColumnPrompt           = "prompt"
	ColumnBaseScore        = "base_score"
	ColumnEnhancedScore    = "enhanced_score"
	ColumnBaseTokens       = "base_tokens"
	ColumnEnhancedTokens   = "enhanced_tokens"
	ColumnCreatedAt        = "created_at"
	ColumnFeedback         = "feedback"
	ColumnOptions          = "options"
	criterionBasePrefix    = "base_"
	criterionEnhancePrefix = "enhanced_"
)
