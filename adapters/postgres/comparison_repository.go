package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"promptlab/domain/comparison"
	"promptlab/domain/core"
	"promptlab/internal/errors"
	"promptlab/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// ComparisonRepositoryImpl reads evaluated comparisons written by the chat
// app. It never writes and never touches the schema.
type ComparisonRepositoryImpl struct {
	db    *sqlx.DB
	table string
}

// NewComparisonRepository creates a read-only comparison source over table
func NewComparisonRepository(db *sqlx.DB, table string) *ComparisonRepositoryImpl {
	if table == "" {
		table = "comparisons"
	}
	return &ComparisonRepositoryImpl{db: db, table: table}
}

var (
	_ ports.ComparisonSource = (*ComparisonRepositoryImpl)(nil)
	_ ports.ComparisonLookup = (*ComparisonRepositoryImpl)(nil)
)

// comparisonRow mirrors the stored columns; evaluations and usage are jsonb
type comparisonRow struct {
	ID                 string         `db:"id"`
	Prompt             sql.NullString `db:"prompt"`
	EvaluationBase     []byte         `db:"evaluation_base_prompt"`
	EvaluationEnhanced []byte         `db:"evaluation_enhanced_prompt"`
	BaseUsage          []byte         `db:"base_prompt_usage"`
	EnhancedUsage      []byte         `db:"enhanced_prompt_usage"`
	Feedback           sql.NullString `db:"feedback"`
	Options            []byte         `db:"options"`
	CreatedAt          time.Time      `db:"created_at"`
}

// evaluation is the evaluator's JSON verdict for one response
type evaluation struct {
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Score          float64            `json:"score"`
}

// ListComparisons returns comparisons oldest first
func (r *ComparisonRepositoryImpl) ListComparisons(ctx context.Context, filter ports.ComparisonFilter) (comparison.Records, error) {
	query := fmt.Sprintf(`
		SELECT id, prompt, evaluation_base_prompt, evaluation_enhanced_prompt,
		       base_prompt_usage, enhanced_prompt_usage, feedback, options, created_at
		FROM %s
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		ORDER BY created_at ASC
		LIMIT NULLIF($2::int, 0)
	`, pq.QuoteIdentifier(r.table))

	var since interface{}
	if !filter.Since.IsZero() {
		since = filter.Since
	}

	var rows []comparisonRow
	if err := r.db.SelectContext(ctx, &rows, query, since, filter.Limit); err != nil {
		return nil, errors.DatabaseError("failed to list comparisons", err)
	}

	records := make(comparison.Records, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetComparison returns one comparison by id
func (r *ComparisonRepositoryImpl) GetComparison(ctx context.Context, id core.ComparisonID) (*comparison.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, prompt, evaluation_base_prompt, evaluation_enhanced_prompt,
		       base_prompt_usage, enhanced_prompt_usage, feedback, options, created_at
		FROM %s
		WHERE id::text = $1
	`, pq.QuoteIdentifier(r.table))

	var row comparisonRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, ports.ComparisonNotFound(id)
		}
		return nil, errors.DatabaseError("failed to get comparison", err)
	}
	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (row comparisonRow) toRecord() (comparison.Record, error) {
	var base, enhanced evaluation
	if err := decodeJSONColumn(row.EvaluationBase, &base); err != nil {
		return comparison.Record{}, errors.UnreadableInput("comparison "+row.ID+": evaluation_base_prompt", err)
	}
	if err := decodeJSONColumn(row.EvaluationEnhanced, &enhanced); err != nil {
		return comparison.Record{}, errors.UnreadableInput("comparison "+row.ID+": evaluation_enhanced_prompt", err)
	}

	var baseUsage, enhancedUsage comparison.Usage
	if err := decodeJSONColumn(row.BaseUsage, &baseUsage); err != nil {
		return comparison.Record{}, errors.UnreadableInput("comparison "+row.ID+": base_prompt_usage", err)
	}
	if err := decodeJSONColumn(row.EnhancedUsage, &enhancedUsage); err != nil {
		return comparison.Record{}, errors.UnreadableInput("comparison "+row.ID+": enhanced_prompt_usage", err)
	}

	var options map[string]bool
	if err := decodeJSONColumn(row.Options, &options); err != nil {
		return comparison.Record{}, errors.UnreadableInput("comparison "+row.ID+": options", err)
	}

	return comparison.Record{
		ID:               core.ComparisonID(row.ID),
		Prompt:           row.Prompt.String,
		BaseScore:        base.Score,
		EnhancedScore:    enhanced.Score,
		BaseUsage:        baseUsage,
		EnhancedUsage:    enhancedUsage,
		Feedback:         row.Feedback.String,
		CreatedAt:        row.CreatedAt,
		BaseCriteria:     base.CriteriaScores,
		EnhancedCriteria: enhanced.CriteriaScores,
		Options:          options,
	}, nil
}

// decodeJSONColumn leaves v untouched for NULL columns
func decodeJSONColumn(raw []byte, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
