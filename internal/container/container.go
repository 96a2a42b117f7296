package container

import (
	"context"
	"path/filepath"
	"strings"

	"promptlab/adapters/excel"
	"promptlab/adapters/jsonfile"
	"promptlab/adapters/postgres"
	"promptlab/adapters/stats/compare"
	"promptlab/app"
	"promptlab/internal"
	"promptlab/internal/config"
	"promptlab/internal/errors"
	"promptlab/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Comparison source; nil until InitSource finds one configured
	Source ports.ComparisonSource

	Engine            *compare.Engine
	ComparisonService *app.ComparisonService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(cfg.Log.Level)
	}

	engineCfg, err := compare.ConfigFromStats(cfg.Stats)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	engine := compare.NewEngine(engineCfg, logger)
	return &Container{
		Config:            cfg,
		Logger:            logger,
		Engine:            engine,
		ComparisonService: app.NewComparisonService(engine, logger),
	}, nil
}

// InitSource opens the configured comparison source. DATABASE_URL wins over
// COMPARISONS_FILE; with neither set Source stays nil.
func (c *Container) InitSource(ctx context.Context) error {
	src := c.Config.Source
	switch {
	case src.DatabaseURL != "":
		db, err := postgres.Open(ctx, src.DatabaseURL)
		if err != nil {
			return err
		}
		c.DB = db
		c.Source = postgres.NewComparisonRepository(db, src.Table)
		c.Logger.Info("using postgres comparison source (table %s)", src.Table)
	case src.File != "":
		c.Source = FileSource(src.File, c.Logger)
		c.Logger.Info("using comparison file %s", src.File)
	default:
		c.Logger.Warn("no comparison source configured; report endpoints are disabled")
	}
	return nil
}

// FileSource picks a reader by file extension: .json is an array of records,
// anything else goes to the spreadsheet reader (xlsx or csv).
func FileSource(path string, logger *internal.Logger) ports.ComparisonSource {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return jsonfile.NewSource(path)
	}
	return excel.NewDataReader(path, logger)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return errors.DatabaseError("failed to close database", err)
		}
	}
	return nil
}
