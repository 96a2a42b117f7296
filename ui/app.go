package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"promptlab/app"
	"promptlab/internal"
	"promptlab/internal/errors"
	"promptlab/ports"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App is the root HTTP handler: the report page plus the mounted JSON API
type App struct {
	router    *chi.Mux
	service   *app.ComparisonService
	source    ports.ComparisonSource
	templates *template.Template
	logger    *internal.Logger
}

// Config holds UI application configuration
type Config struct {
	// API is mounted under /api when set
	API http.Handler
	// Source may be nil; the report page then shows a configuration error
	Source ports.ComparisonSource
}

// NewApp creates a new UI application
func NewApp(config Config, service *app.ComparisonService, logger *internal.Logger) (*App, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if logger != nil {
		logger = logger.WithComponent("ui")
	}

	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		source:    config.Source,
		templates: templates,
		logger:    logger,
	}

	a.setupMiddleware()
	a.setupRoutes(config.API)

	return a, nil
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	if a.logger != nil && a.logger.GetLevel() >= internal.LogLevelDebug {
		a.router.Use(middleware.Logger)
	}
}

// setupRoutes configures the application routes
func (a *App) setupRoutes(api http.Handler) {
	a.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/report", http.StatusFound)
	})
	a.router.Get("/report", a.handleReport)
	a.router.Get("/healthz", a.handleHealth)

	if api != nil {
		a.router.Mount("/api", api)
	}
}

type reportPage struct {
	Title  string
	Body   template.HTML
	Report *app.Report
	Error  string
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	if a.source == nil {
		a.renderError(w, http.StatusServiceUnavailable, "No comparison source configured. Set DATABASE_URL or COMPARISONS_FILE.")
		return
	}

	var filter ports.ComparisonFilter
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			a.renderError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	report, err := a.service.Run(r.Context(), a.source, filter)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.HasCode(err, errors.CodeInvalidInput) {
			status = http.StatusBadRequest
		} else {
			a.logger.Error("report page: %v", err)
		}
		a.renderError(w, status, err.Error())
		return
	}

	a.render(w, http.StatusOK, reportPage{
		Title:  "Prompt comparison report",
		Body:   template.HTML(report.HTML()),
		Report: report,
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *App) renderError(w http.ResponseWriter, status int, message string) {
	a.render(w, status, reportPage{Title: "Report unavailable", Error: message})
}

func (a *App) render(w http.ResponseWriter, status int, page reportPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.templates.ExecuteTemplate(w, "report.html", page); err != nil {
		a.logger.Error("render report.html: %v", err)
	}
}
