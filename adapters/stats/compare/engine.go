package compare

import (
	"promptlab/internal"
	"promptlab/internal/config"
)

// Config carries the overridable parameters of the engine
type Config struct {
	ZScore  float64     `json:"z_score"`
	Alpha   float64     `json:"alpha"`
	TMethod TTestMethod `json:"t_method"`
}

// DefaultConfig returns z = 1.96, alpha = 0.05 and the normal-approximation t-test
func DefaultConfig() Config {
	return Config{
		ZScore:  DefaultZScore,
		Alpha:   DefaultAlpha,
		TMethod: NormalApproximation,
	}
}

// ConfigFromStats converts the application stats settings
func ConfigFromStats(sc config.StatsConfig) (Config, error) {
	method, err := ParseTTestMethod(sc.TMethod)
	if err != nil {
		return Config{}, err
	}
	return Config{ZScore: sc.ZScore, Alpha: sc.Alpha, TMethod: method}, nil
}

// Engine applies a fixed Config to the package functions and reports
// advisories through a logger. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	cfg    Config
	logger *internal.Logger
}

// NewEngine creates an engine. A nil logger disables advisory logging.
func NewEngine(cfg Config, logger *internal.Logger) *Engine {
	if cfg.ZScore == 0 {
		cfg.ZScore = DefaultZScore
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.TMethod == "" {
		cfg.TMethod = NormalApproximation
	}
	if logger != nil {
		logger = logger.WithComponent("compare")
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Describe summarises one sample with the configured z-score
func (e *Engine) Describe(sample []float64) (Summary, error) {
	return Describe(sample, e.cfg.ZScore)
}

// ConfidenceInterval uses the configured z-score
func (e *Engine) ConfidenceInterval(sample []float64) ConfidenceInterval {
	return ConfidenceIntervalZ(sample, e.cfg.ZScore)
}

// PairedTTest uses the configured p-value method
func (e *Engine) PairedTTest(before, after []float64) (TTestResult, error) {
	res, err := PairedTTestWith(before, after, e.cfg.TMethod)
	if err != nil {
		return res, err
	}
	e.logger.Debug("paired t-test n=%d t=%.4f p=%.4g (%s)", res.DegreesOfFreedom+1, res.TStatistic, res.PValue, res.Method)
	return res, nil
}

// WilcoxonSignedRank uses the configured alpha and logs every advisory at WARN
func (e *Engine) WilcoxonSignedRank(after, before []float64) (WilcoxonResult, error) {
	res, err := WilcoxonSignedRankAlpha(after, before, e.cfg.Alpha)
	if err != nil {
		return res, err
	}
	if res.Degenerate {
		e.logger.Warn("wilcoxon: %s (%d pairs)", res.Message, len(after))
	}
	for _, advisory := range res.Advisories {
		e.logger.Warn("wilcoxon: %s (n=%d of %d pairs)", advisory, res.N, len(after))
	}
	return res, nil
}

// EffectSize is r = |z|/√n
func (e *Engine) EffectSize(z float64, n int) (float64, error) {
	return EffectSize(z, n)
}
