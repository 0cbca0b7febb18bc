package analyzer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/viant/toa/analyzer/oracle"
	"github.com/viant/toa/analyzer/sink"
	"github.com/viant/toa/analyzer/vote"
	"github.com/viant/toa/config"
	"go.uber.org/zap"
)

type Option func(*Analyzer)

// MatcherFn selects files and directories visited by AnalyzeDir
type MatcherFn func(info os.FileInfo) bool

// WithSinks sets sink function names; no names keeps the built-in sinks
func WithSinks(names ...string) Option {
	return func(a *Analyzer) {
		a.sinks = sink.New(names...)
	}
}

func WithOracle(estimator oracle.Oracle) Option {
	return func(a *Analyzer) {
		if estimator != nil {
			a.oracle = estimator
		}
	}
}

func WithWeights(weights vote.Weights) Option {
	return func(a *Analyzer) {
		a.weights = weights
	}
}

// WithOracleTimeout sets the deadline of a single oracle estimate
func WithOracleTimeout(timeout time.Duration) Option {
	return func(a *Analyzer) {
		a.timeout = timeout
	}
}

// WithContextDepth sets how many caller levels are rendered into the oracle context
func WithContextDepth(depth int) Option {
	return func(a *Analyzer) {
		a.contextDepth = depth
	}
}

// WithChainBudget caps node visits of each remaining chain search used for value scores
func WithChainBudget(budget int) Option {
	return func(a *Analyzer) {
		a.chainBudget = budget
	}
}

// WithConcurrency sets how many sink findings are investigated in parallel
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithSiteAnchoring starts each chain search at the function enclosing the sink call
func WithSiteAnchoring(enabled bool) Option {
	return func(a *Analyzer) {
		a.siteAnchoring = enabled
	}
}

// WithScopedBacktrace stops variable backtraces at the enclosing function definition
func WithScopedBacktrace(enabled bool) Option {
	return func(a *Analyzer) {
		a.scopedBacktrace = enabled
	}
}

func WithMatcher(matcher MatcherFn) Option {
	return func(a *Analyzer) {
		a.match = matcher
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxFileSize sets the maximum accepted source size in bytes
func WithMaxFileSize(size int) Option {
	return func(a *Analyzer) {
		a.maxFileSize = size
	}
}

// WithConfig applies loaded settings; the oracle itself is set with WithOracle
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		if cfg == nil {
			return
		}
		a.sinks = sink.New(cfg.Sinks...)
		a.weights = cfg.Weights
		a.timeout = cfg.Oracle.Timeout
		a.contextDepth = cfg.ContextDepth
		a.chainBudget = cfg.ChainBudget
		if cfg.Concurrency > 0 {
			a.concurrency = cfg.Concurrency
		}
		a.siteAnchoring = cfg.SiteAnchoring
		a.scopedBacktrace = cfg.ScopedBacktrace
		a.maxFileSize = cfg.MaxFileSize
	}
}

// PythonFiles matches python sources and skips virtual environments and caches
func PythonFiles(info os.FileInfo) bool {
	if info.IsDir() {
		switch info.Name() {
		case "__pycache__", ".venv", "venv", ".git", "node_modules", "site-packages", ".tox":
			return false
		}
		return true
	}
	return filepath.Ext(info.Name()) == ".py"
}
