// Package analyzer runs backward taint analysis over python sources: every sink call is traced
// back to the most plausible origin function and its argument variable is followed backwards
// through assignments and conditions.
package analyzer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/toa/analyzer/backtrace"
	"github.com/viant/toa/analyzer/callgraph"
	"github.com/viant/toa/analyzer/chain"
	"github.com/viant/toa/analyzer/ledger"
	"github.com/viant/toa/analyzer/oracle"
	"github.com/viant/toa/analyzer/sink"
	"github.com/viant/toa/analyzer/syntax"
	"github.com/viant/toa/analyzer/vote"
	"github.com/viant/toa/inspector/python"
	"github.com/viant/toa/inspector/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyzer represents taint analyzer
type Analyzer struct {
	fs              afs.Service
	parser          *python.Parser
	detector        *repository.Detector
	sinks           *sink.Set
	oracle          oracle.Oracle
	weights         vote.Weights
	timeout         time.Duration
	contextDepth    int
	chainBudget     int
	concurrency     int
	siteAnchoring   bool
	scopedBacktrace bool
	maxFileSize     int
	match           MatcherFn
	logger          *zap.Logger
}

// run holds per source state; nothing is shared between runs
type run struct {
	path   string
	index  *callgraph.Index
	engine *chain.Engine
	walker *backtrace.Walker
}

// AnalyzeSource analyzes python source; path is used for reporting only
func (a *Analyzer) AnalyzeSource(ctx context.Context, src []byte, path string) (*Report, error) {
	tree, err := a.parser.Annotate(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %v: %w", path, err)
	}
	r := a.newRun(tree, path)
	sites := r.index.Sinks()
	report := &Report{RunID: uuid.New().String(), Path: path, Findings: make([]*Finding, len(sites))}
	a.logger.Debug("indexed source", zap.String("path", path), zap.Int("functions", len(r.index.Functions())), zap.Int("sinks", len(sites)))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)
	for i, site := range sites {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			finding, err := a.investigate(groupCtx, r, site)
			if err != nil {
				return err
			}
			report.Findings[i] = finding
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to analyze %v: %w", path, err)
	}
	report.Variables = r.index.Ledger().Snapshot()
	return report, nil
}

func (a *Analyzer) newRun(tree *syntax.Tree, path string) *run {
	index := callgraph.Build(tree, callgraph.WithLedger(ledger.New()), callgraph.WithSinks(a.sinks))
	voter := vote.New(index, a.oracle,
		vote.WithWeights(a.weights),
		vote.WithTimeout(a.timeout),
		vote.WithContextDepth(a.contextDepth),
		vote.WithChainBudget(a.chainBudget),
		vote.WithLogger(a.logger))
	return &run{
		path:   path,
		index:  index,
		engine: chain.New(index, voter, chain.WithLogger(a.logger)),
		walker: backtrace.New(tree),
	}
}

// investigate builds the finding of a single sink call
func (a *Analyzer) investigate(ctx context.Context, r *run, site *callgraph.CallSite) (*Finding, error) {
	finding := &Finding{
		Sink:      site.Callee(),
		Location:  CodeLocation{FilePath: r.path, LineNumber: site.Line, ColumnStart: site.Column},
		Function:  site.Caller,
		Resolved:  site.Resolved,
		Arguments: site.Arguments,
	}
	for _, arg := range site.Arguments {
		finding.Inputs = appendDistinct(finding.Inputs, arg.Names()...)
	}
	if !site.Resolved {
		finding.Warnings = append(finding.Warnings, fmt.Sprintf("unresolved callee %q: chain search skipped", site.Text))
	} else {
		anchor := ""
		if a.siteAnchoring {
			anchor = site.Caller
		}
		result, err := r.engine.TraceFrom(ctx, site.Name, anchor)
		if err != nil {
			return nil, err
		}
		finding.Chain = result.Path
		finding.Origin = result.Path.Origin()
		finding.Reentry = result.Reentry
		finding.Ballots = result.Ballots
		for _, ballot := range result.Ballots {
			if ballot.Warning != "" {
				finding.Warnings = append(finding.Warnings, ballot.Warning)
			}
		}
		r.index.TraceChain(result.Path)
	}

	finding.Variable = r.walker.Variable(site.Node)
	var stop backtrace.StopFn
	if a.scopedBacktrace {
		if scope := r.index.Tree().Enclosing(site.Node, syntax.KindFunction); scope != syntax.None {
			stop = backtrace.Within(scope)
		}
	}
	finding.Backtrace = r.walker.Walk(site.Node, finding.Variable, stop)
	a.logger.Info("sink finding",
		zap.String("path", r.path),
		zap.String("sink", finding.Sink),
		zap.Int("line", site.Line),
		zap.String("chain", finding.Chain.String()),
		zap.String("variable", finding.Variable),
		zap.Int("steps", len(finding.Backtrace)))
	return finding, nil
}

func appendDistinct(names []string, values ...string) []string {
	for _, value := range values {
		if !slices.Contains(names, value) {
			names = append(names, value)
		}
	}
	return names
}

// New creates an analyzer
func New(opts ...Option) *Analyzer {
	ret := &Analyzer{
		fs:           afs.New(),
		detector:     repository.New(),
		sinks:        sink.New(),
		oracle:       oracle.Uniform{},
		weights:      vote.DefaultWeights,
		timeout:      vote.DefaultTimeout,
		contextDepth: vote.DefaultContextDepth,
		chainBudget:  vote.DefaultChainBudget,
		concurrency:  1,
		match:        PythonFiles,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.parser = python.NewParser(python.WithMaxFileSize(ret.maxFileSize))
	return ret
}
