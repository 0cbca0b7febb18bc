// Package chain reconstructs the most plausible call chain from an origin to a sink by
// walking the reverse caller map and voting at each function.
package chain

import (
	"context"
	"errors"
	"strings"

	"github.com/viant/toa/analyzer/vote"
	"go.uber.org/zap"
)

// Path lists function names from origin to sink
type Path []string

// String renders the path with arrows from origin to sink
func (p Path) String() string {
	return strings.Join(p, " -> ")
}

// Origin returns the first function of the path
func (p Path) Origin() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Result represents a chain search result
type Result struct {
	Path    Path           `yaml:"path"`
	Ballots []*vote.Ballot `yaml:"ballots,omitempty"`
	Reentry string         `yaml:"reentry,omitempty"` // chosen caller already on the path
}

// Engine represents chain search engine
type Engine struct {
	graph  vote.Graph
	voter  *vote.Voter
	logger *zap.Logger
}

// Trace searches the chain ending at the sink, starting from the sink's callers
func (e *Engine) Trace(ctx context.Context, sink string) (*Result, error) {
	return e.TraceFrom(ctx, sink, "")
}

// TraceFrom searches the chain ending at the sink with the search anchored at the caller;
// an empty caller starts at the sink itself
func (e *Engine) TraceFrom(ctx context.Context, sink, caller string) (*Result, error) {
	result := &Result{}
	path := []string{sink}
	onPath := map[string]bool{sink: true}
	current := sink
	if caller != "" && caller != sink {
		path = append(path, caller)
		onPath[caller] = true
		current = caller
	}
	for len(e.graph.Callers(current)) > 0 {
		ballot, err := e.voter.Vote(ctx, current)
		if err != nil {
			if errors.Is(err, vote.ErrNoCallers) {
				break
			}
			return nil, err
		}
		result.Ballots = append(result.Ballots, ballot)
		if onPath[ballot.Chosen] {
			result.Reentry = ballot.Chosen
			break
		}
		path = append(path, ballot.Chosen)
		onPath[ballot.Chosen] = true
		current = ballot.Chosen
	}
	result.Path = reverse(path)
	e.logger.Info("call chain", zap.String("sink", sink), zap.String("chain", result.Path.String()), zap.String("reentry", result.Reentry))
	return result, nil
}

func reverse(names []string) Path {
	result := make(Path, len(names))
	for i, name := range names {
		result[len(names)-1-i] = name
	}
	return result
}

// New creates an engine
func New(graph vote.Graph, voter *vote.Voter, opts ...Option) *Engine {
	ret := &Engine{graph: graph, voter: voter, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type Option func(*Engine)

// WithLogger sets logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
