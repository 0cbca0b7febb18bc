// Package vote selects the most likely caller of a function by merging an oracle
// distribution with a structural score derived from each caller's remaining upstream chain.
package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/toa/analyzer/oracle"
	"go.uber.org/zap"
)

// ErrNoCallers is returned when the function has no recorded callers
var ErrNoCallers = errors.New("vote: no callers")

const (
	// DefaultTimeout bounds a single oracle estimate
	DefaultTimeout = 30 * time.Second
	// DefaultContextDepth is the rendered caller tree depth
	DefaultContextDepth = 2
	// DefaultChainBudget caps node visits of a single remaining chain search
	DefaultChainBudget = 10000
)

// Weights represents merge weights
type Weights struct {
	Vote  float64 `yaml:"vote"`
	Value float64 `yaml:"value"`
}

// DefaultWeights favours the oracle 4:1 over the structural score
var DefaultWeights = Weights{Vote: 0.8, Value: 0.2}

// Graph provides callers and rendered caller context
type Graph interface {
	Callers(name string) []string
	Context(function string, callers []string, depth int) string
}

// Ballot represents a single voting decision
type Ballot struct {
	Function string              `yaml:"function"`
	Callers  []string            `yaml:"callers"`
	Oracle   oracle.Distribution `yaml:"oracle,omitempty"`
	Value    map[string]float64  `yaml:"value"`
	Chains   map[string][]string `yaml:"chains,omitempty"`
	Final    map[string]float64  `yaml:"final"`
	Chosen   string              `yaml:"chosen"`
	Fallback bool                `yaml:"fallback,omitempty"`
	Warning  string              `yaml:"warning,omitempty"`
}

// Voter represents voting engine
type Voter struct {
	graph   Graph
	oracle  oracle.Oracle
	weights Weights
	timeout time.Duration
	depth   int
	budget  int
	logger  *zap.Logger
}

// Vote chooses one caller of the function
func (v *Voter) Vote(ctx context.Context, function string) (*Ballot, error) {
	callers := distinct(v.graph.Callers(function))
	if len(callers) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoCallers, function)
	}
	ballot := &Ballot{Function: function, Callers: callers}
	if len(callers) == 1 {
		ballot.Value = map[string]float64{callers[0]: 1}
		ballot.Final = map[string]float64{callers[0]: 1}
		ballot.Chosen = callers[0]
		return ballot, nil
	}
	ballot.Oracle = v.estimate(ctx, ballot)
	ballot.Value, ballot.Chains = v.valueScores(callers)
	ballot.Final = make(map[string]float64, len(callers))
	for _, caller := range callers {
		ballot.Final[caller] = v.weights.Vote*ballot.Oracle[caller] + v.weights.Value*ballot.Value[caller]
	}
	ballot.Chosen = callers[0]
	for _, caller := range callers[1:] {
		if ballot.Final[caller] > ballot.Final[ballot.Chosen] {
			ballot.Chosen = caller
		}
	}
	v.logger.Debug("vote",
		zap.String("function", function),
		zap.Strings("callers", callers),
		zap.Any("oracle", ballot.Oracle),
		zap.Any("value", ballot.Value),
		zap.Any("final", ballot.Final),
		zap.String("chosen", ballot.Chosen))
	return ballot, nil
}

// estimate returns the normalized oracle distribution or a uniform one on failure
func (v *Voter) estimate(ctx context.Context, ballot *Ballot) oracle.Distribution {
	request := &oracle.Request{
		Function: ballot.Function,
		Callers:  ballot.Callers,
		Context:  v.graph.Context(ballot.Function, ballot.Callers, v.depth),
	}
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	dist, err := v.call(ctx, request)
	if err == nil {
		dist, err = oracle.Normalize(dist, ballot.Callers)
	}
	if err != nil {
		ballot.Fallback = true
		ballot.Warning = err.Error()
		v.logger.Warn("oracle estimate failed, using uniform distribution",
			zap.String("function", ballot.Function),
			zap.Strings("callers", ballot.Callers),
			zap.Error(err))
		return oracle.UniformDistribution(ballot.Callers)
	}
	return dist
}

type reply struct {
	dist oracle.Distribution
	err  error
}

// call runs the oracle until it answers or ctx is done; a late answer is discarded
func (v *Voter) call(ctx context.Context, request *oracle.Request) (oracle.Distribution, error) {
	done := make(chan reply, 1)
	go func() {
		dist, err := v.oracle.Estimate(ctx, request)
		done <- reply{dist: dist, err: err}
	}()
	select {
	case result := <-done:
		return result.dist, result.err
	case <-ctx.Done():
		return nil, fmt.Errorf("oracle estimate of %v: %w", request.Function, ctx.Err())
	}
}

// valueScores returns normalized remaining chain lengths of each caller
func (v *Voter) valueScores(callers []string) (map[string]float64, map[string][]string) {
	scores := make(map[string]float64, len(callers))
	chains := make(map[string][]string, len(callers))
	total := 0.0
	for _, caller := range callers {
		chain := remainingChain(v.graph, caller, v.budget)
		chains[caller] = chain
		scores[caller] = float64(len(chain))
		total += scores[caller]
	}
	for _, caller := range callers {
		if total == 0 {
			scores[caller] = 1 / float64(len(callers))
			continue
		}
		scores[caller] /= total
	}
	return scores, chains
}

// RemainingChain returns the longest acyclic caller chain starting at the function; a function
// already on the current path ends that path. The first discovered maximum wins.
// The search enumerates simple paths, exponential on dense caller graphs, so it stops expanding
// after DefaultChainBudget visits and keeps the best chain found so far.
func RemainingChain(graph Graph, function string) []string {
	return remainingChain(graph, function, DefaultChainBudget)
}

func remainingChain(graph Graph, function string, budget int) []string {
	onPath := map[string]bool{}
	visits := 0
	var longest func(name string) []string
	longest = func(name string) []string {
		visits++
		if onPath[name] || visits > budget {
			return []string{name}
		}
		callers := distinct(graph.Callers(name))
		if len(callers) == 0 {
			return []string{name}
		}
		onPath[name] = true
		defer delete(onPath, name)
		var best []string
		for _, caller := range callers {
			if chain := longest(caller); len(chain) > len(best) {
				best = chain
			}
		}
		return append([]string{name}, best...)
	}
	return longest(function)
}

func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	var result []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	return result
}

// New creates a voter, a nil oracle votes uniformly
func New(graph Graph, estimator oracle.Oracle, opts ...Option) *Voter {
	ret := &Voter{
		graph:   graph,
		oracle:  estimator,
		weights: DefaultWeights,
		timeout: DefaultTimeout,
		depth:   DefaultContextDepth,
		budget:  DefaultChainBudget,
		logger:  zap.NewNop(),
	}
	if ret.oracle == nil {
		ret.oracle = oracle.Uniform{}
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
