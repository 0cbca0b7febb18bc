package chain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/toa/analyzer/callgraph"
	"github.com/viant/toa/analyzer/chain"
	"github.com/viant/toa/analyzer/oracle"
	"github.com/viant/toa/analyzer/vote"
	"github.com/viant/toa/inspector/python"
)

type graph map[string][]string

func (g graph) Callers(name string) []string {
	return g[name]
}

func (g graph) Context(function string, callers []string, depth int) string {
	return ""
}

func newEngine(g vote.Graph, estimator oracle.Oracle) *chain.Engine {
	return chain.New(g, vote.New(g, estimator))
}

func TestEngine_Trace(t *testing.T) {
	tests := []struct {
		description   string
		graph         graph
		oracle        oracle.Oracle
		sink          string
		caller        string
		expectPath    chain.Path
		expectReentry string
		expectBallots int
	}{
		{
			description:   "sink without callers is its own origin",
			graph:         graph{},
			sink:          "eval",
			expectPath:    chain.Path{"eval"},
			expectBallots: 0,
		},
		{
			description:   "two function cycle terminates",
			graph:         graph{"eval": {"a"}, "a": {"b"}, "b": {"a"}},
			sink:          "eval",
			expectPath:    chain.Path{"b", "a", "eval"},
			expectReentry: "a",
			expectBallots: 3,
		},
		{
			description:   "self recursion terminates",
			graph:         graph{"eval": {"walk"}, "walk": {"walk"}},
			sink:          "eval",
			expectPath:    chain.Path{"walk", "eval"},
			expectReentry: "walk",
			expectBallots: 2,
		},
		{
			description: "oracle picks the branch",
			graph: graph{
				"eval":   {"run"},
				"run":    {"safe", "handle"},
				"handle": {"main"},
				"safe":   {"main"},
			},
			oracle:        oracle.Static{"run": {"safe": 0.1, "handle": 0.9}},
			sink:          "eval",
			expectPath:    chain.Path{"main", "handle", "run", "eval"},
			expectBallots: 3,
		},
		{
			description:   "anchored at call site caller",
			graph:         graph{"eval": {"a", "b"}, "b": {"main"}},
			oracle:        oracle.Static{"eval": {"a": 1}},
			sink:          "eval",
			caller:        "b",
			expectPath:    chain.Path{"main", "b", "eval"},
			expectBallots: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			engine := newEngine(tc.graph, tc.oracle)
			result, err := engine.TraceFrom(context.Background(), tc.sink, tc.caller)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tc.expectPath, result.Path)
			assert.Equal(t, tc.expectReentry, result.Reentry)
			assert.Len(t, result.Ballots, tc.expectBallots)

			seen := map[string]bool{}
			for _, name := range result.Path {
				assert.False(t, seen[name], "%v repeated in %v", name, result.Path)
				seen[name] = true
			}
		})
	}
}

func TestEngine_LinearChain(t *testing.T) {
	src := `def dangerous_function_a(data):
    eval(data)

def process_data_1(data):
    dangerous_function_a(data)

def branch_1(data):
    process_data_1(data)

def main():
    branch_1(input("data: "))
`
	tree, err := python.NewParser().Annotate(context.Background(), []byte(src))
	if !assert.NoError(t, err) {
		return
	}
	index := callgraph.Build(tree)
	sinks := index.Sinks()
	if !assert.Len(t, sinks, 1) {
		return
	}
	engine := chain.New(index, vote.New(index, nil))
	result, err := engine.Trace(context.Background(), sinks[0].Name)
	assert.NoError(t, err)
	assert.Equal(t, chain.Path{"main", "branch_1", "process_data_1", "dangerous_function_a", "eval"}, result.Path)
	assert.Equal(t, "main", result.Path.Origin())
	assert.Equal(t, "main -> branch_1 -> process_data_1 -> dangerous_function_a -> eval", result.Path.String())
	for _, ballot := range result.Ballots {
		assert.Len(t, ballot.Callers, 1)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	g := graph{
		"eval": {"x", "y", "z"},
		"x":    {"main"},
		"y":    {"main", "cli"},
		"z":    {"y"},
		"cli":  {"z"},
	}
	estimator := oracle.Static{
		"eval": {"x": 0.2, "y": 0.5, "z": 0.3},
		"y":    {"main": 0.4, "cli": 0.6},
	}
	first, err := newEngine(g, estimator).Trace(context.Background(), "eval")
	assert.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := newEngine(g, estimator).Trace(context.Background(), "eval")
		assert.NoError(t, err)
		assert.Equal(t, first.Path, again.Path)
	}
}
