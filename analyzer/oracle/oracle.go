// Package oracle defines the caller likelihood estimator consulted when a function has more
// than one caller, with deterministic implementations and response handling.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// ErrMalformed reports a distribution that can not be used
var ErrMalformed = errors.New("oracle: malformed distribution")

// Request represents an estimation request
type Request struct {
	Function string   // function the callers call
	Callers  []string // candidate callers, distinct
	Context  string   // rendered definition and caller tree
}

// Distribution maps caller to the probability of introducing user controlled input
type Distribution map[string]float64

// Oracle estimates caller probabilities
type Oracle interface {
	Estimate(ctx context.Context, request *Request) (Distribution, error)
}

// Func adapts a function to Oracle
type Func func(ctx context.Context, request *Request) (Distribution, error)

// Estimate calls fn
func (fn Func) Estimate(ctx context.Context, request *Request) (Distribution, error) {
	return fn(ctx, request)
}

// Uniform assigns every caller the same probability
type Uniform struct{}

// Estimate returns a uniform distribution
func (Uniform) Estimate(_ context.Context, request *Request) (Distribution, error) {
	return UniformDistribution(request.Callers), nil
}

// UniformDistribution returns 1/k for each of the k callers
func UniformDistribution(callers []string) Distribution {
	result := make(Distribution, len(callers))
	for _, caller := range callers {
		result[caller] = 1 / float64(len(callers))
	}
	return result
}

// Static returns fixed distributions keyed by function name
type Static map[string]Distribution

// Estimate returns a copy of the configured function distribution
func (s Static) Estimate(_ context.Context, request *Request) (Distribution, error) {
	dist, ok := s[request.Function]
	if !ok {
		return nil, fmt.Errorf("%w: no distribution for %v", ErrMalformed, request.Function)
	}
	result := make(Distribution, len(dist))
	for k, v := range dist {
		result[k] = v
	}
	return result, nil
}
