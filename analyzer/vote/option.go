package vote

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*Voter)

// WithWeights sets merge weights, rescaled to sum to 1
func WithWeights(weights Weights) Option {
	return func(v *Voter) {
		total := weights.Vote + weights.Value
		if weights.Vote < 0 || weights.Value < 0 || total <= 0 {
			return
		}
		v.weights = Weights{Vote: weights.Vote / total, Value: weights.Value / total}
	}
}

// WithTimeout sets oracle timeout, zero disables it
func WithTimeout(timeout time.Duration) Option {
	return func(v *Voter) {
		v.timeout = timeout
	}
}

// WithContextDepth sets caller tree depth rendered for the oracle
func WithContextDepth(depth int) Option {
	return func(v *Voter) {
		if depth >= 0 {
			v.depth = depth
		}
	}
}

// WithChainBudget caps node visits of each remaining chain search, zero or less keeps the default
func WithChainBudget(budget int) Option {
	return func(v *Voter) {
		if budget > 0 {
			v.budget = budget
		}
	}
}

// WithLogger sets logger
func WithLogger(logger *zap.Logger) Option {
	return func(v *Voter) {
		if logger != nil {
			v.logger = logger
		}
	}
}
