package oracle

import (
	"fmt"
	"math"
)

// Normalize restricts the distribution to callers and rescales it to sum to 1.
// Unknown keys are dropped, negative and non finite values count as 0.
func Normalize(dist Distribution, callers []string) (Distribution, error) {
	result := make(Distribution, len(callers))
	total := 0.0
	for _, caller := range callers {
		value := dist[caller]
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			value = 0
		}
		result[caller] = value
		total += value
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no probability mass over %v", ErrMalformed, callers)
	}
	for caller, value := range result {
		result[caller] = value / total
	}
	return result, nil
}
