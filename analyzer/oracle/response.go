package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

type response struct {
	Probabilities map[string]float64 `json:"probabilities"`
}

// ParseResponse extracts {"probabilities": {...}} from a model reply, markdown fences and
// surrounding prose are ignored
func ParseResponse(text string) (Distribution, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("%w: no json object in %q", ErrMalformed, abbreviate(text))
	}
	payload := text[start : end+1]
	ret := &response{}
	if err := json.Unmarshal([]byte(payload), ret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(ret.Probabilities) == 0 {
		return nil, fmt.Errorf("%w: missing probabilities in %q", ErrMalformed, abbreviate(text))
	}
	return Distribution(ret.Probabilities), nil
}

func abbreviate(text string) string {
	const limit = 120
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
