package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_Match(t *testing.T) {
	tests := []struct {
		description string
		sinks       []string
		name        string
		expect      bool
	}{
		{description: "default eval", name: "eval", expect: true},
		{description: "default dotted", name: "os.system", expect: true},
		{description: "no prefix matching", name: "os", expect: false},
		{description: "no suffix matching", name: "system", expect: false},
		{description: "unresolved never matches", name: "", expect: false},
		{description: "custom set", sinks: []string{"run_query"}, name: "run_query", expect: true},
		{description: "custom set replaces defaults", sinks: []string{"run_query"}, name: "eval", expect: false},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			set := New(tc.sinks...)
			assert.Equal(t, tc.expect, set.Match(tc.name))
		})
	}
}

func TestSet_MatchText(t *testing.T) {
	set := New("eval", "os.system")
	assert.True(t, set.MatchText("os . system"))
	assert.True(t, set.MatchText("eval"))
	assert.False(t, set.MatchText("(eval)"))
	assert.Equal(t, []string{"eval", "os.system"}, set.Names())
	assert.Equal(t, 2, set.Len())
}
