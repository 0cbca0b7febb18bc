package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestSource_Equal(t *testing.T) {
	tests := []struct {
		description string
		left        *Source
		right       *Source
		expect      bool
	}{
		{description: "same literal", left: Literal("a"), right: Literal("a"), expect: true},
		{description: "literal types differ", left: Literal(int64(1)), right: Literal(1.0), expect: false},
		{description: "nil literal", left: Literal(nil), right: Literal(nil), expect: true},
		{description: "name vs text", left: Name("x"), right: Text("x"), expect: false},
		{description: "nested binding", left: Bind("x", Bind("y", Name("z"))), right: Bind("x", Bind("y", Name("z"))), expect: true},
		{description: "binding differs deep", left: Bind("x", Bind("y", Name("z"))), right: Bind("x", Bind("y", Name("w"))), expect: false},
		{description: "call args", left: Call("f", Name("a"), Literal(int64(1))), right: Call("f", Name("a"), Literal(int64(1))), expect: true},
		{description: "call arity", left: Call("f", Name("a")), right: Call("f"), expect: false},
		{description: "nil sources", left: nil, right: nil, expect: true},
		{description: "nil vs value", left: nil, right: Name("x"), expect: false},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.left.Equal(tc.right))
			assert.Equal(t, tc.expect, tc.right.Equal(tc.left))
		})
	}
}

func TestSource_Contains(t *testing.T) {
	value := Bind("x", Call("os.getenv", Literal("HOME"), Bind("y", Name("input"))))
	assert.True(t, value.Contains(value))
	assert.True(t, value.Contains(Literal("HOME")))
	assert.True(t, value.Contains(Name("input")))
	assert.True(t, value.Contains(Bind("y", Name("input"))))
	assert.False(t, value.Contains(Name("x")))
	assert.False(t, value.Contains(Literal("home")))

	assert.Equal(t, []string{"x", "y", "input"}, value.Names())
}

func TestSource_String(t *testing.T) {
	tests := []struct {
		description string
		source      *Source
		expect      string
	}{
		{description: "name", source: Name("y"), expect: "y"},
		{description: "binding", source: Bind("x", Name("y")), expect: "{x: y}"},
		{description: "call", source: Call("f", Literal("a"), Literal(int64(2)), Literal(nil)), expect: `{func: f, args: ["a", 2, None]}`},
		{description: "bool", source: Literal(false), expect: "False"},
		{description: "text", source: Text("a + b"), expect: "a + b"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.source.String())
		})
	}
}

func TestSource_MarshalYAML(t *testing.T) {
	data, err := yaml.Marshal(Bind("z", Bind("x", Call("get", Name("y")))))
	if !assert.NoError(t, err) {
		return
	}
	var actual interface{}
	assert.NoError(t, yaml.Unmarshal(data, &actual))
	expect := map[string]interface{}{
		"z": map[string]interface{}{
			"x": map[string]interface{}{
				"func": "get",
				"args": []interface{}{"y"},
			},
		},
	}
	if diff := cmp.Diff(expect, actual); diff != "" {
		t.Errorf("unexpected yaml (-want +got):\n%s", diff)
	}
}

func TestSet(t *testing.T) {
	set := &Set{}
	assert.True(t, set.Add(Bind("x", Name("y"))))
	assert.False(t, set.Add(Bind("x", Name("y"))))
	assert.True(t, set.Add(Call("f", Name("x"))))
	assert.False(t, set.Add(nil))
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has(Call("f", Name("x"))))
	assert.False(t, set.Has(Name("x")))
	assert.True(t, set.Covers(Name("x")))
	assert.True(t, set.Covers(Name("y")))
	assert.False(t, set.Covers(Name("z")))
}
