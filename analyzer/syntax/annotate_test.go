package syntax_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/toa/analyzer/syntax"
	"github.com/viant/toa/inspector/python"
)

const sample = `import os

def get_input():
    user_input = input("data: ")
    return user_input

def branch(data):
    if data.isdigit() and not data:
        result = process(data)[0]
    elif len(data) > 2:
        result = data
    os.system(result)

branch(get_input())
`

func annotate(t *testing.T, source string) *syntax.Tree {
	t.Helper()
	tree, err := python.NewParser().Annotate(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("failed to annotate: %v", err)
	}
	return tree
}

func TestAnnotate_Sequence(t *testing.T) {
	tree := annotate(t, sample)
	assert.Equal(t, syntax.NodeID(1), tree.Head())
	assert.Equal(t, syntax.None, tree.Node(tree.Head()).Prev)
	assert.Equal(t, syntax.None, tree.Node(tree.Tail()).Next)

	visited := map[syntax.NodeID]bool{}
	var previous syntax.NodeID
	tree.Walk(func(node *syntax.Node) bool {
		assert.False(t, visited[node.ID], "node %d visited twice", node.ID)
		visited[node.ID] = true
		assert.Greater(t, int(node.ID), int(previous))
		if node.Prev != syntax.None {
			assert.Equal(t, node.ID, tree.Node(node.Prev).Next)
		}
		assert.Equal(t, previous, node.Prev)
		previous = node.ID
		return true
	})
	assert.Equal(t, tree.Len(), len(visited))
}

func TestAnnotate_PreOrder(t *testing.T) {
	tree := annotate(t, sample)
	var order []syntax.NodeID
	var expect func(id syntax.NodeID)
	expect = func(id syntax.NodeID) {
		order = append(order, id)
		for _, child := range tree.Node(id).Children {
			assert.Equal(t, id, tree.Node(child).Parent)
			expect(child)
		}
	}
	expect(tree.Root())

	var actual []syntax.NodeID
	tree.Walk(func(node *syntax.Node) bool {
		actual = append(actual, node.ID)
		return true
	})
	assert.Equal(t, order, actual)
}

func TestAnnotate_Deterministic(t *testing.T) {
	parser := python.NewParser()
	grammar, err := parser.Parse(context.Background(), []byte(sample))
	if !assert.NoError(t, err) {
		return
	}
	first, err := syntax.Annotate(grammar.RootNode(), []byte(sample))
	assert.NoError(t, err)
	second, err := syntax.Annotate(grammar.RootNode(), []byte(sample))
	assert.NoError(t, err)
	assert.Equal(t, first.Len(), second.Len())
	for id := syntax.NodeID(1); int(id) <= first.Len(); id++ {
		assert.Equal(t, *first.Node(id), *second.Node(id))
	}

	_, err = syntax.Annotate(nil, nil)
	assert.ErrorIs(t, err, syntax.ErrEmptyTree)
}

func TestTree_Helpers(t *testing.T) {
	tree := annotate(t, sample)

	var calls []string
	var unresolved []string
	var functions []string
	tree.Walk(func(node *syntax.Node) bool {
		switch node.Kind {
		case syntax.KindCall:
			if name, ok := tree.CallName(node.ID); ok {
				calls = append(calls, name)
			} else {
				unresolved = append(unresolved, tree.CallText(node.ID))
			}
		case syntax.KindFunction:
			functions = append(functions, tree.Name(node.ID))
		}
		return true
	})
	assert.Equal(t, []string{"get_input", "branch"}, functions)
	assert.Equal(t, []string{"input", "data.isdigit", "process", "len", "os.system", "branch", "get_input"}, calls)
	assert.Empty(t, unresolved)

	var system syntax.NodeID
	tree.Walk(func(node *syntax.Node) bool {
		if node.Kind == syntax.KindCall && tree.CallText(node.ID) == "os.system" {
			system = node.ID
			return false
		}
		return true
	})
	if !assert.NotEqual(t, syntax.None, system) {
		return
	}
	fn := tree.Enclosing(system, syntax.KindFunction)
	assert.Equal(t, "branch", tree.Name(fn))
	args := tree.Arguments(system)
	if assert.Len(t, args, 1) {
		assert.Equal(t, "result", tree.Text(args[0]))
	}
	assert.Equal(t, 12, tree.Node(system).Line)
}

func TestTree_Literal(t *testing.T) {
	tests := []struct {
		description string
		source      string
		expect      interface{}
		ok          bool
	}{
		{description: "string", source: `x = "abc"`, expect: "abc", ok: true},
		{description: "single quoted raw string", source: `x = r'a\d'`, expect: `a\d`, ok: true},
		{description: "triple quoted", source: `x = """doc"""`, expect: "doc", ok: true},
		{description: "escaped newline", source: `x = "a\nb"`, expect: "a\nb", ok: true},
		{description: "raw string keeps escapes", source: `x = r"a\nb"`, expect: `a\nb`, ok: true},
		{description: "escaped quote", source: `x = 'it\'s'`, expect: "it's", ok: true},
		{description: "hex octal and unicode escapes", source: `x = "\x41\101\u00e9\t"`, expect: "AA\u00e9\t", ok: true},
		{description: "unknown escape kept", source: `x = "a\d\\b"`, expect: `a\d\b`, ok: true},
		{description: "bytes escape", source: `x = b"\xff\u0041"`, expect: "\xff\\u0041", ok: true},
		{description: "integer", source: `x = 0x10`, expect: int64(16), ok: true},
		{description: "float", source: `x = 1.5`, expect: 1.5, ok: true},
		{description: "bool", source: `x = True`, expect: true, ok: true},
		{description: "none", source: `x = None`, expect: nil, ok: true},
		{description: "concatenated", source: `x = "a" "b"`, expect: "ab", ok: true},
		{description: "formatted string", source: `x = f"{y}"`, ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			tree := annotate(t, tc.source+"\n")
			var value syntax.NodeID
			tree.Walk(func(node *syntax.Node) bool {
				if node.Kind == syntax.KindAssign {
					value = tree.Field(node.ID, "right")
					return false
				}
				return true
			})
			actual, ok := tree.Literal(value)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.EqualValues(t, tc.expect, actual)
			}
		})
	}
}

func TestTree_DottedName(t *testing.T) {
	tree := annotate(t, "a.b.c(1)\nfoo().bar(2)\n(eval)(3)\n")
	var names []string
	var texts []string
	tree.Walk(func(node *syntax.Node) bool {
		if node.Kind != syntax.KindCall {
			return true
		}
		name, ok := tree.CallName(node.ID)
		if ok {
			names = append(names, name)
		}
		texts = append(texts, tree.CallText(node.ID))
		return true
	})
	assert.Equal(t, []string{"a.b.c", "foo"}, names)
	assert.Equal(t, []string{"a.b.c", "foo().bar", "foo", "(eval)"}, texts)
}
