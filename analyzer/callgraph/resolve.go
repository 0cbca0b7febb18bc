package callgraph

import (
	"strings"

	"github.com/viant/toa/analyzer/source"
	"github.com/viant/toa/analyzer/syntax"
)

// Resolve resolves an expression node to its source. A bare name resolves to {name: binding}
// when bound, otherwise to the name itself. A call resolves to a call descriptor and records
// a "<function>_return" ledger entry. Anything else resolves to its rendered text.
func (i *Index) Resolve(id syntax.NodeID) *source.Source {
	id = i.tree.Unwrap(id)
	node := i.tree.Node(id)
	if node == nil {
		return source.Text("")
	}
	switch node.Kind {
	case syntax.KindName:
		name := i.tree.Text(id)
		if binding, ok := i.bindings[name]; ok {
			return source.Bind(name, binding)
		}
		return source.Name(name)
	case syntax.KindLiteral:
		if value, ok := i.tree.Literal(id); ok {
			return source.Literal(value)
		}
	case syntax.KindCall:
		return i.resolveCall(id)
	}
	return source.Text(render(i.tree.Text(id)))
}

func (i *Index) resolveCall(id syntax.NodeID) *source.Source {
	name, ok := i.tree.CallName(id)
	if !ok {
		name = i.tree.CallText(id)
	}
	var args []*source.Source
	for _, arg := range i.tree.Arguments(id) {
		args = append(args, i.Resolve(arg))
	}
	call := source.Call(name, args...)
	i.ledger.Record(name+"_return", call)
	return call
}

// render collapses multi line expression text into a single line
func render(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
