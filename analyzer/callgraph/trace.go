package callgraph

import "github.com/viant/toa/analyzer/syntax"

// TraceFunctionVariables re-resolves bare-name assignments inside the function definition and
// records them; each variable name is traced once across calls sharing the traced set.
func (i *Index) TraceFunctionVariables(function string, traced map[string]bool) {
	fn, ok := i.functions[function]
	if !ok {
		return
	}
	i.tree.WalkSubtree(fn.Node, func(node *syntax.Node) bool {
		if node.Kind != syntax.KindAssign || i.isChained(node) {
			return true
		}
		targets, value := i.assignment(node.ID)
		if value == syntax.None {
			return true
		}
		for _, target := range targets {
			if traced[target] {
				continue
			}
			traced[target] = true
			i.ledger.Record(target, i.Resolve(value))
		}
		return true
	})
}

// TraceChain traces variables of every function along the chain
func (i *Index) TraceChain(chain []string) {
	traced := map[string]bool{}
	for _, function := range chain {
		i.TraceFunctionVariables(function, traced)
	}
}
