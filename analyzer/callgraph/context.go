package callgraph

import (
	"strings"
)

// DefaultContextDepth is the caller tree depth rendered for each caller
const DefaultContextDepth = 2

// Context renders the definition of the function followed by the caller tree of each caller,
// each caller with its definition and its own callers up to depth levels.
func (i *Index) Context(function string, callers []string, depth int) string {
	builder := &strings.Builder{}
	builder.WriteString("Function " + function + " definition:\n")
	if fn, ok := i.functions[function]; ok {
		builder.WriteString(i.definition(fn))
		builder.WriteString("\n\n")
	}
	builder.WriteString("Caller functions tree:\n")
	for _, caller := range callers {
		i.callerTree(builder, caller, 0, depth)
	}
	return builder.String()
}

func (i *Index) callerTree(builder *strings.Builder, function string, depth, maxDepth int) {
	indent := strings.Repeat("  ", depth)
	builder.WriteString(indent + "- " + function + "\n")
	if fn, ok := i.functions[function]; ok {
		inner := indent + "  "
		builder.WriteString(inner + strings.ReplaceAll(i.definition(fn), "\n", "\n"+inner) + "\n")
	}
	if depth >= maxDepth {
		return
	}
	for _, caller := range unique(i.callers[function]) {
		i.callerTree(builder, caller, depth+1, maxDepth)
	}
}

func (i *Index) definition(fn *Function) string {
	return strings.TrimSpace(i.tree.Text(fn.Node))
}

func unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	var result []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	return result
}
