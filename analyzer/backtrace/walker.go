// Package backtrace walks the syntax sequence backwards from a sink call, following one
// variable through assignments and the conditions that test it.
package backtrace

import (
	"strings"

	"github.com/viant/toa/analyzer/source"
	"github.com/viant/toa/analyzer/syntax"
)

// StepKind represents a backtrace step kind
type StepKind string

const (
	StepAssign   StepKind = "assign"
	StepDecision StepKind = "decision"
)

// Step represents a single backtrace step
type Step struct {
	Kind     StepKind       `yaml:"kind"`
	Node     syntax.NodeID  `yaml:"-"`
	Line     int            `yaml:"line"`
	Variable string         `yaml:"variable"`       // variable tracked when the step was recorded
	Next     string         `yaml:"next,omitempty"` // variable tracked after an assignment
	Text     string         `yaml:"text"`
	Call     *source.Source `yaml:"call,omitempty"`
	Origin   bool           `yaml:"origin,omitempty"` // assigned value references no variable
}

// StopFn ends the walk before the node is processed
type StopFn func(node *syntax.Node) bool

// Walker represents reverse node walker
type Walker struct {
	tree *syntax.Tree
}

// Walk follows sequence predecessors of start until the sequence head or stop, recording
// assignments to the tracked variable and conditions testing it
func (w *Walker) Walk(start syntax.NodeID, variable string, stop StopFn) []*Step {
	node := w.tree.Node(start)
	if node == nil || variable == "" {
		return nil
	}
	var steps []*Step
	tracked := variable
	for id := node.Prev; id != syntax.None; id = w.tree.Node(id).Prev {
		current := w.tree.Node(id)
		if stop != nil && stop(current) {
			break
		}
		switch current.Kind {
		case syntax.KindAssign:
			if step := w.assign(current, tracked); step != nil {
				steps = append(steps, step)
				tracked = step.Next
			}
		case syntax.KindIf:
			if step := w.decision(current, tracked); step != nil {
				steps = append(steps, step)
			}
		}
	}
	return steps
}

func (w *Walker) assign(node *syntax.Node, tracked string) *Step {
	left := w.tree.Node(w.tree.Field(node.ID, "left"))
	if left == nil || left.Kind != syntax.KindName || w.tree.Text(left.ID) != tracked {
		return nil
	}
	value := w.tree.Field(node.ID, "right")
	for w.tree.Node(value) != nil && w.tree.Node(value).Kind == syntax.KindAssign {
		value = w.tree.Field(value, "right")
	}
	step := &Step{
		Kind:     StepAssign,
		Node:     node.ID,
		Line:     node.Line,
		Variable: tracked,
		Next:     tracked,
		Text:     render(w.tree.Text(node.ID)),
	}
	name, call := w.base(value)
	step.Call = call
	if name == "" {
		step.Origin = true
		return step
	}
	step.Next = name
	return step
}

func (w *Walker) decision(node *syntax.Node, tracked string) *Step {
	condition := w.tree.Field(node.ID, "condition")
	if condition == syntax.None || !w.references(condition, tracked) {
		return nil
	}
	keyword := "if"
	if node.Type == "elif_clause" {
		keyword = "elif"
	}
	return &Step{
		Kind:     StepDecision,
		Node:     node.ID,
		Line:     node.Line,
		Variable: tracked,
		Text:     keyword + " " + render(w.tree.Text(condition)) + ":",
	}
}

// references checks whether the expression is the tracked name or contains it through
// boolean, comparison, unary, binary and parenthesized nodes
func (w *Walker) references(id syntax.NodeID, tracked string) bool {
	node := w.tree.Node(id)
	if node == nil {
		return false
	}
	switch {
	case node.Kind == syntax.KindName:
		return w.tree.Text(id) == tracked
	case node.Kind.IsOperator() || node.Kind == syntax.KindParen:
		for _, child := range node.Children {
			if w.references(child, tracked) {
				return true
			}
		}
	}
	return false
}

// base returns the variable an assigned value derives from, with the outermost call of the value
// described. Subscripts retarget to their base, method calls to their receiver, plain calls
// to the first argument deriving from a variable.
func (w *Walker) base(id syntax.NodeID) (string, *source.Source) {
	id = w.tree.Unwrap(id)
	node := w.tree.Node(id)
	if node == nil {
		return "", nil
	}
	switch {
	case node.Kind == syntax.KindName:
		return w.tree.Text(id), nil
	case node.Kind == syntax.KindSubscript:
		return w.base(w.tree.Field(id, "value"))
	case node.Kind == syntax.KindAttribute:
		return w.base(w.tree.Field(id, "object"))
	case node.Kind == syntax.KindCall:
		call := w.describe(id)
		function := w.tree.Unwrap(w.tree.Field(id, "function"))
		if fn := w.tree.Node(function); fn != nil && fn.Kind == syntax.KindAttribute {
			name, _ := w.base(w.tree.Field(function, "object"))
			return name, call
		}
		for _, arg := range w.callArguments(id) {
			if name, _ := w.base(arg); name != "" {
				return name, call
			}
		}
		return "", call
	case node.Kind.IsOperator():
		var call *source.Source
		for _, child := range node.Children {
			name, inner := w.base(child)
			if call == nil {
				call = inner
			}
			if name != "" {
				return name, call
			}
		}
		return "", call
	}
	return "", nil
}

// callArguments returns positional arguments followed by keyword argument values
func (w *Walker) callArguments(call syntax.NodeID) []syntax.NodeID {
	result := w.tree.Arguments(call)
	args := w.tree.Node(w.tree.Field(call, "arguments"))
	if args == nil {
		return result
	}
	for _, child := range args.Children {
		if w.tree.Node(child).Type == "keyword_argument" {
			result = append(result, w.tree.Field(child, "value"))
		}
	}
	return result
}

// describe synthesizes a call descriptor from the call's syntax alone
func (w *Walker) describe(call syntax.NodeID) *source.Source {
	name, ok := w.tree.CallName(call)
	if !ok {
		name = w.tree.CallText(call)
	}
	var args []*source.Source
	for _, arg := range w.tree.Arguments(call) {
		args = append(args, w.describeArgument(arg))
	}
	return source.Call(name, args...)
}

func (w *Walker) describeArgument(id syntax.NodeID) *source.Source {
	id = w.tree.Unwrap(id)
	node := w.tree.Node(id)
	switch node.Kind {
	case syntax.KindName:
		return source.Name(w.tree.Text(id))
	case syntax.KindLiteral:
		if value, ok := w.tree.Literal(id); ok {
			return source.Literal(value)
		}
	case syntax.KindCall:
		return w.describe(id)
	}
	return source.Text(render(w.tree.Text(id)))
}

// Variable returns the variable the first positional argument of the call derives from
func (w *Walker) Variable(call syntax.NodeID) string {
	args := w.tree.Arguments(call)
	if len(args) == 0 {
		return ""
	}
	name, _ := w.base(args[0])
	return name
}

// Within stops the walk at the node, typically the enclosing function definition
func Within(scope syntax.NodeID) StopFn {
	return func(node *syntax.Node) bool {
		return node.ID == scope
	}
}

func render(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// New creates a walker
func New(tree *syntax.Tree) *Walker {
	return &Walker{tree: tree}
}
