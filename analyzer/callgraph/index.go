// Package callgraph builds the call graph and variable source index of a python module in a
// single forward pass over the annotated syntax tree.
package callgraph

import (
	"strconv"

	"github.com/viant/toa/analyzer/ledger"
	"github.com/viant/toa/analyzer/sink"
	"github.com/viant/toa/analyzer/source"
	"github.com/viant/toa/analyzer/syntax"
)

// Global is the enclosing scope name of module level code
const Global = "global"

// Function represents a function definition
type Function struct {
	Name string
	Node syntax.NodeID
	Line int
}

// CallSite represents a call expression
type CallSite struct {
	Node      syntax.NodeID
	Name      string // resolved dotted name, empty when unresolvable
	Text      string // rendered callee text
	Resolved  bool
	Caller    string // enclosing function or Global
	Line      int
	Column    int
	Arguments []*source.Source // resolved positional arguments, sink calls only
}

// Callee returns the resolved name or the rendered callee text
func (c *CallSite) Callee() string {
	if c.Resolved {
		return c.Name
	}
	return c.Text
}

// Index holds the call graph and variable bindings of a module
type Index struct {
	tree      *syntax.Tree
	ledger    *ledger.Ledger
	sinks     *sink.Set
	functions map[string]*Function
	order     []string
	callees   map[string][]string
	callers   map[string][]string
	bindings  map[string]*source.Source
	calls     []*CallSite
	sinkSites []*CallSite
	sinkArgs  source.Set
}

// Tree returns indexed tree
func (i *Index) Tree() *syntax.Tree {
	return i.tree
}

// Ledger returns the ledger the index records to
func (i *Index) Ledger() *ledger.Ledger {
	return i.ledger
}

// Function returns function definition by name
func (i *Index) Function(name string) (*Function, bool) {
	fn, ok := i.functions[name]
	return fn, ok
}

// Functions returns function definitions in first definition order
func (i *Index) Functions() []*Function {
	result := make([]*Function, 0, len(i.order))
	for _, name := range i.order {
		result = append(result, i.functions[name])
	}
	return result
}

// Callers returns callers of the function in call-site order, with multiplicity
func (i *Index) Callers(name string) []string {
	return append([]string{}, i.callers[name]...)
}

// Callees returns functions called by the caller in call-site order, with multiplicity
func (i *Index) Callees(name string) []string {
	return append([]string{}, i.callees[name]...)
}

// HasCallers returns true if the function has at least one recorded caller
func (i *Index) HasCallers(name string) bool {
	return len(i.callers[name]) > 0
}

// Binding returns the current variable binding
func (i *Index) Binding(name string) (*source.Source, bool) {
	value, ok := i.bindings[name]
	return value, ok
}

// Calls returns all call sites in sequence order
func (i *Index) Calls() []*CallSite {
	return i.calls
}

// Sinks returns sink call sites in sequence order
func (i *Index) Sinks() []*CallSite {
	return i.sinkSites
}

// SinkArguments returns resolved arguments of all sink calls
func (i *Index) SinkArguments() *source.Set {
	return &i.sinkArgs
}

// Tainted returns true if the source occurs in any resolved sink argument
func (i *Index) Tainted(src *source.Source) bool {
	return i.sinkArgs.Covers(src)
}

// Build indexes the tree
func Build(tree *syntax.Tree, opts ...Option) *Index {
	ret := &Index{
		tree:      tree,
		functions: map[string]*Function{},
		callees:   map[string][]string{},
		callers:   map[string][]string{},
		bindings:  map[string]*source.Source{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.ledger == nil {
		ret.ledger = ledger.New()
	}
	if ret.sinks == nil {
		ret.sinks = sink.New()
	}
	tree.Walk(func(node *syntax.Node) bool {
		switch node.Kind {
		case syntax.KindFunction:
			ret.indexFunction(node)
		case syntax.KindCall:
			ret.indexCall(node)
		case syntax.KindAssign:
			ret.indexAssignment(node)
		}
		return true
	})
	return ret
}

func (i *Index) indexFunction(node *syntax.Node) {
	name := i.tree.Name(node.ID)
	if name == "" {
		return
	}
	if _, ok := i.functions[name]; !ok {
		i.order = append(i.order, name)
	}
	i.functions[name] = &Function{Name: name, Node: node.ID, Line: node.Line}
	if _, ok := i.callees[name]; !ok {
		i.callees[name] = []string{}
	}
}

func (i *Index) indexCall(node *syntax.Node) {
	site := &CallSite{
		Node:   node.ID,
		Text:   i.tree.CallText(node.ID),
		Caller: i.enclosing(node.ID),
		Line:   node.Line,
		Column: node.Column,
	}
	site.Name, site.Resolved = i.tree.CallName(node.ID)
	i.calls = append(i.calls, site)
	if site.Resolved {
		i.callees[site.Caller] = append(i.callees[site.Caller], site.Name)
		i.callers[site.Name] = append(i.callers[site.Name], site.Caller)
	}
	if !i.isSink(site) {
		return
	}
	i.sinkSites = append(i.sinkSites, site)
	for pos, arg := range i.tree.Arguments(node.ID) {
		value := i.Resolve(arg)
		i.ledger.Record(argumentName(site.Callee(), pos), value)
		i.sinkArgs.Add(value)
		site.Arguments = append(site.Arguments, value)
	}
}

func (i *Index) isSink(site *CallSite) bool {
	if site.Resolved {
		return i.sinks.Match(site.Name)
	}
	return i.sinks.MatchText(site.Text)
}

func (i *Index) indexAssignment(node *syntax.Node) {
	if i.isChained(node) {
		return
	}
	targets, value := i.assignment(node.ID)
	if value == syntax.None || len(targets) == 0 {
		return
	}
	resolved := i.Resolve(value)
	for _, target := range targets {
		i.bindings[target] = resolved
		i.ledger.Record(target, resolved)
	}
}

// isChained returns true for the inner assignment of a chained a = b = v statement
func (i *Index) isChained(node *syntax.Node) bool {
	parent := i.tree.Node(node.Parent)
	return parent != nil && parent.Kind == syntax.KindAssign && node.Field == "right"
}

// assignment returns bare-name targets of a possibly chained assignment and its value node
func (i *Index) assignment(id syntax.NodeID) ([]string, syntax.NodeID) {
	var targets []string
	for {
		left := i.tree.Node(i.tree.Field(id, "left"))
		if left != nil && left.Kind == syntax.KindName {
			targets = append(targets, i.tree.Text(left.ID))
		}
		right := i.tree.Field(id, "right")
		if node := i.tree.Node(right); node != nil && node.Kind == syntax.KindAssign {
			id = right
			continue
		}
		return targets, right
	}
}

func (i *Index) enclosing(id syntax.NodeID) string {
	fn := i.tree.Enclosing(id, syntax.KindFunction)
	if fn == syntax.None {
		return Global
	}
	if name := i.tree.Name(fn); name != "" {
		return name
	}
	return Global
}

func argumentName(function string, pos int) string {
	return function + "_arg_" + strconv.Itoa(pos)
}
