package syntax

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrEmptyTree is returned when there is no grammar root to annotate
var ErrEmptyTree = errors.New("syntax: empty tree")

// fieldNames lists grammar fields recorded on child nodes
var fieldNames = []string{
	"name", "parameters", "body", "function", "arguments",
	"left", "right", "condition", "consequence", "alternative",
	"object", "attribute", "value", "subscript", "argument",
	"definition", "superclasses", "return_type", "key",
}

type span struct {
	start, end uint32
	typ        string
}

type pending struct {
	node   *sitter.Node
	parent NodeID
	field  string
}

// Annotate walks the grammar tree once in pre-order and returns a new arena in which every
// node carries an id, parent, children and sequence links. It never mutates an existing
// tree, so annotating the same input again yields an identical tree.
func Annotate(root *sitter.Node, source []byte) (*Tree, error) {
	if root == nil {
		return nil, ErrEmptyTree
	}
	tree := &Tree{nodes: []*Node{nil}, source: source}
	stack := []pending{{node: root}}
	var last NodeID
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := item.node
		point := n.StartPoint()
		id := NodeID(len(tree.nodes))
		node := &Node{
			ID:     id,
			Kind:   KindOf(n.Type()),
			Type:   n.Type(),
			Field:  item.field,
			Parent: item.parent,
			Prev:   last,
			Start:  n.StartByte(),
			End:    n.EndByte(),
			Line:   int(point.Row) + 1,
			Column: int(point.Column),
		}
		tree.nodes = append(tree.nodes, node)
		if last != None {
			tree.nodes[last].Next = id
		}
		if item.parent != None {
			parent := tree.nodes[item.parent]
			parent.Children = append(parent.Children, id)
		}
		last = id

		children := namedChildren(n)
		fields := childFields(n)
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			stack = append(stack, pending{
				node:   child,
				parent: id,
				field:  fields[span{child.StartByte(), child.EndByte(), child.Type()}],
			})
		}
	}
	tree.tail = last
	return tree, nil
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	result := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		result = append(result, child)
	}
	return result
}

func childFields(n *sitter.Node) map[span]string {
	var fields map[span]string
	for _, name := range fieldNames {
		child := n.ChildByFieldName(name)
		if child == nil || !child.IsNamed() {
			continue
		}
		if fields == nil {
			fields = map[span]string{}
		}
		key := span{child.StartByte(), child.EndByte(), child.Type()}
		if _, ok := fields[key]; !ok {
			fields[key] = name
		}
	}
	return fields
}
