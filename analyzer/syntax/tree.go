package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// NodeID addresses a node in the tree arena; ids start at 1
type NodeID int

// None marks an absent node reference
const None NodeID = 0

// Node is a single annotated syntax node record
type Node struct {
	ID       NodeID   // unique id, increasing in sequence order
	Kind     Kind     // construct kind
	Type     string   // grammar node type
	Field    string   // field name under the parent, if any
	Parent   NodeID   // enclosing node, None for the root
	Children []NodeID // structural children in source order
	Prev     NodeID   // sequence predecessor, None for the head
	Next     NodeID   // sequence successor, None for the tail
	Start    uint32   // start byte offset
	End      uint32   // end byte offset
	Line     int      // 1-based start line
	Column   int      // 0-based start column
}

// Tree is a flat arena of annotated nodes with a pre-order sequence over all of them
type Tree struct {
	nodes  []*Node // nodes[0] is unused so that nodes[id] addresses id
	source []byte
	tail   NodeID
}

// Len returns number of nodes
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Node returns node for the id or nil
func (t *Tree) Node(id NodeID) *Node {
	if id <= None || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Root returns the root node id
func (t *Tree) Root() NodeID {
	if t.Len() == 0 {
		return None
	}
	return 1
}

// Head returns the first node of the sequence (the root)
func (t *Tree) Head() NodeID {
	return t.Root()
}

// Tail returns the last node of the sequence
func (t *Tree) Tail() NodeID {
	return t.tail
}

// Source returns the source the tree was built from
func (t *Tree) Source() []byte {
	return t.source
}

// Text returns the source text of the node
func (t *Tree) Text(id NodeID) string {
	node := t.Node(id)
	if node == nil {
		return ""
	}
	return string(t.source[node.Start:node.End])
}

// Field returns the first child registered under the field name
func (t *Tree) Field(id NodeID, name string) NodeID {
	node := t.Node(id)
	if node == nil {
		return None
	}
	for _, child := range node.Children {
		if t.nodes[child].Field == name {
			return child
		}
	}
	return None
}

// Walk visits nodes in sequence order until fn returns false
func (t *Tree) Walk(fn func(node *Node) bool) {
	for id := t.Head(); id != None; id = t.nodes[id].Next {
		if !fn(t.nodes[id]) {
			return
		}
	}
}

// WalkSubtree visits the node and its descendants in sequence order until fn returns false
func (t *Tree) WalkSubtree(id NodeID, fn func(node *Node) bool) {
	if t.Node(id) == nil {
		return
	}
	last := id
	for children := t.nodes[last].Children; len(children) > 0; children = t.nodes[last].Children {
		last = children[len(children)-1]
	}
	for current := id; current != None; current = t.nodes[current].Next {
		if !fn(t.nodes[current]) || current == last {
			return
		}
	}
}

// Enclosing returns the nearest proper ancestor with the kind
func (t *Tree) Enclosing(id NodeID, kind Kind) NodeID {
	node := t.Node(id)
	if node == nil {
		return None
	}
	for parent := node.Parent; parent != None; parent = t.nodes[parent].Parent {
		if t.nodes[parent].Kind == kind {
			return parent
		}
	}
	return None
}

// Name returns the declared name of a function or class node
func (t *Tree) Name(id NodeID) string {
	return t.Text(t.Field(id, "name"))
}

// Unwrap strips parenthesized expression wrappers
func (t *Tree) Unwrap(id NodeID) NodeID {
	for {
		node := t.Node(id)
		if node == nil || node.Kind != KindParen || len(node.Children) != 1 {
			return id
		}
		id = node.Children[0]
	}
}

// DottedName resolves a name or attribute chain (a.b.c) to a dotted string
func (t *Tree) DottedName(id NodeID) (string, bool) {
	node := t.Node(id)
	if node == nil {
		return "", false
	}
	switch node.Kind {
	case KindName:
		return t.Text(id), true
	case KindAttribute:
		base, ok := t.DottedName(t.Field(id, "object"))
		if !ok {
			return "", false
		}
		attr := t.Field(id, "attribute")
		if attr == None {
			return "", false
		}
		return base + "." + t.Text(attr), true
	}
	return "", false
}

// CallName resolves the called function name of a call node
func (t *Tree) CallName(call NodeID) (string, bool) {
	return t.DottedName(t.Field(call, "function"))
}

// CallText returns rendered callee text with whitespace removed
func (t *Tree) CallText(call NodeID) string {
	return strings.Join(strings.Fields(t.Text(t.Field(call, "function"))), "")
}

// Arguments returns positional argument nodes of a call
func (t *Tree) Arguments(call NodeID) []NodeID {
	args := t.Node(t.Field(call, "arguments"))
	if args == nil || args.Type != "argument_list" {
		return nil
	}
	var result []NodeID
	for _, child := range args.Children {
		switch t.nodes[child].Type {
		case "keyword_argument", "dictionary_splat":
			continue
		}
		result = append(result, child)
	}
	return result
}

// Literal returns the value of a literal node
func (t *Tree) Literal(id NodeID) (interface{}, bool) {
	node := t.Node(id)
	if node == nil || node.Kind != KindLiteral {
		return nil, false
	}
	text := t.Text(id)
	switch node.Type {
	case "true":
		return true, true
	case "false":
		return false, true
	case "none":
		return nil, true
	case "integer":
		if v, err := strconv.ParseInt(text, 0, 64); err == nil {
			return v, true
		}
		return text, true
	case "float":
		if v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err == nil {
			return v, true
		}
		return text, true
	case "string":
		return unquote(text)
	case "concatenated_string":
		builder := strings.Builder{}
		for _, child := range node.Children {
			part, ok := t.Literal(child)
			if !ok {
				return nil, false
			}
			s, ok := part.(string)
			if !ok {
				return nil, false
			}
			builder.WriteString(s)
		}
		return builder.String(), true
	}
	return nil, false
}

// unquote strips a python string prefix and quotes and decodes escapes of non raw strings;
// formatted strings are not literals
func unquote(text string) (interface{}, bool) {
	i := 0
	raw, binary := false, false
	for i < len(text) && strings.IndexByte("rRbBuUfF", text[i]) >= 0 {
		switch text[i] {
		case 'f', 'F':
			return nil, false
		case 'r', 'R':
			raw = true
		case 'b', 'B':
			binary = true
		}
		i++
	}
	body := text[i:]
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(quote) && strings.HasPrefix(body, quote) && strings.HasSuffix(body, quote) {
			body = body[len(quote) : len(body)-len(quote)]
			break
		}
	}
	if raw || !strings.Contains(body, `\`) {
		return body, true
	}
	return unescape(body, binary), true
}

// unescape decodes backslash escapes; unknown escapes such as \d or \N{...} are kept as typed
func unescape(body string, binary bool) string {
	builder := strings.Builder{}
	for len(body) > 0 {
		if body[0] != '\\' || len(body) == 1 {
			r, size := utf8.DecodeRuneInString(body)
			builder.WriteRune(r)
			body = body[size:]
			continue
		}
		switch c := body[1]; {
		case c == '\n':
			body = body[2:]
			continue
		case c == '\'' || c == '"':
			builder.WriteByte(c)
			body = body[2:]
			continue
		case c >= '0' && c <= '7':
			end := 2
			for end < len(body) && end < 4 && body[end] >= '0' && body[end] <= '7' {
				end++
			}
			value, _ := strconv.ParseUint(body[1:end], 8, 32)
			writeCode(&builder, rune(value), binary)
			body = body[end:]
			continue
		}
		if binary && (body[1] == 'u' || body[1] == 'U') {
			builder.WriteByte('\\')
			body = body[1:]
			continue
		}
		value, _, tail, err := strconv.UnquoteChar(body, '"')
		if err != nil {
			builder.WriteByte('\\')
			body = body[1:]
			continue
		}
		writeCode(&builder, value, binary && body[1] == 'x')
		body = tail
	}
	return builder.String()
}

// writeCode writes a code point, or a single byte for bytes literals
func writeCode(builder *strings.Builder, value rune, asByte bool) {
	if asByte && value < 256 {
		builder.WriteByte(byte(value))
		return
	}
	builder.WriteRune(value)
}
