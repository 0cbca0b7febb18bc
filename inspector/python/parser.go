package python

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/viant/toa/analyzer/syntax"
)

// DefaultMaxFileSize is the default upper bound of accepted source size
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	// ErrParse reports source the grammar could not parse
	ErrParse = errors.New("python: parse failure")
	// ErrTooLarge reports source above the configured size limit
	ErrTooLarge = errors.New("python: source too large")
)

// Option configures a Parser
type Option func(*Parser)

// WithMaxFileSize sets the maximum accepted source size in bytes
func WithMaxFileSize(size int) Option {
	return func(p *Parser) {
		if size > 0 {
			p.maxFileSize = size
		}
	}
}

// Parser parses python source with tree-sitter; each call uses its own grammar parser,
// so a Parser is safe for concurrent use.
type Parser struct {
	maxFileSize int
}

// NewParser creates a python parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses source and returns the grammar tree; syntax errors are fatal
func (p *Parser) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	if len(src) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(src), p.maxFileSize)
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: invalid utf-8", ErrParse)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: no root node", ErrParse)
	}
	if root.HasError() {
		line := firstErrorLine(root)
		return nil, fmt.Errorf("%w: syntax error near line %d", ErrParse, line)
	}
	return tree, nil
}

// Annotate parses source and builds the annotated syntax arena
func (p *Parser) Annotate(ctx context.Context, src []byte) (*syntax.Tree, error) {
	tree, err := p.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	return syntax.Annotate(tree.RootNode(), src)
}

func firstErrorLine(root *sitter.Node) int {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type() == "ERROR" || n.IsMissing() {
			return int(n.StartPoint().Row) + 1
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(i); child != nil && child.HasError() {
				stack = append(stack, child)
			}
		}
	}
	return int(root.StartPoint().Row) + 1
}
