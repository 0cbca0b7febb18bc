package syntax

// Kind classifies a syntax node by the construct it represents
type Kind string

const (
	KindModule    Kind = "module"
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindCall      Kind = "call"
	KindAssign    Kind = "assign"
	KindIf        Kind = "if"
	KindName      Kind = "name"
	KindLiteral   Kind = "literal"
	KindBinary    Kind = "binary"
	KindUnary     Kind = "unary"
	KindBool      Kind = "bool"
	KindCompare   Kind = "compare"
	KindAttribute Kind = "attribute"
	KindSubscript Kind = "subscript"
	KindParen     Kind = "paren"
	KindOther     Kind = "other"
)

// grammarKinds maps tree-sitter python node types to node kinds
var grammarKinds = map[string]Kind{
	"module":                   KindModule,
	"function_definition":      KindFunction,
	"class_definition":         KindClass,
	"call":                     KindCall,
	"assignment":               KindAssign,
	"if_statement":             KindIf,
	"elif_clause":              KindIf,
	"identifier":               KindName,
	"string":                   KindLiteral,
	"concatenated_string":      KindLiteral,
	"integer":                  KindLiteral,
	"float":                    KindLiteral,
	"true":                     KindLiteral,
	"false":                    KindLiteral,
	"none":                     KindLiteral,
	"binary_operator":          KindBinary,
	"unary_operator":           KindUnary,
	"not_operator":             KindUnary,
	"boolean_operator":         KindBool,
	"comparison_operator":      KindCompare,
	"attribute":                KindAttribute,
	"subscript":                KindSubscript,
	"parenthesized_expression": KindParen,
}

// KindOf returns the node kind for a grammar node type
func KindOf(grammarType string) Kind {
	if kind, ok := grammarKinds[grammarType]; ok {
		return kind
	}
	return KindOther
}

// IsOperator returns true for boolean, comparison, unary and binary operator kinds
func (k Kind) IsOperator() bool {
	switch k {
	case KindBool, KindCompare, KindUnary, KindBinary:
		return true
	}
	return false
}
