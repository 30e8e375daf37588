package ast

import (
	"github.com/nilp0inter/grace/internal/token"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// Expression is the base interface for all syntax nodes. Every node carries
// the token it started at, which is where diagnostics point.
type Expression interface {
	expressionNode()
	GetToken() token.Token
}

// Variable references a bound term variable. Index disambiguates shadowed
// bindings that share a name: index n skips the n innermost bindings of that
// name, so `x@0` (written plain `x`) is the innermost one.
type Variable struct {
	Token token.Token
	Name  string
	Index int
}

// Lambda is a single-parameter function literal.
type Lambda struct {
	Token     token.Token
	Parameter string
	Body      Expression
}

// Application applies Function to Argument. Multi-argument calls are nested
// applications.
type Application struct {
	Function Expression
	Argument Expression
}

// Binding is one `let name = value` entry, with an optional type annotation.
type Binding struct {
	Token      token.Token
	Name       string
	Annotation typesystem.Type // nil when unannotated
	Value      Expression
}

// Let introduces one or more bindings, in order, scoping over Body.
type Let struct {
	Token    token.Token
	Bindings []*Binding
	Body     Expression
}

// Annotation ascribes a type to an expression: `e : T`.
type Annotation struct {
	Token      token.Token
	Expression Expression
	Type       typesystem.Type
}

// ListLiteral is `[e1, e2, ...]`.
type ListLiteral struct {
	Token    token.Token
	Elements []Expression
}

// RecordField is one `label: value` entry of a record literal.
type RecordField struct {
	Token token.Token
	Label string
	Value Expression
}

// RecordLiteral is `{ l1: e1, l2: e2, ... }`.
type RecordLiteral struct {
	Token  token.Token
	Fields []RecordField
}

// Projection selects a field from a record: `r.label`.
type Projection struct {
	Token  token.Token // the label token
	Record Expression
	Label  string
}

// Alternative is a union constructor, written as a capitalized identifier.
// Applying it to a payload produces a tagged union value.
type Alternative struct {
	Token token.Token
	Name  string
}

// Merge wraps a record of handler functions; applying the result to a union
// value dispatches on the value's tag.
type Merge struct {
	Token    token.Token
	Handlers Expression
}

// If is `if predicate then t else f`.
type If struct {
	Token     token.Token
	Predicate Expression
	Then      Expression
	Else      Expression
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

// NaturalLiteral is a non-negative integer literal.
type NaturalLiteral struct {
	Token token.Token
	Value uint64
}

// TextLiteral is a double-quoted string literal.
type TextLiteral struct {
	Token token.Token
	Value string
}

// Operator is a binary operator expression.
type Operator struct {
	Token token.Token // the operator token
	Op    string
	Left  Expression
	Right Expression
}

// Builtin references a primitive function such as List/length.
type Builtin struct {
	Token token.Token
	Name  string
}

// Embed is an unresolved import path. The import resolver replaces every
// Embed with the parsed contents of the referenced file before the tree
// reaches inference; neither inference nor evaluation accepts one.
type Embed struct {
	Token token.Token
	Path  string
}

func (*Variable) expressionNode()       {}
func (*Lambda) expressionNode()         {}
func (*Application) expressionNode()    {}
func (*Let) expressionNode()            {}
func (*Annotation) expressionNode()     {}
func (*ListLiteral) expressionNode()    {}
func (*RecordLiteral) expressionNode()  {}
func (*Projection) expressionNode()     {}
func (*Alternative) expressionNode()    {}
func (*Merge) expressionNode()          {}
func (*If) expressionNode()             {}
func (*BoolLiteral) expressionNode()    {}
func (*NaturalLiteral) expressionNode() {}
func (*TextLiteral) expressionNode()    {}
func (*Operator) expressionNode()       {}
func (*Builtin) expressionNode()        {}
func (*Embed) expressionNode()          {}

func (e *Variable) GetToken() token.Token       { return e.Token }
func (e *Lambda) GetToken() token.Token         { return e.Token }
func (e *Application) GetToken() token.Token    { return e.Function.GetToken() }
func (e *Let) GetToken() token.Token            { return e.Token }
func (e *Annotation) GetToken() token.Token     { return e.Token }
func (e *ListLiteral) GetToken() token.Token    { return e.Token }
func (e *RecordLiteral) GetToken() token.Token  { return e.Token }
func (e *Projection) GetToken() token.Token     { return e.Token }
func (e *Alternative) GetToken() token.Token    { return e.Token }
func (e *Merge) GetToken() token.Token          { return e.Token }
func (e *If) GetToken() token.Token             { return e.Token }
func (e *BoolLiteral) GetToken() token.Token    { return e.Token }
func (e *NaturalLiteral) GetToken() token.Token { return e.Token }
func (e *TextLiteral) GetToken() token.Token    { return e.Token }
func (e *Operator) GetToken() token.Token       { return e.Token }
func (e *Builtin) GetToken() token.Token        { return e.Token }
func (e *Embed) GetToken() token.Token          { return e.Token }
