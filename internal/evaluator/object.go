package evaluator

import (
	"strconv"
	"strings"

	"github.com/nilp0inter/grace/internal/ast"
)

type ObjectType string

const (
	BOOL_OBJ        = "BOOL"
	NATURAL_OBJ     = "NATURAL"
	TEXT_OBJ        = "TEXT"
	LIST_OBJ        = "LIST"
	RECORD_OBJ      = "RECORD"
	TAGGED_OBJ      = "TAGGED"
	CLOSURE_OBJ     = "CLOSURE"
	CONSTRUCTOR_OBJ = "CONSTRUCTOR"
	MERGE_OBJ       = "MERGE"
	BUILTIN_OBJ     = "BUILTIN"
	NEUTRAL_OBJ     = "NEUTRAL"
)

// Object is a runtime value. Values are immutable and share structure
// freely; evaluation never mutates one in place.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOL_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type Natural struct {
	Value uint64
}

func (n *Natural) Type() ObjectType { return NATURAL_OBJ }
func (n *Natural) Inspect() string  { return strconv.FormatUint(n.Value, 10) }

type Text struct {
	Value string
}

func (t *Text) Type() ObjectType { return TEXT_OBJ }
func (t *Text) Inspect() string  { return strconv.Quote(t.Value) }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RecordEntry is one field of a record value. Construction order is
// preserved for printing.
type RecordEntry struct {
	Label string
	Value Object
}

type Record struct {
	Entries []RecordEntry
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	if len(r.Entries) == 0 {
		return "{}"
	}
	parts := make([]string, len(r.Entries))
	for i, entry := range r.Entries {
		parts[i] = entry.Label + ": " + entry.Value.Inspect()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Get looks a field up by label.
func (r *Record) Get(label string) (Object, bool) {
	for _, entry := range r.Entries {
		if entry.Label == label {
			return entry.Value, true
		}
	}
	return nil, false
}

// Tagged is a union value: one tag with one payload.
type Tagged struct {
	Tag     string
	Payload Object
}

func (t *Tagged) Type() ObjectType { return TAGGED_OBJ }
func (t *Tagged) Inspect() string  { return t.Tag + " " + t.Payload.Inspect() }

// Closure captures the defining environment of a lambda.
type Closure struct {
	Env       *Environment
	Parameter string
	Body      ast.Expression
}

func (c *Closure) Type() ObjectType { return CLOSURE_OBJ }
func (c *Closure) Inspect() string  { return "\\" + c.Parameter + " -> ..." }

// Constructor is an alternative constructor awaiting its payload.
type Constructor struct {
	Tag string
}

func (c *Constructor) Type() ObjectType { return CONSTRUCTOR_OBJ }
func (c *Constructor) Inspect() string  { return c.Tag }

// Merge wraps a record of handlers; applying it to a tagged value
// dispatches on the tag.
type Merge struct {
	Handlers *Record
}

func (m *Merge) Type() ObjectType { return MERGE_OBJ }
func (m *Merge) Inspect() string  { return "merge " + m.Handlers.Inspect() }

// Builtin is a primitive function, possibly partially applied.
type Builtin struct {
	Name string
	Args []Object
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return b.Name }

// NeutralVariable is a stuck reference to a free variable.
type NeutralVariable struct {
	Name  string
	Index int
}

func (n *NeutralVariable) Type() ObjectType { return NEUTRAL_OBJ }
func (n *NeutralVariable) Inspect() string {
	if n.Index > 0 {
		return n.Name + "@" + strconv.Itoa(n.Index)
	}
	return n.Name
}

// NeutralApplication is a stuck application: a neutral (or a builtin over a
// neutral) in function position.
type NeutralApplication struct {
	Function Object
	Argument Object
}

func (n *NeutralApplication) Type() ObjectType { return NEUTRAL_OBJ }
func (n *NeutralApplication) Inspect() string {
	return n.Function.Inspect() + " " + n.Argument.Inspect()
}

// isNeutral reports whether a value is stuck.
func isNeutral(o Object) bool {
	return o.Type() == NEUTRAL_OBJ
}
