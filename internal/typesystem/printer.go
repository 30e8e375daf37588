package typesystem

import (
	"strings"
)

// The printer follows a three-layer precedence ladder: function types and
// quantifiers bind loosest, type application (List) sits in the middle, and
// primitive types (variables, existentials, scalars, records, unions) bind
// tightest. Anything printed below its own layer gets parenthesized.

func (t TVar) String() string      { return t.Name }
func (t TUnsolved) String() string { return t.Existential.String() }
func (t TCon) String() string      { return t.Name }

func (t TArrow) String() string {
	return printApplication(t.Input) + " -> " + t.Output.String()
}

func (t TList) String() string {
	return "List " + printPrimitive(t.Element)
}

func (t TRecord) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, field := range t.Fields {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(field.Label)
		sb.WriteString(": ")
		sb.WriteString(field.Type.String())
	}
	switch tail := t.Tail.(type) {
	case EmptyRow:
		if len(t.Fields) > 0 {
			sb.WriteString(" ")
		}
	default:
		sb.WriteString(" | ")
		sb.WriteString(tail.String())
		sb.WriteString(" ")
	}
	sb.WriteString("}")
	return sb.String()
}

func (t TUnion) String() string {
	var sb strings.Builder
	sb.WriteString("<")
	for i, alt := range t.Alternatives {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(alt.Label)
		sb.WriteString(": ")
		sb.WriteString(alt.Type.String())
	}
	switch tail := t.Tail.(type) {
	case EmptyVariant:
		if len(t.Alternatives) > 0 {
			sb.WriteString(" ")
		}
	default:
		sb.WriteString(" | ")
		sb.WriteString(tail.String())
		sb.WriteString(" ")
	}
	sb.WriteString(">")
	return sb.String()
}

func (t Forall) String() string {
	return "forall " + printBinder(t.Name, t.Domain) + " . " + t.Body.String()
}

func (t Exists) String() string {
	return "exists " + printBinder(t.Name, t.Domain) + " . " + t.Body.String()
}

func printBinder(name string, domain Domain) string {
	if domain == DomainType {
		return name
	}
	return "(" + name + " : " + domain.String() + ")"
}

func (r EmptyRow) String() string    { return "" }
func (r UnsolvedRow) String() string { return r.Existential.String() }
func (r VarRow) String() string      { return r.Name }

func (v EmptyVariant) String() string    { return "" }
func (v UnsolvedVariant) String() string { return v.Existential.String() }
func (v VarVariant) String() string      { return v.Name }

// printApplication parenthesizes function types and quantifiers.
func printApplication(t Type) string {
	switch t.(type) {
	case TArrow, Forall, Exists:
		return "(" + t.String() + ")"
	}
	return t.String()
}

// printPrimitive parenthesizes function, quantified and application types.
func printPrimitive(t Type) string {
	switch t.(type) {
	case TArrow, TList, Forall, Exists:
		return "(" + t.String() + ")"
	}
	return t.String()
}
