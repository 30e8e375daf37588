package infer

import (
	"strings"

	"github.com/nilp0inter/grace/internal/typesystem"
)

// generalize applies the context to t and converts every remaining unsolved
// existential introduced at or after position mark into a forall binder of
// its domain, in left-to-right context order. With mark 0 this is the
// top-level generalization step; let bindings use it with the mark taken
// before their value was inferred.
func (inf *Inferrer) generalize(mark int, t typesystem.Type) typesystem.Type {
	t = inf.ctx.Apply(t)

	free := typesystem.FreeExistentials{}
	free.Collect(t)

	type binder struct {
		name   string
		domain typesystem.Domain
	}
	var binders []binder

	for idx := mark; idx < len(inf.ctx); idx++ {
		switch entry := inf.ctx[idx].(type) {
		case Unsolved:
			if !containsType(free.Types, entry.Existential) {
				continue
			}
			name := quantifierName(entry.Existential.String())
			t = replaceUnsolved(t, entry.Existential, typesystem.TVar{Name: name})
			binders = append(binders, binder{name: name, domain: typesystem.DomainType})
		case UnsolvedRow:
			if !containsRow(free.Rows, entry.Existential) {
				continue
			}
			name := quantifierName(entry.Existential.String())
			t = replaceUnsolvedRow(t, entry.Existential, typesystem.VarRow{Name: name})
			binders = append(binders, binder{name: name, domain: typesystem.DomainFields})
		case UnsolvedVariant:
			if !containsVariant(free.Variants, entry.Existential) {
				continue
			}
			name := quantifierName(entry.Existential.String())
			t = replaceUnsolvedVariant(t, entry.Existential, typesystem.VarVariant{Name: name})
			binders = append(binders, binder{name: name, domain: typesystem.DomainAlternatives})
		}
	}

	for i := len(binders) - 1; i >= 0; i-- {
		t = typesystem.Forall{Name: binders[i].name, Domain: binders[i].domain, Body: t}
	}
	return t
}

// quantifierName turns an existential's pretty form into a variable name:
// "c?" becomes "c".
func quantifierName(pretty string) string {
	return strings.TrimSuffix(pretty, "?")
}

func containsType(es []typesystem.Existential, e typesystem.Existential) bool {
	for _, candidate := range es {
		if candidate == e {
			return true
		}
	}
	return false
}

func containsRow(es []typesystem.RowExistential, e typesystem.RowExistential) bool {
	for _, candidate := range es {
		if candidate == e {
			return true
		}
	}
	return false
}

func containsVariant(es []typesystem.VariantExistential, e typesystem.VariantExistential) bool {
	for _, candidate := range es {
		if candidate == e {
			return true
		}
	}
	return false
}

func replaceUnsolved(t typesystem.Type, e typesystem.Existential, repl typesystem.Type) typesystem.Type {
	switch t := t.(type) {
	case typesystem.TUnsolved:
		if t.Existential == e {
			return repl
		}
		return t
	case typesystem.TArrow:
		return typesystem.TArrow{
			Input:  replaceUnsolved(t.Input, e, repl),
			Output: replaceUnsolved(t.Output, e, repl),
		}
	case typesystem.TList:
		return typesystem.TList{Element: replaceUnsolved(t.Element, e, repl)}
	case typesystem.TRecord:
		fields := make([]typesystem.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = typesystem.Field{Label: f.Label, Type: replaceUnsolved(f.Type, e, repl)}
		}
		return typesystem.TRecord{Fields: fields, Tail: t.Tail}
	case typesystem.TUnion:
		alternatives := make([]typesystem.Field, len(t.Alternatives))
		for i, a := range t.Alternatives {
			alternatives[i] = typesystem.Field{Label: a.Label, Type: replaceUnsolved(a.Type, e, repl)}
		}
		return typesystem.TUnion{Alternatives: alternatives, Tail: t.Tail}
	case typesystem.Forall:
		return typesystem.Forall{Name: t.Name, Domain: t.Domain, Body: replaceUnsolved(t.Body, e, repl)}
	case typesystem.Exists:
		return typesystem.Exists{Name: t.Name, Domain: t.Domain, Body: replaceUnsolved(t.Body, e, repl)}
	}
	return t
}

func replaceUnsolvedRow(t typesystem.Type, e typesystem.RowExistential, repl typesystem.Row) typesystem.Type {
	switch t := t.(type) {
	case typesystem.TArrow:
		return typesystem.TArrow{
			Input:  replaceUnsolvedRow(t.Input, e, repl),
			Output: replaceUnsolvedRow(t.Output, e, repl),
		}
	case typesystem.TList:
		return typesystem.TList{Element: replaceUnsolvedRow(t.Element, e, repl)}
	case typesystem.TRecord:
		fields := make([]typesystem.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = typesystem.Field{Label: f.Label, Type: replaceUnsolvedRow(f.Type, e, repl)}
		}
		tail := t.Tail
		if u, ok := tail.(typesystem.UnsolvedRow); ok && u.Existential == e {
			tail = repl
		}
		return typesystem.TRecord{Fields: fields, Tail: tail}
	case typesystem.TUnion:
		alternatives := make([]typesystem.Field, len(t.Alternatives))
		for i, a := range t.Alternatives {
			alternatives[i] = typesystem.Field{Label: a.Label, Type: replaceUnsolvedRow(a.Type, e, repl)}
		}
		return typesystem.TUnion{Alternatives: alternatives, Tail: t.Tail}
	case typesystem.Forall:
		return typesystem.Forall{Name: t.Name, Domain: t.Domain, Body: replaceUnsolvedRow(t.Body, e, repl)}
	case typesystem.Exists:
		return typesystem.Exists{Name: t.Name, Domain: t.Domain, Body: replaceUnsolvedRow(t.Body, e, repl)}
	}
	return t
}

func replaceUnsolvedVariant(t typesystem.Type, e typesystem.VariantExistential, repl typesystem.Variant) typesystem.Type {
	switch t := t.(type) {
	case typesystem.TArrow:
		return typesystem.TArrow{
			Input:  replaceUnsolvedVariant(t.Input, e, repl),
			Output: replaceUnsolvedVariant(t.Output, e, repl),
		}
	case typesystem.TList:
		return typesystem.TList{Element: replaceUnsolvedVariant(t.Element, e, repl)}
	case typesystem.TRecord:
		fields := make([]typesystem.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = typesystem.Field{Label: f.Label, Type: replaceUnsolvedVariant(f.Type, e, repl)}
		}
		return typesystem.TRecord{Fields: fields, Tail: t.Tail}
	case typesystem.TUnion:
		alternatives := make([]typesystem.Field, len(t.Alternatives))
		for i, a := range t.Alternatives {
			alternatives[i] = typesystem.Field{Label: a.Label, Type: replaceUnsolvedVariant(a.Type, e, repl)}
		}
		tail := t.Tail
		if u, ok := tail.(typesystem.UnsolvedVariant); ok && u.Existential == e {
			tail = repl
		}
		return typesystem.TUnion{Alternatives: alternatives, Tail: tail}
	case typesystem.Forall:
		return typesystem.Forall{Name: t.Name, Domain: t.Domain, Body: replaceUnsolvedVariant(t.Body, e, repl)}
	case typesystem.Exists:
		return typesystem.Exists{Name: t.Name, Domain: t.Domain, Body: replaceUnsolvedVariant(t.Body, e, repl)}
	}
	return t
}
