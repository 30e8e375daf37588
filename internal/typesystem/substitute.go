package typesystem

// Capture-free substitution of quantified variables. Each substitution
// stops under a binder that re-binds the same name at the same domain, so
// shadowed occurrences are left alone.

// SubstituteType replaces the rigid type variable name by repl throughout t.
func SubstituteType(t Type, name string, repl Type) Type {
	switch t := t.(type) {
	case TVar:
		if t.Name == name {
			return repl
		}
		return t
	case TArrow:
		return TArrow{
			Input:  SubstituteType(t.Input, name, repl),
			Output: SubstituteType(t.Output, name, repl),
		}
	case TList:
		return TList{Element: SubstituteType(t.Element, name, repl)}
	case TRecord:
		return TRecord{Fields: substituteTypeFields(t.Fields, name, repl), Tail: t.Tail}
	case TUnion:
		return TUnion{Alternatives: substituteTypeFields(t.Alternatives, name, repl), Tail: t.Tail}
	case Forall:
		if t.Name == name && t.Domain == DomainType {
			return t
		}
		return Forall{Name: t.Name, Domain: t.Domain, Body: SubstituteType(t.Body, name, repl)}
	case Exists:
		if t.Name == name && t.Domain == DomainType {
			return t
		}
		return Exists{Name: t.Name, Domain: t.Domain, Body: SubstituteType(t.Body, name, repl)}
	}
	return t
}

func substituteTypeFields(fields []Field, name string, repl Type) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Label: f.Label, Type: SubstituteType(f.Type, name, repl)}
	}
	return out
}

// SubstituteRow replaces the rigid row variable name by repl throughout t.
func SubstituteRow(t Type, name string, repl Row) Type {
	switch t := t.(type) {
	case TArrow:
		return TArrow{
			Input:  SubstituteRow(t.Input, name, repl),
			Output: SubstituteRow(t.Output, name, repl),
		}
	case TList:
		return TList{Element: SubstituteRow(t.Element, name, repl)}
	case TRecord:
		fields := substituteRowFields(t.Fields, name, repl)
		tail := t.Tail
		if v, ok := tail.(VarRow); ok && v.Name == name {
			tail = repl
		}
		return TRecord{Fields: fields, Tail: tail}
	case TUnion:
		return TUnion{Alternatives: substituteRowFields(t.Alternatives, name, repl), Tail: t.Tail}
	case Forall:
		if t.Name == name && t.Domain == DomainFields {
			return t
		}
		return Forall{Name: t.Name, Domain: t.Domain, Body: SubstituteRow(t.Body, name, repl)}
	case Exists:
		if t.Name == name && t.Domain == DomainFields {
			return t
		}
		return Exists{Name: t.Name, Domain: t.Domain, Body: SubstituteRow(t.Body, name, repl)}
	}
	return t
}

func substituteRowFields(fields []Field, name string, repl Row) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Label: f.Label, Type: SubstituteRow(f.Type, name, repl)}
	}
	return out
}

// SubstituteVariant replaces the rigid variant variable name by repl
// throughout t.
func SubstituteVariant(t Type, name string, repl Variant) Type {
	switch t := t.(type) {
	case TArrow:
		return TArrow{
			Input:  SubstituteVariant(t.Input, name, repl),
			Output: SubstituteVariant(t.Output, name, repl),
		}
	case TList:
		return TList{Element: SubstituteVariant(t.Element, name, repl)}
	case TRecord:
		return TRecord{Fields: substituteVariantFields(t.Fields, name, repl), Tail: t.Tail}
	case TUnion:
		alts := substituteVariantFields(t.Alternatives, name, repl)
		tail := t.Tail
		if v, ok := tail.(VarVariant); ok && v.Name == name {
			tail = repl
		}
		return TUnion{Alternatives: alts, Tail: tail}
	case Forall:
		if t.Name == name && t.Domain == DomainAlternatives {
			return t
		}
		return Forall{Name: t.Name, Domain: t.Domain, Body: SubstituteVariant(t.Body, name, repl)}
	case Exists:
		if t.Name == name && t.Domain == DomainAlternatives {
			return t
		}
		return Exists{Name: t.Name, Domain: t.Domain, Body: SubstituteVariant(t.Body, name, repl)}
	}
	return t
}

func substituteVariantFields(fields []Field, name string, repl Variant) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Label: f.Label, Type: SubstituteVariant(f.Type, name, repl)}
	}
	return out
}

// FreeExistentials collects the unsolved existentials of each domain that
// occur in a type, in left-to-right order of first occurrence.
// Generalization converts them to forall binders in exactly this order.
type FreeExistentials struct {
	Types    []Existential
	Rows     []RowExistential
	Variants []VariantExistential
}

func (f *FreeExistentials) addType(e Existential) {
	for _, seen := range f.Types {
		if seen == e {
			return
		}
	}
	f.Types = append(f.Types, e)
}

func (f *FreeExistentials) addRow(e RowExistential) {
	for _, seen := range f.Rows {
		if seen == e {
			return
		}
	}
	f.Rows = append(f.Rows, e)
}

func (f *FreeExistentials) addVariant(e VariantExistential) {
	for _, seen := range f.Variants {
		if seen == e {
			return
		}
	}
	f.Variants = append(f.Variants, e)
}

// Collect walks t accumulating unsolved existentials.
func (f *FreeExistentials) Collect(t Type) {
	switch t := t.(type) {
	case TUnsolved:
		f.addType(t.Existential)
	case TArrow:
		f.Collect(t.Input)
		f.Collect(t.Output)
	case TList:
		f.Collect(t.Element)
	case TRecord:
		for _, field := range t.Fields {
			f.Collect(field.Type)
		}
		if tail, ok := t.Tail.(UnsolvedRow); ok {
			f.addRow(tail.Existential)
		}
	case TUnion:
		for _, alt := range t.Alternatives {
			f.Collect(alt.Type)
		}
		if tail, ok := t.Tail.(UnsolvedVariant); ok {
			f.addVariant(tail.Existential)
		}
	case Forall:
		f.Collect(t.Body)
	case Exists:
		f.Collect(t.Body)
	}
}

// FreeVariable is a rigid variable occurring free in a type.
type FreeVariable struct {
	Name   string
	Domain Domain
}

// FreeVariablesOf returns the rigid variables free in t, respecting binder
// shadowing.
func FreeVariablesOf(t Type) []FreeVariable {
	var out []FreeVariable
	bound := map[FreeVariable]int{}
	add := func(v FreeVariable) {
		if bound[v] > 0 {
			return
		}
		for _, seen := range out {
			if seen == v {
				return
			}
		}
		out = append(out, v)
	}
	var walk func(t Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case TVar:
			add(FreeVariable{Name: t.Name, Domain: DomainType})
		case TArrow:
			walk(t.Input)
			walk(t.Output)
		case TList:
			walk(t.Element)
		case TRecord:
			for _, f := range t.Fields {
				walk(f.Type)
			}
			if tail, ok := t.Tail.(VarRow); ok {
				add(FreeVariable{Name: tail.Name, Domain: DomainFields})
			}
		case TUnion:
			for _, a := range t.Alternatives {
				walk(a.Type)
			}
			if tail, ok := t.Tail.(VarVariant); ok {
				add(FreeVariable{Name: tail.Name, Domain: DomainAlternatives})
			}
		case Forall:
			k := FreeVariable{Name: t.Name, Domain: t.Domain}
			bound[k]++
			walk(t.Body)
			bound[k]--
		case Exists:
			k := FreeVariable{Name: t.Name, Domain: t.Domain}
			bound[k]++
			walk(t.Body)
			bound[k]--
		}
	}
	walk(t)
	return out
}

// OccursIn reports whether existential e occurs anywhere in t. This is the
// occurs check that rules out recursive types.
func OccursIn(e Existential, t Type) bool {
	switch t := t.(type) {
	case TUnsolved:
		return t.Existential == e
	case TArrow:
		return OccursIn(e, t.Input) || OccursIn(e, t.Output)
	case TList:
		return OccursIn(e, t.Element)
	case TRecord:
		for _, field := range t.Fields {
			if OccursIn(e, field.Type) {
				return true
			}
		}
	case TUnion:
		for _, alt := range t.Alternatives {
			if OccursIn(e, alt.Type) {
				return true
			}
		}
	case Forall:
		return OccursIn(e, t.Body)
	case Exists:
		return OccursIn(e, t.Body)
	}
	return false
}
