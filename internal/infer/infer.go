package infer

import (
	"strconv"

	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/config"
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/token"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// Inferrer is one inference session: a monotonically increasing existential
// counter plus the ordered context. Sessions are single-threaded; separate
// sessions share nothing and may run in parallel.
type Inferrer struct {
	counter int
	ctx     Context
}

func New() *Inferrer {
	return &Inferrer{}
}

// Infer synthesizes the principal type of expr under an empty context and
// generalizes the remaining unsolved existentials into forall binders.
func Infer(expr ast.Expression) (typesystem.Type, *diagnostics.DiagnosticError) {
	inf := New()
	t, err := inf.synthesize(expr)
	if err != nil {
		inf.debugDump("inference failed")
		return nil, err
	}
	return inf.generalize(0, t), nil
}

func (inf *Inferrer) freshType() typesystem.Existential {
	e := typesystem.Existential(inf.counter)
	inf.counter++
	return e
}

func (inf *Inferrer) freshRow() typesystem.RowExistential {
	e := typesystem.RowExistential(inf.counter)
	inf.counter++
	return e
}

func (inf *Inferrer) freshVariant() typesystem.VariantExistential {
	e := typesystem.VariantExistential(inf.counter)
	inf.counter++
	return e
}

func (inf *Inferrer) push(entries ...Entry) {
	inf.ctx = append(inf.ctx, entries...)
}

// insertAt splices entries into the context before position i.
func (inf *Inferrer) insertAt(i int, entries ...Entry) {
	updated := make(Context, 0, len(inf.ctx)+len(entries))
	updated = append(updated, inf.ctx[:i]...)
	updated = append(updated, entries...)
	updated = append(updated, inf.ctx[i:]...)
	inf.ctx = updated
}

// truncate discards every entry from position i onward.
func (inf *Inferrer) truncate(i int) {
	inf.ctx = inf.ctx[:i]
}

// discardToMarker truncates the context at (and including) the marker.
// Positions are never saved across inference steps: instantiation splices
// entries into the middle of the context, so only a marker entry reliably
// names a discard point.
func (inf *Inferrer) discardToMarker(m typesystem.Existential) {
	if i := inf.ctx.indexOfMarker(m); i >= 0 {
		inf.truncate(i)
	}
}

// pushMarker appends a fresh marker entry and returns its id.
func (inf *Inferrer) pushMarker() typesystem.Existential {
	m := inf.freshType()
	inf.push(Marker{Existential: m})
	return m
}

// check verifies expr against an expected type, solving existentials as
// needed.
func (inf *Inferrer) check(expr ast.Expression, expected typesystem.Type) *diagnostics.DiagnosticError {
	// Quantifiers on the expected type come first: a rigid variable for
	// forall, a marker-scoped existential for exists.
	switch t := expected.(type) {
	case typesystem.Forall:
		marker := inf.pushMarker()
		inf.push(Variable{Name: t.Name, Domain: t.Domain})
		err := inf.check(expr, t.Body)
		inf.discardToMarker(marker)
		return err
	case typesystem.Exists:
		marker := inf.pushMarker()
		body := inf.openExists(t)
		err := inf.check(expr, body)
		inf.discardToMarker(marker)
		return err
	}

	switch e := expr.(type) {
	case *ast.Lambda:
		if arrow, ok := expected.(typesystem.TArrow); ok {
			marker := inf.pushMarker()
			inf.push(Annotation{Name: e.Parameter, Type: arrow.Input})
			err := inf.check(e.Body, arrow.Output)
			inf.discardToMarker(marker)
			return err
		}
	case *ast.ListLiteral:
		if list, ok := expected.(typesystem.TList); ok {
			for _, element := range e.Elements {
				if err := inf.check(element, inf.ctx.Apply(list.Element)); err != nil {
					return err
				}
			}
			return nil
		}
	case *ast.If:
		if err := inf.check(e.Predicate, typesystem.BoolType); err != nil {
			return err
		}
		if err := inf.check(e.Then, inf.ctx.Apply(expected)); err != nil {
			return err
		}
		return inf.check(e.Else, inf.ctx.Apply(expected))
	case *ast.Let:
		if err := inf.letBindings(e); err != nil {
			return err
		}
		return inf.check(e.Body, inf.ctx.Apply(expected))
	}

	synthesized, err := inf.synthesize(expr)
	if err != nil {
		return err
	}
	err = inf.subtype(inf.ctx.Apply(synthesized), inf.ctx.Apply(expected))
	if err != nil && err.Token.Line == 0 {
		err.Token = expr.GetToken()
	}
	return err
}

// openExists replaces the quantified variable by a fresh unsolved
// existential of the matching domain, appending its entry.
func (inf *Inferrer) openExists(t typesystem.Exists) typesystem.Type {
	switch t.Domain {
	case typesystem.DomainFields:
		e := inf.freshRow()
		inf.push(UnsolvedRow{Existential: e})
		return typesystem.SubstituteRow(t.Body, t.Name, typesystem.UnsolvedRow{Existential: e})
	case typesystem.DomainAlternatives:
		e := inf.freshVariant()
		inf.push(UnsolvedVariant{Existential: e})
		return typesystem.SubstituteVariant(t.Body, t.Name, typesystem.UnsolvedVariant{Existential: e})
	default:
		e := inf.freshType()
		inf.push(Unsolved{Existential: e})
		return typesystem.SubstituteType(t.Body, t.Name, typesystem.TUnsolved{Existential: e})
	}
}

// openForall is openExists for universal binders; the two differ only in
// which side of a judgment may open them.
func (inf *Inferrer) openForall(t typesystem.Forall) typesystem.Type {
	switch t.Domain {
	case typesystem.DomainFields:
		e := inf.freshRow()
		inf.push(UnsolvedRow{Existential: e})
		return typesystem.SubstituteRow(t.Body, t.Name, typesystem.UnsolvedRow{Existential: e})
	case typesystem.DomainAlternatives:
		e := inf.freshVariant()
		inf.push(UnsolvedVariant{Existential: e})
		return typesystem.SubstituteVariant(t.Body, t.Name, typesystem.UnsolvedVariant{Existential: e})
	default:
		e := inf.freshType()
		inf.push(Unsolved{Existential: e})
		return typesystem.SubstituteType(t.Body, t.Name, typesystem.TUnsolved{Existential: e})
	}
}

// synthesize produces a type for expr.
func (inf *Inferrer) synthesize(expr ast.Expression) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch e := expr.(type) {
	case *ast.Variable:
		if t, ok := inf.ctx.lookupAnnotation(e.Name, e.Index); ok {
			return t, nil
		}
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.Token,
			"unbound variable %q", variableDisplay(e))

	case *ast.Builtin:
		if t, ok := builtinTypes[e.Name]; ok {
			return t, nil
		}
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.Token,
			"unknown builtin %q", e.Name)

	case *ast.BoolLiteral:
		return typesystem.BoolType, nil

	case *ast.NaturalLiteral:
		return typesystem.NaturalType, nil

	case *ast.TextLiteral:
		return typesystem.TextType, nil

	case *ast.Lambda:
		input := inf.freshType()
		output := inf.freshType()
		inf.push(Unsolved{Existential: input}, Unsolved{Existential: output})
		marker := inf.pushMarker()
		inf.push(Annotation{Name: e.Parameter, Type: typesystem.TUnsolved{Existential: input}})
		if err := inf.check(e.Body, typesystem.TUnsolved{Existential: output}); err != nil {
			return nil, err
		}
		inf.discardToMarker(marker)
		return typesystem.TArrow{
			Input:  typesystem.TUnsolved{Existential: input},
			Output: typesystem.TUnsolved{Existential: output},
		}, nil

	case *ast.Application:
		fn, err := inf.synthesize(e.Function)
		if err != nil {
			return nil, err
		}
		return inf.synthesizeApplication(inf.ctx.Apply(fn), e.Argument, e.Function.GetToken())

	case *ast.Let:
		if err := inf.letBindings(e); err != nil {
			return nil, err
		}
		return inf.synthesize(e.Body)

	case *ast.Annotation:
		if err := inf.ctx.WellFormed(e.Type); err != nil {
			err.Token = e.Token
			return nil, err
		}
		if err := inf.check(e.Expression, e.Type); err != nil {
			return nil, err
		}
		return e.Type, nil

	case *ast.ListLiteral:
		element := inf.freshType()
		inf.push(Unsolved{Existential: element})
		for _, item := range e.Elements {
			if err := inf.check(item, inf.ctx.Apply(typesystem.TUnsolved{Existential: element})); err != nil {
				return nil, err
			}
		}
		return typesystem.TList{Element: typesystem.TUnsolved{Existential: element}}, nil

	case *ast.RecordLiteral:
		fields := make([]typesystem.Field, 0, len(e.Fields))
		for _, field := range e.Fields {
			fieldType, err := inf.synthesize(field.Value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, typesystem.Field{Label: field.Label, Type: fieldType})
		}
		return typesystem.TRecord{Fields: fields, Tail: typesystem.EmptyRow{}}, nil

	case *ast.Projection:
		record, err := inf.synthesize(e.Record)
		if err != nil {
			return nil, err
		}
		field := inf.freshType()
		tail := inf.freshRow()
		inf.push(Unsolved{Existential: field}, UnsolvedRow{Existential: tail})
		wanted := typesystem.TRecord{
			Fields: []typesystem.Field{{Label: e.Label, Type: typesystem.TUnsolved{Existential: field}}},
			Tail:   typesystem.UnsolvedRow{Existential: tail},
		}
		if err := inf.subtype(inf.ctx.Apply(record), wanted); err != nil {
			if err.Token.Line == 0 {
				err.Token = e.Token
			}
			return nil, err
		}
		return typesystem.TUnsolved{Existential: field}, nil

	case *ast.Alternative:
		// A constructor is polymorphic both in its payload and in the
		// other alternatives of the union it lands in.
		return typesystem.Forall{
			Name:   "a",
			Domain: typesystem.DomainType,
			Body: typesystem.Forall{
				Name:   "r",
				Domain: typesystem.DomainAlternatives,
				Body: typesystem.TArrow{
					Input: typesystem.TVar{Name: "a"},
					Output: typesystem.TUnion{
						Alternatives: []typesystem.Field{{Label: e.Name, Type: typesystem.TVar{Name: "a"}}},
						Tail:         typesystem.VarVariant{Name: "r"},
					},
				},
			},
		}, nil

	case *ast.Merge:
		return inf.synthesizeMerge(e)

	case *ast.If:
		if err := inf.check(e.Predicate, typesystem.BoolType); err != nil {
			return nil, err
		}
		join := inf.freshType()
		inf.push(Unsolved{Existential: join})
		thenType, err := inf.synthesize(e.Then)
		if err != nil {
			return nil, err
		}
		if err := inf.subtype(inf.ctx.Apply(thenType), inf.ctx.Apply(typesystem.TUnsolved{Existential: join})); err != nil {
			if err.Token.Line == 0 {
				err.Token = e.Then.GetToken()
			}
			return nil, err
		}
		elseType, err := inf.synthesize(e.Else)
		if err != nil {
			return nil, err
		}
		if err := inf.subtype(inf.ctx.Apply(elseType), inf.ctx.Apply(typesystem.TUnsolved{Existential: join})); err != nil {
			if err.Token.Line == 0 {
				err.Token = e.Else.GetToken()
			}
			return nil, err
		}
		return typesystem.TUnsolved{Existential: join}, nil

	case *ast.Operator:
		return inf.synthesizeOperator(e)

	case *ast.Embed:
		return nil, diagnostics.NewError(diagnostics.ErrI001, e.Token,
			"unresolved import %q reached the type checker", e.Path)
	}

	return nil, diagnostics.NewError(diagnostics.ErrT003, expr.GetToken(),
		"cannot infer a type for this expression")
}

// synthesizeApplication eliminates the function type far enough to expose
// an arrow, then checks the argument against its input.
func (inf *Inferrer) synthesizeApplication(fn typesystem.Type, arg ast.Expression, at token.Token) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch t := fn.(type) {
	case typesystem.Forall:
		return inf.synthesizeApplication(inf.openForall(t), arg, at)

	case typesystem.Exists:
		// Applying a function of existential type works under a rigid
		// opening of the quantifier; the rigid variable stays in scope
		// because the result type may mention it.
		inf.push(Variable{Name: t.Name, Domain: t.Domain})
		return inf.synthesizeApplication(t.Body, arg, at)

	case typesystem.TUnsolved:
		i := inf.ctx.indexOfUnsolved(t.Existential)
		if i < 0 {
			// Already solved: eliminate through the solution.
			return inf.synthesizeApplication(inf.ctx.Apply(t), arg, at)
		}
		input := inf.freshType()
		output := inf.freshType()
		inf.insertAt(i, Unsolved{Existential: input}, Unsolved{Existential: output})
		arrow := typesystem.TArrow{
			Input:  typesystem.TUnsolved{Existential: input},
			Output: typesystem.TUnsolved{Existential: output},
		}
		if err := inf.ctx.Solve(t.Existential, arrow); err != nil {
			return nil, err
		}
		if err := inf.check(arg, typesystem.TUnsolved{Existential: input}); err != nil {
			return nil, err
		}
		return typesystem.TUnsolved{Existential: output}, nil

	case typesystem.TArrow:
		if err := inf.check(arg, t.Input); err != nil {
			return nil, err
		}
		return t.Output, nil
	}

	return nil, diagnostics.NewError(diagnostics.ErrT002, at,
		"cannot apply a value of type %s: not a function", fn)
}

// letBindings infers every binding of a let, in order, leaving one
// Annotation entry per binding in the context. Unannotated bindings are
// generalized over the existentials their inference introduced, which is
// what lets `let id = \x -> x in id id 5` type as Natural.
func (inf *Inferrer) letBindings(e *ast.Let) *diagnostics.DiagnosticError {
	for _, binding := range e.Bindings {
		if binding.Annotation != nil {
			if err := inf.ctx.WellFormed(binding.Annotation); err != nil {
				err.Token = binding.Token
				return err
			}
			if err := inf.check(binding.Value, binding.Annotation); err != nil {
				return err
			}
			inf.push(Annotation{Name: binding.Name, Type: binding.Annotation})
			continue
		}
		marker := inf.pushMarker()
		valueType, err := inf.synthesize(binding.Value)
		if err != nil {
			return err
		}
		mark := inf.ctx.indexOfMarker(marker)
		generalized := inf.generalize(mark+1, valueType)
		inf.truncate(mark)
		inf.push(Annotation{Name: binding.Name, Type: generalized})
	}
	return nil
}

// synthesizeMerge gives `merge m` the type `<tags> -> B` from a record m of
// handler functions returning a common B.
func (inf *Inferrer) synthesizeMerge(e *ast.Merge) (typesystem.Type, *diagnostics.DiagnosticError) {
	handlers, err := inf.synthesize(e.Handlers)
	if err != nil {
		return nil, err
	}
	record, ok := inf.ctx.Apply(handlers).(typesystem.TRecord)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT009, e.Token,
			"merge expects a record of handlers, not %s", inf.ctx.Apply(handlers))
	}
	if _, open := record.Tail.(typesystem.EmptyRow); !open {
		return nil, diagnostics.NewError(diagnostics.ErrT009, e.Token,
			"merge needs a record with a known, closed set of handlers, not %s", record)
	}

	result := inf.freshType()
	inf.push(Unsolved{Existential: result})

	alternatives := make([]typesystem.Field, 0, len(record.Fields))
	for _, field := range record.Fields {
		handler, ok := inf.ctx.Apply(field.Type).(typesystem.TArrow)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT009, e.Token,
				"merge handler %q must be a function, not %s", field.Label, inf.ctx.Apply(field.Type))
		}
		if err := inf.subtype(inf.ctx.Apply(handler.Output), inf.ctx.Apply(typesystem.TUnsolved{Existential: result})); err != nil {
			if err.Token.Line == 0 {
				err.Token = e.Token
			}
			return nil, err
		}
		alternatives = append(alternatives, typesystem.Field{Label: field.Label, Type: handler.Input})
	}

	return typesystem.TArrow{
		Input:  typesystem.TUnion{Alternatives: alternatives, Tail: typesystem.EmptyVariant{}},
		Output: typesystem.TUnsolved{Existential: result},
	}, nil
}

// Operator signatures are fixed; ++ is overloaded on Text and lists.
func (inf *Inferrer) synthesizeOperator(e *ast.Operator) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch e.Op {
	case "+", "*":
		if err := inf.check(e.Left, typesystem.NaturalType); err != nil {
			return nil, err
		}
		if err := inf.check(e.Right, typesystem.NaturalType); err != nil {
			return nil, err
		}
		return typesystem.NaturalType, nil
	case "&&", "||":
		if err := inf.check(e.Left, typesystem.BoolType); err != nil {
			return nil, err
		}
		if err := inf.check(e.Right, typesystem.BoolType); err != nil {
			return nil, err
		}
		return typesystem.BoolType, nil
	case "++":
		left, err := inf.synthesize(e.Left)
		if err != nil {
			return nil, err
		}
		switch applied := inf.ctx.Apply(left).(type) {
		case typesystem.TCon:
			if applied == typesystem.TextType {
				if err := inf.check(e.Right, typesystem.TextType); err != nil {
					return nil, err
				}
				return typesystem.TextType, nil
			}
		case typesystem.TList:
			if err := inf.check(e.Right, applied); err != nil {
				return nil, err
			}
			return applied, nil
		case typesystem.TUnsolved:
			// Unconstrained left operand: let the right operand decide.
			right, err := inf.synthesize(e.Right)
			if err != nil {
				return nil, err
			}
			if err := inf.subtype(inf.ctx.Apply(right), inf.ctx.Apply(left)); err != nil {
				if err.Token.Line == 0 {
					err.Token = e.Token
				}
				return nil, err
			}
			resolved := inf.ctx.Apply(left)
			if list, ok := resolved.(typesystem.TList); ok {
				return list, nil
			}
			if con, ok := resolved.(typesystem.TCon); ok && con == typesystem.TextType {
				return con, nil
			}
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.Token,
				"++ expects Text or List operands, not %s", resolved)
		}
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Token,
			"++ expects Text or List operands, not %s", inf.ctx.Apply(left))
	}
	return nil, diagnostics.NewError(diagnostics.ErrT003, e.Token,
		"unknown operator %q", e.Op)
}

func variableDisplay(v *ast.Variable) string {
	if v.Index > 0 {
		return v.Name + "@" + strconv.Itoa(v.Index)
	}
	return v.Name
}

// builtinTypes declares the type of every primitive.
var builtinTypes = map[string]typesystem.Type{
	config.BuiltinListLength: typesystem.Forall{
		Name: "a", Domain: typesystem.DomainType,
		Body: typesystem.TArrow{
			Input:  typesystem.TList{Element: typesystem.TVar{Name: "a"}},
			Output: typesystem.NaturalType,
		},
	},
	config.BuiltinListReverse: typesystem.Forall{
		Name: "a", Domain: typesystem.DomainType,
		Body: typesystem.TArrow{
			Input:  typesystem.TList{Element: typesystem.TVar{Name: "a"}},
			Output: typesystem.TList{Element: typesystem.TVar{Name: "a"}},
		},
	},
	config.BuiltinListFold: typesystem.Forall{
		Name: "a", Domain: typesystem.DomainType,
		Body: typesystem.Forall{
			Name: "b", Domain: typesystem.DomainType,
			Body: typesystem.TArrow{
				Input: typesystem.TList{Element: typesystem.TVar{Name: "a"}},
				Output: typesystem.TArrow{
					Input: typesystem.TArrow{
						Input:  typesystem.TVar{Name: "a"},
						Output: typesystem.TArrow{Input: typesystem.TVar{Name: "b"}, Output: typesystem.TVar{Name: "b"}},
					},
					Output: typesystem.TArrow{Input: typesystem.TVar{Name: "b"}, Output: typesystem.TVar{Name: "b"}},
				},
			},
		},
	},
	config.BuiltinNaturalFold: typesystem.Forall{
		Name: "a", Domain: typesystem.DomainType,
		Body: typesystem.TArrow{
			Input: typesystem.NaturalType,
			Output: typesystem.TArrow{
				Input:  typesystem.TArrow{Input: typesystem.TVar{Name: "a"}, Output: typesystem.TVar{Name: "a"}},
				Output: typesystem.TArrow{Input: typesystem.TVar{Name: "a"}, Output: typesystem.TVar{Name: "a"}},
			},
		},
	},
	config.BuiltinNaturalEven: typesystem.TArrow{Input: typesystem.NaturalType, Output: typesystem.BoolType},
	config.BuiltinNaturalOdd:  typesystem.TArrow{Input: typesystem.NaturalType, Output: typesystem.BoolType},
	config.BuiltinTextEqual: typesystem.TArrow{
		Input:  typesystem.TextType,
		Output: typesystem.TArrow{Input: typesystem.TextType, Output: typesystem.BoolType},
	},
}
