package infer

import (
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/token"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// instantiateL solves e to a subtype of t. t must already be Apply-ed and
// must not mention e (the caller performs the occurs check).
func (inf *Inferrer) instantiateL(e typesystem.Existential, t typesystem.Type) *diagnostics.DiagnosticError {
	i := inf.ctx.indexOfUnsolved(e)
	if i < 0 {
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"existential %s is not unsolved in the current context", e)
	}

	// A monotype well formed left of e solves it outright.
	if typesystem.IsMonotype(t) && inf.ctx[:i].checkScope(t, e.String()) == nil {
		return inf.ctx.Solve(e, t)
	}

	switch t := t.(type) {
	case typesystem.TUnsolved:
		// Reach: t sits to the right of e, so t points back at e.
		j := inf.ctx.indexOfUnsolved(t.Existential)
		if j > i {
			return inf.ctx.Solve(t.Existential, typesystem.TUnsolved{Existential: e})
		}
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"cannot order existentials %s and %s", e, t.Existential)

	case typesystem.TArrow:
		input := inf.freshType()
		output := inf.freshType()
		inf.insertAt(i, Unsolved{Existential: input}, Unsolved{Existential: output})
		arrow := typesystem.TArrow{
			Input:  typesystem.TUnsolved{Existential: input},
			Output: typesystem.TUnsolved{Existential: output},
		}
		if err := inf.ctx.Solve(e, arrow); err != nil {
			return err
		}
		if err := inf.instantiateR(inf.ctx.Apply(t.Input), input); err != nil {
			return err
		}
		return inf.instantiateL(output, inf.ctx.Apply(t.Output))

	case typesystem.TList:
		element := inf.freshType()
		inf.insertAt(i, Unsolved{Existential: element})
		if err := inf.ctx.Solve(e, typesystem.TList{Element: typesystem.TUnsolved{Existential: element}}); err != nil {
			return err
		}
		return inf.instantiateL(element, inf.ctx.Apply(t.Element))

	case typesystem.TRecord:
		skeleton, fieldVars, tailVar := inf.articulateRecord(e, t)
		if err := inf.ctx.Solve(e, skeleton); err != nil {
			return err
		}
		for k, fv := range fieldVars {
			if err := inf.instantiateL(fv, inf.ctx.Apply(t.Fields[k].Type)); err != nil {
				return err
			}
		}
		return inf.instantiateRowTail(tailVar, t.Tail)

	case typesystem.TUnion:
		skeleton, altVars, tailVar := inf.articulateUnion(e, t)
		if err := inf.ctx.Solve(e, skeleton); err != nil {
			return err
		}
		for k, av := range altVars {
			if err := inf.instantiateL(av, inf.ctx.Apply(t.Alternatives[k].Type)); err != nil {
				return err
			}
		}
		return inf.instantiateVariantTail(tailVar, t.Tail)

	case typesystem.Forall:
		// e must be a subtype of every instance, so the binder opens
		// rigidly.
		marker := inf.pushMarker()
		inf.push(Variable{Name: t.Name, Domain: t.Domain})
		err := inf.instantiateL(e, t.Body)
		inf.discardToMarker(marker)
		return err

	case typesystem.Exists:
		marker := inf.pushMarker()
		body := inf.openExists(t)
		err := inf.instantiateL(e, body)
		inf.discardToMarker(marker)
		return err
	}

	return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
		"cannot instantiate %s to %s", e, t)
}

// instantiateR solves e to a supertype of t: the mirror image of
// instantiateL.
func (inf *Inferrer) instantiateR(t typesystem.Type, e typesystem.Existential) *diagnostics.DiagnosticError {
	i := inf.ctx.indexOfUnsolved(e)
	if i < 0 {
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"existential %s is not unsolved in the current context", e)
	}

	if typesystem.IsMonotype(t) && inf.ctx[:i].checkScope(t, e.String()) == nil {
		return inf.ctx.Solve(e, t)
	}

	switch t := t.(type) {
	case typesystem.TUnsolved:
		j := inf.ctx.indexOfUnsolved(t.Existential)
		if j > i {
			return inf.ctx.Solve(t.Existential, typesystem.TUnsolved{Existential: e})
		}
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"cannot order existentials %s and %s", t.Existential, e)

	case typesystem.TArrow:
		input := inf.freshType()
		output := inf.freshType()
		inf.insertAt(i, Unsolved{Existential: input}, Unsolved{Existential: output})
		arrow := typesystem.TArrow{
			Input:  typesystem.TUnsolved{Existential: input},
			Output: typesystem.TUnsolved{Existential: output},
		}
		if err := inf.ctx.Solve(e, arrow); err != nil {
			return err
		}
		if err := inf.instantiateL(input, inf.ctx.Apply(t.Input)); err != nil {
			return err
		}
		return inf.instantiateR(inf.ctx.Apply(t.Output), output)

	case typesystem.TList:
		element := inf.freshType()
		inf.insertAt(i, Unsolved{Existential: element})
		if err := inf.ctx.Solve(e, typesystem.TList{Element: typesystem.TUnsolved{Existential: element}}); err != nil {
			return err
		}
		return inf.instantiateR(inf.ctx.Apply(t.Element), element)

	case typesystem.TRecord:
		skeleton, fieldVars, tailVar := inf.articulateRecord(e, t)
		if err := inf.ctx.Solve(e, skeleton); err != nil {
			return err
		}
		for k, fv := range fieldVars {
			if err := inf.instantiateR(inf.ctx.Apply(t.Fields[k].Type), fv); err != nil {
				return err
			}
		}
		return inf.instantiateRowTail(tailVar, t.Tail)

	case typesystem.TUnion:
		skeleton, altVars, tailVar := inf.articulateUnion(e, t)
		if err := inf.ctx.Solve(e, skeleton); err != nil {
			return err
		}
		for k, av := range altVars {
			if err := inf.instantiateR(inf.ctx.Apply(t.Alternatives[k].Type), av); err != nil {
				return err
			}
		}
		return inf.instantiateVariantTail(tailVar, t.Tail)

	case typesystem.Forall:
		// Any single instance makes e a supertype, so the binder opens
		// with a marker-scoped existential.
		marker := inf.pushMarker()
		body := inf.openForall(t)
		err := inf.instantiateR(body, e)
		inf.discardToMarker(marker)
		return err

	case typesystem.Exists:
		marker := inf.pushMarker()
		inf.push(Variable{Name: t.Name, Domain: t.Domain})
		err := inf.instantiateR(t.Body, e)
		inf.discardToMarker(marker)
		return err
	}

	return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
		"cannot instantiate %s to %s", e, t)
}

// articulateRecord splices a record skeleton for e into the context: one
// fresh existential per field of the template plus a fresh row tail, all
// sitting left of e so the solution is well ordered.
func (inf *Inferrer) articulateRecord(e typesystem.Existential, t typesystem.TRecord) (typesystem.TRecord, []typesystem.Existential, typesystem.RowExistential) {
	i := inf.ctx.indexOfUnsolved(e)
	fieldVars := make([]typesystem.Existential, len(t.Fields))
	entries := make([]Entry, 0, len(t.Fields)+1)
	fields := make([]typesystem.Field, len(t.Fields))
	for k, f := range t.Fields {
		fv := inf.freshType()
		fieldVars[k] = fv
		entries = append(entries, Unsolved{Existential: fv})
		fields[k] = typesystem.Field{Label: f.Label, Type: typesystem.TUnsolved{Existential: fv}}
	}
	tailVar := inf.freshRow()
	entries = append(entries, UnsolvedRow{Existential: tailVar})
	inf.insertAt(i, entries...)
	return typesystem.TRecord{Fields: fields, Tail: typesystem.UnsolvedRow{Existential: tailVar}}, fieldVars, tailVar
}

func (inf *Inferrer) articulateUnion(e typesystem.Existential, t typesystem.TUnion) (typesystem.TUnion, []typesystem.Existential, typesystem.VariantExistential) {
	i := inf.ctx.indexOfUnsolved(e)
	altVars := make([]typesystem.Existential, len(t.Alternatives))
	entries := make([]Entry, 0, len(t.Alternatives)+1)
	alternatives := make([]typesystem.Field, len(t.Alternatives))
	for k, a := range t.Alternatives {
		av := inf.freshType()
		altVars[k] = av
		entries = append(entries, Unsolved{Existential: av})
		alternatives[k] = typesystem.Field{Label: a.Label, Type: typesystem.TUnsolved{Existential: av}}
	}
	tailVar := inf.freshVariant()
	entries = append(entries, UnsolvedVariant{Existential: tailVar})
	inf.insertAt(i, entries...)
	return typesystem.TUnion{Alternatives: alternatives, Tail: typesystem.UnsolvedVariant{Existential: tailVar}}, altVars, tailVar
}

// instantiateRowTail unifies a freshly articulated row existential with the
// template's tail.
func (inf *Inferrer) instantiateRowTail(e typesystem.RowExistential, tail typesystem.Row) *diagnostics.DiagnosticError {
	switch tail := tail.(type) {
	case typesystem.EmptyRow:
		return inf.ctx.SolveRow(e, RowSolution{Tail: typesystem.EmptyRow{}})
	case typesystem.VarRow:
		return inf.ctx.SolveRow(e, RowSolution{Tail: tail})
	case typesystem.UnsolvedRow:
		i := inf.ctx.indexOfUnsolvedRow(e)
		j := inf.ctx.indexOfUnsolvedRow(tail.Existential)
		if j > i {
			return inf.ctx.SolveRow(tail.Existential, RowSolution{Tail: typesystem.UnsolvedRow{Existential: e}})
		}
		return inf.ctx.SolveRow(e, RowSolution{Tail: tail})
	}
	return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
		"cannot instantiate row %s", e)
}

func (inf *Inferrer) instantiateVariantTail(e typesystem.VariantExistential, tail typesystem.Variant) *diagnostics.DiagnosticError {
	switch tail := tail.(type) {
	case typesystem.EmptyVariant:
		return inf.ctx.SolveVariant(e, VariantSolution{Tail: typesystem.EmptyVariant{}})
	case typesystem.VarVariant:
		return inf.ctx.SolveVariant(e, VariantSolution{Tail: tail})
	case typesystem.UnsolvedVariant:
		i := inf.ctx.indexOfUnsolvedVariant(e)
		j := inf.ctx.indexOfUnsolvedVariant(tail.Existential)
		if j > i {
			return inf.ctx.SolveVariant(tail.Existential, VariantSolution{Tail: typesystem.UnsolvedVariant{Existential: e}})
		}
		return inf.ctx.SolveVariant(e, VariantSolution{Tail: tail})
	}
	return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
		"cannot instantiate variant %s", e)
}
