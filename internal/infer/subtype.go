package infer

import (
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/token"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// subtype establishes a <: b, solving existentials as needed. Both sides
// must already be Apply-ed under the current context.
func (inf *Inferrer) subtype(a, b typesystem.Type) *diagnostics.DiagnosticError {
	// Reflexive cases.
	switch at := a.(type) {
	case typesystem.TVar:
		if bt, ok := b.(typesystem.TVar); ok && at.Name == bt.Name {
			return nil
		}
	case typesystem.TCon:
		if bt, ok := b.(typesystem.TCon); ok && at.Name == bt.Name {
			return nil
		}
	case typesystem.TUnsolved:
		if bt, ok := b.(typesystem.TUnsolved); ok && at.Existential == bt.Existential {
			return nil
		}
	}

	// Quantifiers. A forall on the right (and exists on the left) opens
	// rigidly; a forall on the left (and exists on the right) opens with a
	// marker-scoped existential.
	if bt, ok := b.(typesystem.Forall); ok {
		marker := inf.pushMarker()
		inf.push(Variable{Name: bt.Name, Domain: bt.Domain})
		err := inf.subtype(a, bt.Body)
		inf.discardToMarker(marker)
		return err
	}
	if at, ok := a.(typesystem.Exists); ok {
		marker := inf.pushMarker()
		inf.push(Variable{Name: at.Name, Domain: at.Domain})
		err := inf.subtype(at.Body, b)
		inf.discardToMarker(marker)
		return err
	}
	if at, ok := a.(typesystem.Forall); ok {
		marker := inf.pushMarker()
		body := inf.openForall(at)
		err := inf.subtype(body, inf.ctx.Apply(b))
		inf.discardToMarker(marker)
		return err
	}
	if bt, ok := b.(typesystem.Exists); ok {
		marker := inf.pushMarker()
		body := inf.openExists(bt)
		err := inf.subtype(inf.ctx.Apply(a), body)
		inf.discardToMarker(marker)
		return err
	}

	// Instantiation. The occurs check rules out recursive types.
	if at, ok := a.(typesystem.TUnsolved); ok {
		if typesystem.OccursIn(at.Existential, b) {
			return diagnostics.NewError(diagnostics.ErrT006, token.Token{},
				"cannot construct the infinite type %s = %s", at.Existential, b)
		}
		return inf.instantiateL(at.Existential, b)
	}
	if bt, ok := b.(typesystem.TUnsolved); ok {
		if typesystem.OccursIn(bt.Existential, a) {
			return diagnostics.NewError(diagnostics.ErrT006, token.Token{},
				"cannot construct the infinite type %s = %s", bt.Existential, a)
		}
		return inf.instantiateR(a, bt.Existential)
	}

	// Structural cases.
	switch at := a.(type) {
	case typesystem.TArrow:
		bt, ok := b.(typesystem.TArrow)
		if !ok {
			break
		}
		if err := inf.subtype(inf.ctx.Apply(bt.Input), inf.ctx.Apply(at.Input)); err != nil {
			return err
		}
		return inf.subtype(inf.ctx.Apply(at.Output), inf.ctx.Apply(bt.Output))
	case typesystem.TList:
		bt, ok := b.(typesystem.TList)
		if !ok {
			break
		}
		return inf.subtype(inf.ctx.Apply(at.Element), inf.ctx.Apply(bt.Element))
	case typesystem.TRecord:
		bt, ok := b.(typesystem.TRecord)
		if !ok {
			break
		}
		return inf.subtypeRecord(at, bt)
	case typesystem.TUnion:
		bt, ok := b.(typesystem.TUnion)
		if !ok {
			break
		}
		return inf.subtypeUnion(at, bt)
	}

	return diagnostics.NewError(diagnostics.ErrT003, token.Token{},
		"%s is not a subtype of %s", a, b)
}

// subtypeRecord implements row subtyping. Labels common to both sides
// recurse structurally; labels private to one side must be absorbed by the
// other side's tail, which therefore has to be open.
func (inf *Inferrer) subtypeRecord(a, b typesystem.TRecord) *diagnostics.DiagnosticError {
	aFields := typesystem.FieldsByLabel(a.Fields)
	bFields := typesystem.FieldsByLabel(b.Fields)

	for _, field := range a.Fields {
		if expected, ok := bFields[field.Label]; ok {
			if err := inf.subtype(inf.ctx.Apply(field.Type), inf.ctx.Apply(expected)); err != nil {
				return err
			}
		}
	}

	onlyA := fieldsNotIn(a.Fields, bFields)
	onlyB := fieldsNotIn(b.Fields, aFields)

	switch aTail := a.Tail.(type) {
	case typesystem.EmptyRow:
		switch bTail := b.Tail.(type) {
		case typesystem.EmptyRow:
			if len(onlyB) > 0 {
				return missingField(onlyB[0].Label, a)
			}
			if len(onlyA) > 0 {
				return missingField(onlyA[0].Label, b)
			}
			return nil
		case typesystem.UnsolvedRow:
			// The closed side fixes the open side exactly.
			if len(onlyB) > 0 {
				return missingField(onlyB[0].Label, a)
			}
			return inf.ctx.SolveRow(bTail.Existential, RowSolution{Fields: onlyA, Tail: typesystem.EmptyRow{}})
		default:
			// A rigid tail absorbs nothing.
			if len(onlyA) > 0 {
				return missingField(onlyA[0].Label, b)
			}
			if len(onlyB) > 0 {
				return missingField(onlyB[0].Label, a)
			}
			return notSubtype(a, b)
		}
	case typesystem.UnsolvedRow:
		switch bTail := b.Tail.(type) {
		case typesystem.EmptyRow:
			if len(onlyA) > 0 {
				return missingField(onlyA[0].Label, b)
			}
			return inf.ctx.SolveRow(aTail.Existential, RowSolution{Fields: onlyB, Tail: typesystem.EmptyRow{}})
		case typesystem.UnsolvedRow:
			if aTail.Existential == bTail.Existential {
				if len(onlyA) > 0 {
					return missingField(onlyA[0].Label, b)
				}
				if len(onlyB) > 0 {
					return missingField(onlyB[0].Label, a)
				}
				return nil
			}
			// Both open: each absorbs the other's extras around a shared
			// fresh residual tail, spliced left of both so both solutions
			// stay well ordered.
			shared := inf.freshRow()
			ai := inf.ctx.indexOfUnsolvedRow(aTail.Existential)
			bi := inf.ctx.indexOfUnsolvedRow(bTail.Existential)
			at := ai
			if bi < at {
				at = bi
			}
			if at < 0 {
				return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
					"row existential vanished from the context")
			}
			inf.insertAt(at, UnsolvedRow{Existential: shared})
			if err := inf.ctx.SolveRow(aTail.Existential, RowSolution{Fields: onlyB, Tail: typesystem.UnsolvedRow{Existential: shared}}); err != nil {
				return err
			}
			return inf.ctx.SolveRow(bTail.Existential, RowSolution{Fields: onlyA, Tail: typesystem.UnsolvedRow{Existential: shared}})
		case typesystem.VarRow:
			if len(onlyA) > 0 {
				return missingField(onlyA[0].Label, b)
			}
			return inf.ctx.SolveRow(aTail.Existential, RowSolution{Fields: onlyB, Tail: bTail})
		}
	case typesystem.VarRow:
		switch bTail := b.Tail.(type) {
		case typesystem.UnsolvedRow:
			if len(onlyB) > 0 {
				return missingField(onlyB[0].Label, a)
			}
			return inf.ctx.SolveRow(bTail.Existential, RowSolution{Fields: onlyA, Tail: aTail})
		case typesystem.VarRow:
			if aTail.Name == bTail.Name && len(onlyA) == 0 && len(onlyB) == 0 {
				return nil
			}
			return notSubtype(a, b)
		default:
			if len(onlyA) > 0 {
				return missingField(onlyA[0].Label, b)
			}
			if len(onlyB) > 0 {
				return missingField(onlyB[0].Label, a)
			}
			return notSubtype(a, b)
		}
	}
	return notSubtype(a, b)
}

// subtypeUnion implements variant subtyping, the polarity-flipped mirror of
// records: every alternative the left side can produce must be covered on
// the right, while extra alternatives on the right cost nothing.
func (inf *Inferrer) subtypeUnion(a, b typesystem.TUnion) *diagnostics.DiagnosticError {
	aAlts := typesystem.FieldsByLabel(a.Alternatives)
	bAlts := typesystem.FieldsByLabel(b.Alternatives)

	for _, alt := range a.Alternatives {
		if expected, ok := bAlts[alt.Label]; ok {
			if err := inf.subtype(inf.ctx.Apply(alt.Type), inf.ctx.Apply(expected)); err != nil {
				return err
			}
		}
	}

	onlyA := fieldsNotIn(a.Alternatives, bAlts)
	onlyB := fieldsNotIn(b.Alternatives, aAlts)

	switch aTail := a.Tail.(type) {
	case typesystem.EmptyVariant:
		switch bTail := b.Tail.(type) {
		case typesystem.EmptyVariant:
			// Width subtyping: the right side handling extra alternatives
			// is fine; producing unhandled ones is not.
			if len(onlyA) > 0 {
				return missingAlternative(onlyA[0].Label, b)
			}
			return nil
		case typesystem.UnsolvedVariant:
			if len(onlyA) == 0 {
				return inf.ctx.SolveVariant(bTail.Existential, VariantSolution{Tail: typesystem.EmptyVariant{}})
			}
			return inf.ctx.SolveVariant(bTail.Existential, VariantSolution{Alternatives: onlyA, Tail: typesystem.EmptyVariant{}})
		case typesystem.VarVariant:
			if len(onlyA) > 0 {
				return missingAlternative(onlyA[0].Label, b)
			}
			return nil
		}
	case typesystem.UnsolvedVariant:
		switch bTail := b.Tail.(type) {
		case typesystem.EmptyVariant:
			if len(onlyA) > 0 {
				return missingAlternative(onlyA[0].Label, b)
			}
			// Whatever else the left side might produce must be among the
			// alternatives the right side already handles.
			return inf.ctx.SolveVariant(aTail.Existential, VariantSolution{Alternatives: onlyB, Tail: typesystem.EmptyVariant{}})
		case typesystem.UnsolvedVariant:
			if aTail.Existential == bTail.Existential {
				if len(onlyA) > 0 {
					return missingAlternative(onlyA[0].Label, b)
				}
				if len(onlyB) > 0 {
					return missingAlternative(onlyB[0].Label, a)
				}
				return nil
			}
			shared := inf.freshVariant()
			ai := inf.ctx.indexOfUnsolvedVariant(aTail.Existential)
			bi := inf.ctx.indexOfUnsolvedVariant(bTail.Existential)
			at := ai
			if bi < at {
				at = bi
			}
			if at < 0 {
				return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
					"variant existential vanished from the context")
			}
			inf.insertAt(at, UnsolvedVariant{Existential: shared})
			if err := inf.ctx.SolveVariant(aTail.Existential, VariantSolution{Alternatives: onlyB, Tail: typesystem.UnsolvedVariant{Existential: shared}}); err != nil {
				return err
			}
			return inf.ctx.SolveVariant(bTail.Existential, VariantSolution{Alternatives: onlyA, Tail: typesystem.UnsolvedVariant{Existential: shared}})
		case typesystem.VarVariant:
			if len(onlyA) > 0 {
				return missingAlternative(onlyA[0].Label, b)
			}
			return inf.ctx.SolveVariant(aTail.Existential, VariantSolution{Alternatives: onlyB, Tail: bTail})
		}
	case typesystem.VarVariant:
		switch bTail := b.Tail.(type) {
		case typesystem.UnsolvedVariant:
			return inf.ctx.SolveVariant(bTail.Existential, VariantSolution{Alternatives: onlyA, Tail: aTail})
		case typesystem.VarVariant:
			if aTail.Name == bTail.Name && len(onlyA) == 0 {
				return nil
			}
			return notSubtype(a, b)
		default:
			return notSubtype(a, b)
		}
	}
	return notSubtype(a, b)
}

func fieldsNotIn(fields []typesystem.Field, other map[string]typesystem.Type) []typesystem.Field {
	var out []typesystem.Field
	for _, f := range fields {
		if _, ok := other[f.Label]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func missingField(label string, t typesystem.Type) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrT004, token.Token{},
		"record %s has no field %q", t, label)
}

func missingAlternative(label string, t typesystem.Type) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrT005, token.Token{},
		"union %s has no alternative %q", t, label)
}

func notSubtype(a, b typesystem.Type) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrT003, token.Token{},
		"%s is not a subtype of %s", a, b)
}
