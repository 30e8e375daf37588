package infer

import (
	"strings"

	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/token"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// Entry is one element of the ordered typing context. Ordering encodes
// scope and dependency: an existential may only be solved in terms of
// entries strictly to its left.
type Entry interface {
	entry()
	String() string
}

// Variable is a rigid type/row/variant variable in scope.
type Variable struct {
	Name   string
	Domain typesystem.Domain
}

// Annotation binds a term variable to its type.
type Annotation struct {
	Name string
	Type typesystem.Type
}

// Unsolved is a pending monotype existential.
type Unsolved struct {
	Existential typesystem.Existential
}

// Solved records a monotype existential's solution. The solution is always
// quantifier-free and well formed in the context prefix left of this entry.
type Solved struct {
	Existential typesystem.Existential
	Solution    typesystem.Type
}

// UnsolvedRow is a pending row existential.
type UnsolvedRow struct {
	Existential typesystem.RowExistential
}

// RowSolution is what a row existential resolves to: zero or more absorbed
// fields followed by a residual tail.
type RowSolution struct {
	Fields []typesystem.Field
	Tail   typesystem.Row
}

// SolvedRow records a row existential's solution.
type SolvedRow struct {
	Existential typesystem.RowExistential
	Solution    RowSolution
}

// UnsolvedVariant is a pending variant existential.
type UnsolvedVariant struct {
	Existential typesystem.VariantExistential
}

// VariantSolution is what a variant existential resolves to.
type VariantSolution struct {
	Alternatives []typesystem.Field
	Tail         typesystem.Variant
}

// SolvedVariant records a variant existential's solution.
type SolvedVariant struct {
	Existential typesystem.VariantExistential
	Solution    VariantSolution
}

// Marker is a checkpoint bounding the lifetime of existentials introduced
// for a local scope; Inferrer.discardToMarker truncates at it.
type Marker struct {
	Existential typesystem.Existential
}

func (Variable) entry()        {}
func (Annotation) entry()      {}
func (Unsolved) entry()        {}
func (Solved) entry()          {}
func (UnsolvedRow) entry()     {}
func (SolvedRow) entry()       {}
func (UnsolvedVariant) entry() {}
func (SolvedVariant) entry()   {}
func (Marker) entry()          {}

func (e Variable) String() string   { return e.Name + " : " + e.Domain.String() }
func (e Annotation) String() string { return e.Name + " : " + e.Type.String() }
func (e Unsolved) String() string   { return e.Existential.String() }
func (e Solved) String() string {
	return e.Existential.String() + " = " + e.Solution.String()
}
func (e UnsolvedRow) String() string { return e.Existential.String() }
func (e SolvedRow) String() string {
	var sb strings.Builder
	sb.WriteString(e.Existential.String())
	sb.WriteString(" = {")
	for i, f := range e.Solution.Fields {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" " + f.Label + ": " + f.Type.String())
	}
	sb.WriteString(" | " + e.Solution.Tail.String() + " }")
	return sb.String()
}
func (e UnsolvedVariant) String() string { return e.Existential.String() }
func (e SolvedVariant) String() string {
	var sb strings.Builder
	sb.WriteString(e.Existential.String())
	sb.WriteString(" = <")
	for i, f := range e.Solution.Alternatives {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" " + f.Label + ": " + f.Type.String())
	}
	sb.WriteString(" | " + e.Solution.Tail.String() + " >")
	return sb.String()
}
func (e Marker) String() string { return "|> " + e.Existential.String() }

// Context is the ordered list of entries threaded through inference. It is
// used with an append-and-truncate discipline: recursive calls extend it
// and discard their own extensions before returning, with in-place entry
// replacement when an existential is solved.
type Context []Entry

func (c Context) String() string {
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// indexOfUnsolved finds the Unsolved entry for e, or -1.
func (c Context) indexOfUnsolved(e typesystem.Existential) int {
	for i, entry := range c {
		if u, ok := entry.(Unsolved); ok && u.Existential == e {
			return i
		}
	}
	return -1
}

func (c Context) indexOfUnsolvedRow(e typesystem.RowExistential) int {
	for i, entry := range c {
		if u, ok := entry.(UnsolvedRow); ok && u.Existential == e {
			return i
		}
	}
	return -1
}

func (c Context) indexOfUnsolvedVariant(e typesystem.VariantExistential) int {
	for i, entry := range c {
		if u, ok := entry.(UnsolvedVariant); ok && u.Existential == e {
			return i
		}
	}
	return -1
}

// indexOfMarker finds the Marker entry for e, or -1.
func (c Context) indexOfMarker(e typesystem.Existential) int {
	for i, entry := range c {
		if m, ok := entry.(Marker); ok && m.Existential == e {
			return i
		}
	}
	return -1
}

// solutionFor returns the solution of a monotype existential, if any.
func (c Context) solutionFor(e typesystem.Existential) (typesystem.Type, bool) {
	for _, entry := range c {
		if s, ok := entry.(Solved); ok && s.Existential == e {
			return s.Solution, true
		}
	}
	return nil, false
}

func (c Context) rowSolutionFor(e typesystem.RowExistential) (RowSolution, bool) {
	for _, entry := range c {
		if s, ok := entry.(SolvedRow); ok && s.Existential == e {
			return s.Solution, true
		}
	}
	return RowSolution{}, false
}

func (c Context) variantSolutionFor(e typesystem.VariantExistential) (VariantSolution, bool) {
	for _, entry := range c {
		if s, ok := entry.(SolvedVariant); ok && s.Existential == e {
			return s.Solution, true
		}
	}
	return VariantSolution{}, false
}

// Solve replaces e's Unsolved entry with its solution after verifying the
// solution is a quantifier-free type well formed in the prefix left of the
// entry. A violation of the ordering discipline is an OutOfScope error.
func (c Context) Solve(e typesystem.Existential, solution typesystem.Type) *diagnostics.DiagnosticError {
	i := c.indexOfUnsolved(e)
	if i < 0 {
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"existential %s is not unsolved in the current context", e)
	}
	if !typesystem.IsMonotype(solution) {
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"cannot solve %s to the polymorphic type %s", e, solution)
	}
	if err := c[:i].checkScope(solution, e.String()); err != nil {
		return err
	}
	c[i] = Solved{Existential: e, Solution: solution}
	return nil
}

// SolveRow is Solve for row existentials.
func (c Context) SolveRow(e typesystem.RowExistential, solution RowSolution) *diagnostics.DiagnosticError {
	i := c.indexOfUnsolvedRow(e)
	if i < 0 {
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"row existential %s is not unsolved in the current context", e)
	}
	prefix := c[:i]
	for _, f := range solution.Fields {
		if err := prefix.checkScope(f.Type, e.String()); err != nil {
			return err
		}
	}
	if err := prefix.checkRowScope(solution.Tail, e.String()); err != nil {
		return err
	}
	c[i] = SolvedRow{Existential: e, Solution: solution}
	return nil
}

// SolveVariant is Solve for variant existentials.
func (c Context) SolveVariant(e typesystem.VariantExistential, solution VariantSolution) *diagnostics.DiagnosticError {
	i := c.indexOfUnsolvedVariant(e)
	if i < 0 {
		return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
			"variant existential %s is not unsolved in the current context", e)
	}
	prefix := c[:i]
	for _, f := range solution.Alternatives {
		if err := prefix.checkScope(f.Type, e.String()); err != nil {
			return err
		}
	}
	if err := prefix.checkVariantScope(solution.Tail, e.String()); err != nil {
		return err
	}
	c[i] = SolvedVariant{Existential: e, Solution: solution}
	return nil
}

// checkScope verifies that every existential and rigid variable mentioned
// in t has an entry in c, which during Solve is the prefix left of the
// entry being solved. This is what enforces the left-of-solution ordering
// discipline.
func (c Context) checkScope(t typesystem.Type, solving string) *diagnostics.DiagnosticError {
	for _, v := range typesystem.FreeVariablesOf(t) {
		if !c.hasVariable(v.Name, v.Domain) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: variable %q is not in scope to its left", solving, v.Name)
		}
	}
	free := typesystem.FreeExistentials{}
	free.Collect(t)
	for _, e := range free.Types {
		if c.indexOfUnsolved(e) < 0 && !c.hasSolved(e) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: %s is not in scope to its left", solving, e)
		}
	}
	for _, e := range free.Rows {
		if c.indexOfUnsolvedRow(e) < 0 && !c.hasSolvedRow(e) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: row %s is not in scope to its left", solving, e)
		}
	}
	for _, e := range free.Variants {
		if c.indexOfUnsolvedVariant(e) < 0 && !c.hasSolvedVariant(e) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: variant %s is not in scope to its left", solving, e)
		}
	}
	return nil
}

func (c Context) checkRowScope(r typesystem.Row, solving string) *diagnostics.DiagnosticError {
	switch r := r.(type) {
	case typesystem.UnsolvedRow:
		if c.indexOfUnsolvedRow(r.Existential) < 0 && !c.hasSolvedRow(r.Existential) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: row %s is not in scope to its left", solving, r.Existential)
		}
	case typesystem.VarRow:
		if !c.hasVariable(r.Name, typesystem.DomainFields) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: row variable %q is not in scope to its left", solving, r.Name)
		}
	}
	return nil
}

func (c Context) checkVariantScope(v typesystem.Variant, solving string) *diagnostics.DiagnosticError {
	switch v := v.(type) {
	case typesystem.UnsolvedVariant:
		if c.indexOfUnsolvedVariant(v.Existential) < 0 && !c.hasSolvedVariant(v.Existential) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: variant %s is not in scope to its left", solving, v.Existential)
		}
	case typesystem.VarVariant:
		if !c.hasVariable(v.Name, typesystem.DomainAlternatives) {
			return diagnostics.NewError(diagnostics.ErrT008, token.Token{},
				"solving %s out of order: variant variable %q is not in scope to its left", solving, v.Name)
		}
	}
	return nil
}

func (c Context) hasSolved(e typesystem.Existential) bool {
	_, ok := c.solutionFor(e)
	return ok
}

func (c Context) hasSolvedRow(e typesystem.RowExistential) bool {
	_, ok := c.rowSolutionFor(e)
	return ok
}

func (c Context) hasSolvedVariant(e typesystem.VariantExistential) bool {
	_, ok := c.variantSolutionFor(e)
	return ok
}

// Apply eagerly substitutes every solved existential occurring in t,
// recursively, so the result mentions only unsolved existentials and rigid
// variables. Apply is idempotent.
func (c Context) Apply(t typesystem.Type) typesystem.Type {
	switch t := t.(type) {
	case typesystem.TUnsolved:
		if solution, ok := c.solutionFor(t.Existential); ok {
			return c.Apply(solution)
		}
		return t
	case typesystem.TArrow:
		return typesystem.TArrow{Input: c.Apply(t.Input), Output: c.Apply(t.Output)}
	case typesystem.TList:
		return typesystem.TList{Element: c.Apply(t.Element)}
	case typesystem.TRecord:
		fields := make([]typesystem.Field, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, typesystem.Field{Label: f.Label, Type: c.Apply(f.Type)})
		}
		tail := t.Tail
		for {
			unsolved, ok := tail.(typesystem.UnsolvedRow)
			if !ok {
				break
			}
			solution, solved := c.rowSolutionFor(unsolved.Existential)
			if !solved {
				break
			}
			for _, f := range solution.Fields {
				fields = append(fields, typesystem.Field{Label: f.Label, Type: c.Apply(f.Type)})
			}
			tail = solution.Tail
		}
		return typesystem.TRecord{Fields: fields, Tail: tail}
	case typesystem.TUnion:
		alternatives := make([]typesystem.Field, 0, len(t.Alternatives))
		for _, a := range t.Alternatives {
			alternatives = append(alternatives, typesystem.Field{Label: a.Label, Type: c.Apply(a.Type)})
		}
		tail := t.Tail
		for {
			unsolved, ok := tail.(typesystem.UnsolvedVariant)
			if !ok {
				break
			}
			solution, solved := c.variantSolutionFor(unsolved.Existential)
			if !solved {
				break
			}
			for _, a := range solution.Alternatives {
				alternatives = append(alternatives, typesystem.Field{Label: a.Label, Type: c.Apply(a.Type)})
			}
			tail = solution.Tail
		}
		return typesystem.TUnion{Alternatives: alternatives, Tail: tail}
	case typesystem.Forall:
		return typesystem.Forall{Name: t.Name, Domain: t.Domain, Body: c.Apply(t.Body)}
	case typesystem.Exists:
		return typesystem.Exists{Name: t.Name, Domain: t.Domain, Body: c.Apply(t.Body)}
	}
	return t
}

// WellFormed verifies that every variable and existential mentioned in t is
// either bound within t itself or has a matching context entry. Annotations
// from source pass through here before being trusted.
func (c Context) WellFormed(t typesystem.Type) *diagnostics.DiagnosticError {
	type key struct {
		name   string
		domain typesystem.Domain
	}
	bound := map[key]int{}

	var walk func(t typesystem.Type) *diagnostics.DiagnosticError
	walkRow := func(r typesystem.Row) *diagnostics.DiagnosticError {
		switch r := r.(type) {
		case typesystem.VarRow:
			if bound[key{r.Name, typesystem.DomainFields}] == 0 && !c.hasVariable(r.Name, typesystem.DomainFields) {
				return diagnostics.NewError(diagnostics.ErrT007, token.Token{},
					"unbound row variable %q in %s", r.Name, t)
			}
		case typesystem.UnsolvedRow:
			if c.indexOfUnsolvedRow(r.Existential) < 0 && !c.hasSolvedRow(r.Existential) {
				return diagnostics.NewError(diagnostics.ErrT007, token.Token{},
					"row existential %s has no context entry", r.Existential)
			}
		}
		return nil
	}
	walkVariant := func(v typesystem.Variant) *diagnostics.DiagnosticError {
		switch v := v.(type) {
		case typesystem.VarVariant:
			if bound[key{v.Name, typesystem.DomainAlternatives}] == 0 && !c.hasVariable(v.Name, typesystem.DomainAlternatives) {
				return diagnostics.NewError(diagnostics.ErrT007, token.Token{},
					"unbound variant variable %q in %s", v.Name, t)
			}
		case typesystem.UnsolvedVariant:
			if c.indexOfUnsolvedVariant(v.Existential) < 0 && !c.hasSolvedVariant(v.Existential) {
				return diagnostics.NewError(diagnostics.ErrT007, token.Token{},
					"variant existential %s has no context entry", v.Existential)
			}
		}
		return nil
	}
	walk = func(u typesystem.Type) *diagnostics.DiagnosticError {
		switch u := u.(type) {
		case typesystem.TVar:
			if bound[key{u.Name, typesystem.DomainType}] == 0 && !c.hasVariable(u.Name, typesystem.DomainType) {
				return diagnostics.NewError(diagnostics.ErrT007, token.Token{},
					"unbound type variable %q in %s", u.Name, t)
			}
		case typesystem.TUnsolved:
			if c.indexOfUnsolved(u.Existential) < 0 && !c.hasSolved(u.Existential) {
				return diagnostics.NewError(diagnostics.ErrT007, token.Token{},
					"existential %s has no context entry", u.Existential)
			}
		case typesystem.TArrow:
			if err := walk(u.Input); err != nil {
				return err
			}
			return walk(u.Output)
		case typesystem.TList:
			return walk(u.Element)
		case typesystem.TRecord:
			for _, f := range u.Fields {
				if err := walk(f.Type); err != nil {
					return err
				}
			}
			return walkRow(u.Tail)
		case typesystem.TUnion:
			for _, a := range u.Alternatives {
				if err := walk(a.Type); err != nil {
					return err
				}
			}
			return walkVariant(u.Tail)
		case typesystem.Forall:
			k := key{u.Name, u.Domain}
			bound[k]++
			err := walk(u.Body)
			bound[k]--
			return err
		case typesystem.Exists:
			k := key{u.Name, u.Domain}
			bound[k]++
			err := walk(u.Body)
			bound[k]--
			return err
		}
		return nil
	}
	return walk(t)
}

func (c Context) hasVariable(name string, domain typesystem.Domain) bool {
	for _, entry := range c {
		if v, ok := entry.(Variable); ok && v.Name == name && v.Domain == domain {
			return true
		}
	}
	return false
}

// lookupAnnotation scans right to left for the index-th annotation of name.
func (c Context) lookupAnnotation(name string, index int) (typesystem.Type, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if a, ok := c[i].(Annotation); ok && a.Name == name {
			if index == 0 {
				return a.Type, true
			}
			index--
		}
	}
	return nil, false
}
