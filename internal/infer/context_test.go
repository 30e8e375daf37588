package infer

import (
	"testing"

	"github.com/nilp0inter/grace/internal/typesystem"
)

// TestApplyIdempotent: apply(apply(t)) must equal apply(t), including
// through chains of solutions and solved row tails.
func TestApplyIdempotent(t *testing.T) {
	ctx := Context{
		Unsolved{Existential: 0},
		Solved{Existential: 1, Solution: typesystem.TUnsolved{Existential: 0}},
		Solved{Existential: 2, Solution: typesystem.TArrow{
			Input:  typesystem.TUnsolved{Existential: 1},
			Output: typesystem.NaturalType,
		}},
		UnsolvedRow{Existential: 3},
		SolvedRow{Existential: 4, Solution: RowSolution{
			Fields: []typesystem.Field{{Label: "y", Type: typesystem.TUnsolved{Existential: 1}}},
			Tail:   typesystem.UnsolvedRow{Existential: 3},
		}},
	}

	inputs := []typesystem.Type{
		typesystem.TUnsolved{Existential: 2},
		typesystem.TList{Element: typesystem.TUnsolved{Existential: 1}},
		typesystem.TRecord{
			Fields: []typesystem.Field{{Label: "x", Type: typesystem.TUnsolved{Existential: 2}}},
			Tail:   typesystem.UnsolvedRow{Existential: 4},
		},
	}

	for _, input := range inputs {
		once := ctx.Apply(input)
		twice := ctx.Apply(once)
		if once.String() != twice.String() {
			t.Errorf("apply not idempotent on %s: %s then %s", input, once, twice)
		}
	}
}

// TestApplyMergesSolvedRowFields: a record whose tail resolved to extra
// fields plus a residual tail must surface those fields.
func TestApplyMergesSolvedRowFields(t *testing.T) {
	ctx := Context{
		UnsolvedRow{Existential: 0},
		SolvedRow{Existential: 1, Solution: RowSolution{
			Fields: []typesystem.Field{{Label: "b", Type: typesystem.TextType}},
			Tail:   typesystem.UnsolvedRow{Existential: 0},
		}},
	}
	input := typesystem.TRecord{
		Fields: []typesystem.Field{{Label: "a", Type: typesystem.NaturalType}},
		Tail:   typesystem.UnsolvedRow{Existential: 1},
	}
	got := ctx.Apply(input).String()
	expected := "{ a: Natural, b: Text | a? }"
	if got != expected {
		t.Errorf("Apply = %q, want %q", got, expected)
	}
}

// TestSolveRespectsOrdering: a solution may only mention entries strictly
// left of the solved existential.
func TestSolveRespectsOrdering(t *testing.T) {
	ctx := Context{
		Unsolved{Existential: 0},
		Unsolved{Existential: 1},
	}

	// 1 may reference 0.
	if err := ctx.Solve(1, typesystem.TUnsolved{Existential: 0}); err != nil {
		t.Fatalf("rightward solve rejected: %v", err)
	}

	// 0 may not reference 1.
	ctx = Context{
		Unsolved{Existential: 0},
		Unsolved{Existential: 1},
	}
	if err := ctx.Solve(0, typesystem.TUnsolved{Existential: 1}); err == nil {
		t.Fatal("leftward solve accepted; ordering discipline broken")
	}
}

// TestSolveRejectsPolytypes: context solutions must be monotypes.
func TestSolveRejectsPolytypes(t *testing.T) {
	ctx := Context{Unsolved{Existential: 0}}
	polytype := typesystem.Forall{
		Name:   "a",
		Domain: typesystem.DomainType,
		Body:   typesystem.TVar{Name: "a"},
	}
	if err := ctx.Solve(0, polytype); err == nil {
		t.Fatal("polytype solution accepted")
	}
}

// TestSolvePreservesWellFormedness walks every solved entry after a chain
// of solves and checks the left-of-solution invariant.
func TestSolvePreservesWellFormedness(t *testing.T) {
	ctx := Context{
		Unsolved{Existential: 0},
		Unsolved{Existential: 1},
		Unsolved{Existential: 2},
	}
	if err := ctx.Solve(1, typesystem.TUnsolved{Existential: 0}); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Solve(2, typesystem.TArrow{
		Input:  typesystem.TUnsolved{Existential: 0},
		Output: typesystem.TUnsolved{Existential: 1},
	}); err != nil {
		t.Fatal(err)
	}

	for i, entry := range ctx {
		solved, ok := entry.(Solved)
		if !ok {
			continue
		}
		free := typesystem.FreeExistentials{}
		free.Collect(solved.Solution)
		for _, e := range free.Types {
			if prefix := ctx[:i]; prefix.indexOfUnsolved(e) < 0 && !prefix.hasSolved(e) {
				t.Errorf("entry %d solution references %s, which is not left of it", i, e)
			}
		}
	}
}

// TestDiscardToMarker truncates at and including the marker.
func TestDiscardToMarker(t *testing.T) {
	inf := New()
	inf.push(Unsolved{Existential: 100})
	marker := inf.pushMarker()
	inf.push(Unsolved{Existential: 101}, Variable{Name: "a", Domain: typesystem.DomainType})

	inf.discardToMarker(marker)

	if len(inf.ctx) != 1 {
		t.Fatalf("context has %d entries after discard, want 1: %s", len(inf.ctx), inf.ctx)
	}
	if inf.ctx.indexOfUnsolved(100) != 0 {
		t.Errorf("surviving entry wrong: %s", inf.ctx)
	}
}

// TestWellFormed exercises the annotation validity predicate.
func TestWellFormed(t *testing.T) {
	ctx := Context{
		Variable{Name: "a", Domain: typesystem.DomainType},
		Variable{Name: "r", Domain: typesystem.DomainFields},
	}

	valid := []typesystem.Type{
		typesystem.TVar{Name: "a"},
		typesystem.TRecord{
			Fields: []typesystem.Field{{Label: "x", Type: typesystem.TVar{Name: "a"}}},
			Tail:   typesystem.VarRow{Name: "r"},
		},
		// Bound within the type itself.
		typesystem.Forall{Name: "b", Domain: typesystem.DomainType, Body: typesystem.TVar{Name: "b"}},
	}
	for _, input := range valid {
		if err := ctx.WellFormed(input); err != nil {
			t.Errorf("WellFormed(%s) = %v, want nil", input, err)
		}
	}

	invalid := []typesystem.Type{
		typesystem.TVar{Name: "zzz"},
		// r is a row variable, not a type variable.
		typesystem.TVar{Name: "r"},
		typesystem.TRecord{Tail: typesystem.VarRow{Name: "q"}},
		typesystem.TUnion{Tail: typesystem.VarVariant{Name: "r"}},
		typesystem.TUnsolved{Existential: 9},
	}
	for _, input := range invalid {
		if err := ctx.WellFormed(input); err == nil {
			t.Errorf("WellFormed(%s) = nil, want error", input)
		}
	}
}

// TestLookupAnnotationIndex: rightmost binding wins, index skips matches.
func TestLookupAnnotationIndex(t *testing.T) {
	ctx := Context{
		Annotation{Name: "x", Type: typesystem.NaturalType},
		Annotation{Name: "y", Type: typesystem.TextType},
		Annotation{Name: "x", Type: typesystem.BoolType},
	}

	if got, ok := ctx.lookupAnnotation("x", 0); !ok || got.String() != "Bool" {
		t.Errorf("x@0 = %v, want Bool", got)
	}
	if got, ok := ctx.lookupAnnotation("x", 1); !ok || got.String() != "Natural" {
		t.Errorf("x@1 = %v, want Natural", got)
	}
	if _, ok := ctx.lookupAnnotation("x", 2); ok {
		t.Error("x@2 resolved, want miss")
	}
}
