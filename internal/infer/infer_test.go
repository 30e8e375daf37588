package infer

import (
	"testing"

	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/parser"
	"github.com/nilp0inter/grace/internal/typesystem"
)

func mustParse(t *testing.T, input string) ast.Expression {
	t.Helper()
	expr, errors := parser.Parse(input)
	if len(errors) > 0 {
		t.Fatalf("parse %q: %v", input, errors[0])
	}
	return expr
}

func inferType(t *testing.T, input string) typesystem.Type {
	t.Helper()
	inferred, err := Infer(mustParse(t, input))
	if err != nil {
		t.Fatalf("Infer(%q) failed: %v", input, err)
	}
	return inferred
}

func TestInferScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"identity", `\x -> x`, "forall a . a -> a"},
		{"identity_applied", `(\x -> x) 1`, "Natural"},
		{"projection", `{ a: 1, b: "hi" }.a`, "Natural"},
		{"list", "[1, 2, 3]", "List Natural"},
		{"heterogeneous_list_annotated", "[1, true] : List (exists a . a)", "List (exists a . a)"},
		{"if", "if true then 1 else 2", "Natural"},
		{"let_polymorphism", `let id = \x -> x in id id 5`, "Natural"},
		{"record_literal", `{ a: 1, b: "hi" }`, "{ a: Natural, b: Text }"},
		{"empty_list", "[]", "forall a . List a"},
		{"text_append", `"foo" ++ "bar"`, "Text"},
		{"list_append", "[1] ++ [2]", "List Natural"},
		{"bool_operators", "true && false || true", "Bool"},
		{"arithmetic", "1 + 2 * 3", "Natural"},
		{"builtin_length", "List/length [1, 2]", "Natural"},
		{"builtin_fold", `List/fold [1, 2, 3] (\x -> \acc -> x + acc) 0`, "Natural"},
		{"annotated_let", "let n : Natural = 4 in n + 1", "Natural"},
		{"shadowing_index", "let x = 1 let x = true in x@1", "Natural"},
		{
			"alternative",
			"Left 1",
			"forall (b : Alternatives) . < Left: Natural | b >",
		},
		{
			"row_polymorphic_projection",
			`\r -> r.x`,
			"forall f . forall (g : Fields) . { x: f | g } -> f",
		},
		{
			"merge",
			`merge { Left: \n -> n + 1, Right: \b -> 0 } (Left 1)`,
			"Natural",
		},
		{
			"lambda_checked_against_forall",
			`(\x -> x) : forall a . a -> a`,
			"forall a . a -> a",
		},
		{
			"open_record_annotation",
			`(\r -> r.x) : forall (p : Fields) . { x: Natural | p } -> Natural`,
			"forall (p : Fields) . { x: Natural | p } -> Natural",
		},
		{
			"width_subtyped_union",
			"(Left 1) : < Left: Natural, Right: Bool >",
			"< Left: Natural, Right: Bool >",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := inferType(t, tc.input).String(); got != tc.expected {
				t.Errorf("Infer(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestInferErrors pins each failure category to its diagnostic code.
func TestInferErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"unbound_variable", "x", diagnostics.ErrT001},
		{"unbound_index", `let x = 1 in x@1`, diagnostics.ErrT001},
		{"not_a_function", "1 true", diagnostics.ErrT002},
		{"not_subtype", "if true then 1 else false", diagnostics.ErrT003},
		{"missing_field", "{ a: 1 }.b", diagnostics.ErrT004},
		{"missing_alternative", "(Left 1) : < Right: Bool >", diagnostics.ErrT005},
		{"occurs_check", `\x -> x x`, diagnostics.ErrT006},
		{"not_well_formed", "1 : a", diagnostics.ErrT007},
		{"merge_not_a_handler", "merge 1", diagnostics.ErrT009},
		{"merge_non_function_handler", "merge { Left: 1 }", diagnostics.ErrT009},
		{"predicate_not_bool", "if 1 then 2 else 3", diagnostics.ErrT003},
		{"extra_record_field", "{ a: 1, b: 2 } : { a: Natural }", diagnostics.ErrT004},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Infer(mustParse(t, tc.input))
			if err == nil {
				t.Fatalf("Infer(%q) succeeded, want %s", tc.input, tc.code)
			}
			if err.Code != tc.code {
				t.Errorf("Infer(%q) failed with %s (%s), want %s", tc.input, err.Code, err.Message, tc.code)
			}
		})
	}
}

// TestPrincipality checks the inferred type subsumes other valid
// annotations: subtype(inferred, annotation) holds in a fresh session.
func TestPrincipality(t *testing.T) {
	tests := []struct {
		input      string
		annotation string
	}{
		{`\x -> x`, "Natural -> Natural"},
		{`\x -> x`, "forall a . a -> a"},
		{"[]", "List Natural"},
		{`\r -> r.x`, "{ x: Natural } -> Natural"},
		{`\r -> r.x`, "{ x: Bool, y: Text } -> Bool"},
		{"Left 1", "< Left: Natural, Right: Bool >-hole"},
	}

	for _, tc := range tests {
		if tc.annotation == "< Left: Natural, Right: Bool >-hole" {
			// The constructor's type is a function into the union.
			tc.annotation = "Natural -> < Left: Natural, Right: Bool >"
			tc.input = "Left"
		}
		inferred, err := Infer(mustParse(t, tc.input))
		if err != nil {
			t.Fatalf("Infer(%q): %v", tc.input, err)
		}
		annotation, errors := parser.ParseType(tc.annotation)
		if len(errors) > 0 {
			t.Fatalf("ParseType(%q): %v", tc.annotation, errors[0])
		}
		session := New()
		if err := session.subtype(inferred, annotation); err != nil {
			t.Errorf("inferred %s does not subsume %s: %v", inferred, annotation, err)
		}
	}
}

// TestExistsPolaritiesAtRowKinds covers both polarities of exists at the
// Fields and Alternatives kinds, mirroring the forall cases.
func TestExistsPolaritiesAtRowKinds(t *testing.T) {
	positive := []string{
		"{ x: 1 } : exists (r : Fields) . { x: Natural | r }",
		"{ x: 1, y: true } : exists (r : Fields) . { x: Natural | r }",
		"(Left 1) : exists (v : Alternatives) . < Left: Natural | v >",
		"(Left 1) : forall (v : Alternatives) . < Left: Natural | v >",
		"[1, true] : List (exists a . a)",
	}
	for _, input := range positive {
		if _, err := Infer(mustParse(t, input)); err != nil {
			t.Errorf("Infer(%q) failed: %v", input, err)
		}
	}

	negative := []struct {
		input string
		code  string
	}{
		// A rigid row from a forall cannot absorb an unexpected field.
		{"{ x: 1, y: true } : forall (r : Fields) . { x: Natural | r }", diagnostics.ErrT004},
		// A closed union without a Left alternative rejects the Left
		// constructor.
		{"(Left 1) : < Right: Bool >", diagnostics.ErrT005},
	}
	for _, tc := range negative {
		_, err := Infer(mustParse(t, tc.input))
		if err == nil {
			t.Errorf("Infer(%q) succeeded, want %s", tc.input, tc.code)
			continue
		}
		if err.Code != tc.code {
			t.Errorf("Infer(%q) failed with %s, want %s", tc.input, err.Code, tc.code)
		}
	}
}

// TestGeneralizationOrder verifies binders come out in left-to-right
// context order.
func TestGeneralizationOrder(t *testing.T) {
	// \x -> \y -> x has two independent unknowns; the argument of the
	// outer lambda was created first and must be quantified first.
	inferred := inferType(t, `\x -> \y -> x`)
	expected := "forall a . forall g . a -> g -> a"
	if inferred.String() != expected {
		t.Errorf("Infer = %q, want %q", inferred.String(), expected)
	}
}
