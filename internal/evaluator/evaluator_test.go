package evaluator

import (
	"testing"

	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/parser"
)

func evalSource(t *testing.T, input string) Object {
	t.Helper()
	expr, errors := parser.Parse(input)
	if len(errors) > 0 {
		t.Fatalf("parse %q: %v", input, errors[0])
	}
	return New().Eval(expr, NewEnvironment())
}

func TestEvalScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"natural", "42", "42"},
		{"bool", "true", "true"},
		{"text", `"hi"`, `"hi"`},
		{"identity_applied", `(\x -> x) 1`, "1"},
		{"projection", `{ a: 1, b: "hi" }.a`, "1"},
		{"list", "[1, 2, 3]", "[1, 2, 3]"},
		{"if_true", "if true then 1 else 2", "1"},
		{"if_false", "if false then 1 else 2", "2"},
		{"let_chain", `let id = \x -> x in id id 5`, "5"},
		{"let_shadowing", "let x = 1 let x = 2 in x", "2"},
		{"let_shadow_index", "let x = 1 let x = 2 in x@1", "1"},
		{"arithmetic", "1 + 2 * 3", "7"},
		{"text_append", `"foo" ++ "bar"`, `"foobar"`},
		{"list_append", "[1, 2] ++ [3]", "[1, 2, 3]"},
		{"and_or", "true && false || true", "true"},
		{"tagged", "Left 1", "Left 1"},
		{"merge_dispatch", `merge { Left: \n -> n + 1, Right: \b -> 0 } (Left 1)`, "2"},
		{"merge_other_arm", `merge { Left: \n -> n + 1, Right: \b -> 0 } (Right true)`, "0"},
		{"record_value", `{ a: 1 + 1, b: "x" }`, `{ a: 2, b: "x" }`},
		{"annotation_is_transparent", "(1 : Natural) + 1", "2"},
		{"builtin_length", "List/length [1, 2, 3]", "3"},
		{"builtin_reverse", "List/reverse [1, 2, 3]", "[3, 2, 1]"},
		{"builtin_fold_right", `List/fold [1, 2, 3] (\x -> \acc -> [x] ++ acc) []`, "[1, 2, 3]"},
		{"builtin_natural_fold", `Natural/fold 3 (\n -> n + 2) 1`, "7"},
		{"builtin_even", "Natural/even 4", "true"},
		{"builtin_odd", "Natural/odd 4", "false"},
		{"builtin_text_equal", `Text/equal "a" "a"`, "true"},
		{"partial_builtin", "List/fold [1]", "List/fold"},
		{"nested_closure_env", `let y = 10 in (\x -> x + y) 5`, "15"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := evalSource(t, tc.input).Inspect(); got != tc.expected {
				t.Errorf("Eval(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestClosureCapturesDefinitionEnvironment: the environment is persistent,
// so later bindings must not leak into earlier closures.
func TestClosureCapturesDefinitionEnvironment(t *testing.T) {
	got := evalSource(t, `let y = 1 let f = \x -> x + y let y = 100 in f 0`)
	if got.Inspect() != "1" {
		t.Errorf("closure saw the wrong y: %s", got.Inspect())
	}
}

// TestFreeVariableIsNeutral: normalizing an open term gets stuck rather
// than failing.
func TestFreeVariableIsNeutral(t *testing.T) {
	got := evalSource(t, "y")
	if got.Type() != NEUTRAL_OBJ {
		t.Fatalf("free variable evaluated to %s, want neutral", got.Type())
	}
	if got.Inspect() != "y" {
		t.Errorf("neutral inspect = %q", got.Inspect())
	}
}

// TestBuiltinOnNeutralSticks: a builtin applied to a neutral argument
// produces a neutral application, not a crash.
func TestBuiltinOnNeutralSticks(t *testing.T) {
	got := evalSource(t, "List/length xs")
	if got.Type() != NEUTRAL_OBJ {
		t.Fatalf("builtin on neutral evaluated to %s, want neutral", got.Type())
	}
}

// TestShortCircuit: && must not force its right operand when the left
// already decides, and || dually. The right operand here would panic if
// forced, because merge has no handler for the tag.
func TestShortCircuit(t *testing.T) {
	crash := ` (merge {} (Left 1))`
	if got := evalSource(t, "false &&"+crash); got.Inspect() != "false" {
		t.Errorf("&& forced its right operand: %s", got.Inspect())
	}
	if got := evalSource(t, "true ||"+crash); got.Inspect() != "true" {
		t.Errorf("|| forced its right operand: %s", got.Inspect())
	}
}

// TestEvalPanicsOnIllTyped: evaluation relies on inference having run; an
// ill-typed tree is an interpreter bug and must panic, not limp on.
func TestEvalPanicsOnIllTyped(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("projection on a natural did not panic")
		}
	}()
	New().Eval(&ast.Projection{
		Record: &ast.NaturalLiteral{Value: 1},
		Label:  "x",
	}, NewEnvironment())
}

// TestEnvironmentSharing: extending an environment never mutates the
// original.
func TestEnvironmentSharing(t *testing.T) {
	base := NewEnvironment().Extend("x", &Natural{Value: 1})
	extended := base.Extend("x", &Natural{Value: 2})

	if v, _ := base.Get("x", 0); v.Inspect() != "1" {
		t.Errorf("base environment mutated: %s", v.Inspect())
	}
	if v, _ := extended.Get("x", 0); v.Inspect() != "2" {
		t.Errorf("extension not visible: %s", v.Inspect())
	}
	if v, _ := extended.Get("x", 1); v.Inspect() != "1" {
		t.Errorf("shadowed binding lost: %s", v.Inspect())
	}
}
