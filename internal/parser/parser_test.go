package parser

import (
	"testing"

	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/diagnostics"
)

func parseOne(t *testing.T, input string) ast.Expression {
	t.Helper()
	expr, errors := Parse(input)
	if len(errors) > 0 {
		t.Fatalf("Parse(%q) failed: %v", input, errors[0])
	}
	if expr == nil {
		t.Fatalf("Parse(%q) returned nil without errors", input)
	}
	return expr
}

func TestParseLambda(t *testing.T) {
	expr := parseOne(t, `\x -> x`)
	lambda, ok := expr.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected *ast.Lambda, got %T", expr)
	}
	if lambda.Parameter != "x" {
		t.Errorf("parameter = %q, want %q", lambda.Parameter, "x")
	}
	if _, ok := lambda.Body.(*ast.Variable); !ok {
		t.Errorf("body = %T, want *ast.Variable", lambda.Body)
	}
}

func TestParseApplicationAssociation(t *testing.T) {
	// f x y parses as (f x) y.
	expr := parseOne(t, "f x y")
	outer, ok := expr.(*ast.Application)
	if !ok {
		t.Fatalf("expected application, got %T", expr)
	}
	inner, ok := outer.Function.(*ast.Application)
	if !ok {
		t.Fatalf("expected nested application on the left, got %T", outer.Function)
	}
	if v, ok := inner.Function.(*ast.Variable); !ok || v.Name != "f" {
		t.Errorf("head = %v, want variable f", inner.Function)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3).
	expr := parseOne(t, "1 + 2 * 3")
	plus, ok := expr.(*ast.Operator)
	if !ok || plus.Op != "+" {
		t.Fatalf("top = %T, want + operator", expr)
	}
	times, ok := plus.Right.(*ast.Operator)
	if !ok || times.Op != "*" {
		t.Fatalf("right = %T, want * operator", plus.Right)
	}
}

func TestParseLetBindings(t *testing.T) {
	expr := parseOne(t, "let x = 1 let y : Natural = 2 in x + y")
	let, ok := expr.(*ast.Let)
	if !ok {
		t.Fatalf("expected let, got %T", expr)
	}
	if len(let.Bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(let.Bindings))
	}
	if let.Bindings[0].Annotation != nil {
		t.Errorf("binding x should be unannotated")
	}
	if let.Bindings[1].Annotation == nil {
		t.Errorf("binding y should carry its annotation")
	}
}

func TestParseVariableIndex(t *testing.T) {
	expr := parseOne(t, "x@2")
	v, ok := expr.(*ast.Variable)
	if !ok {
		t.Fatalf("expected variable, got %T", expr)
	}
	if v.Index != 2 {
		t.Errorf("index = %d, want 2", v.Index)
	}
}

func TestParseRecordAndProjection(t *testing.T) {
	expr := parseOne(t, "{ a: 1, b: true }.a")
	projection, ok := expr.(*ast.Projection)
	if !ok {
		t.Fatalf("expected projection, got %T", expr)
	}
	record, ok := projection.Record.(*ast.RecordLiteral)
	if !ok {
		t.Fatalf("expected record literal, got %T", projection.Record)
	}
	if len(record.Fields) != 2 || record.Fields[0].Label != "a" || record.Fields[1].Label != "b" {
		t.Errorf("fields parsed wrong: %+v", record.Fields)
	}
}

func TestParseMergeApplication(t *testing.T) {
	// merge binds one operand; the union argument comes via application.
	expr := parseOne(t, "merge handlers value")
	app, ok := expr.(*ast.Application)
	if !ok {
		t.Fatalf("expected application, got %T", expr)
	}
	if _, ok := app.Function.(*ast.Merge); !ok {
		t.Fatalf("expected merge in function position, got %T", app.Function)
	}
}

func TestParseAnnotationBindsLoosest(t *testing.T) {
	expr := parseOne(t, `(\x -> x) 1 : Natural`)
	annotation, ok := expr.(*ast.Annotation)
	if !ok {
		t.Fatalf("expected annotation at the top, got %T", expr)
	}
	if _, ok := annotation.Expression.(*ast.Application); !ok {
		t.Errorf("annotated expression = %T, want application", annotation.Expression)
	}
	if annotation.Type.String() != "Natural" {
		t.Errorf("annotation type = %s, want Natural", annotation.Type)
	}
}

func TestParseImportPath(t *testing.T) {
	expr := parseOne(t, "./lib/util.grace : Natural")
	annotation, ok := expr.(*ast.Annotation)
	if !ok {
		t.Fatalf("expected annotation, got %T", expr)
	}
	embed, ok := annotation.Expression.(*ast.Embed)
	if !ok {
		t.Fatalf("expected embed, got %T", annotation.Expression)
	}
	if embed.Path != "./lib/util.grace" {
		t.Errorf("path = %q", embed.Path)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"trailing_tokens", "1 2 )"},
		{"missing_arrow", `\x x`},
		{"unterminated_list", "[1, 2"},
		{"unterminated_record", "{ a: 1"},
		{"let_without_in", "let x = 1"},
		{"record_missing_colon", "{ a 1 }"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, errors := Parse(tc.input)
			if len(errors) == 0 {
				t.Fatalf("Parse(%q) succeeded, want error", tc.input)
			}
			code := errors[0].Code
			if code != diagnostics.ErrP001 && code != diagnostics.ErrP002 && code != diagnostics.ErrP003 {
				t.Errorf("error code = %s, want a parse error", code)
			}
		})
	}
}
