package parser

import (
	"testing"

	"github.com/nilp0inter/grace/internal/typesystem"
)

func parseType(t *testing.T, input string) typesystem.Type {
	t.Helper()
	parsed, errors := ParseType(input)
	if len(errors) > 0 {
		t.Fatalf("ParseType(%q) failed: %v", input, errors[0])
	}
	return parsed
}

func TestParseTypeShapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Natural", "Natural"},
		{"Bool -> Bool", "Bool -> Bool"},
		{"Bool -> Natural -> Text", "Bool -> Natural -> Text"},
		{"(Bool -> Bool) -> Natural", "(Bool -> Bool) -> Natural"},
		{"List Natural", "List Natural"},
		{"List (List Bool)", "List (List Bool)"},
		{"{}", "{}"},
		{"{ x: Natural, y: Text }", "{ x: Natural, y: Text }"},
		{"{ x: Natural | r }", "{ x: Natural | r }"},
		{"<>", "<>"},
		{"< Left: Natural, Right: Bool >", "< Left: Natural, Right: Bool >"},
		{"< Some: Natural | v >", "< Some: Natural | v >"},
		{"forall a . a -> a", "forall a . a -> a"},
		{"forall a b . a -> b", "forall a . forall b . a -> b"},
		{"forall (r : Fields) . { x: Natural | r }", "forall (r : Fields) . { x: Natural | r }"},
		{"forall (v : Alternatives) . < Left: Bool | v >", "forall (v : Alternatives) . < Left: Bool | v >"},
		{"exists a . a", "exists a . a"},
		{"List (exists a . a)", "List (exists a . a)"},
		{"forall a . List a -> Natural", "forall a . List a -> Natural"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := parseType(t, tc.input).String(); got != tc.expected {
				t.Errorf("ParseType(%q).String() = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestTypeRoundTrip feeds the printed form of structured types back through
// the parser; printing the reparse must reproduce the same text.
func TestTypeRoundTrip(t *testing.T) {
	types := []typesystem.Type{
		typesystem.TArrow{
			Input: typesystem.TList{Element: typesystem.NaturalType},
			Output: typesystem.TRecord{
				Fields: []typesystem.Field{{Label: "out", Type: typesystem.BoolType}},
				Tail:   typesystem.EmptyRow{},
			},
		},
		typesystem.Forall{
			Name:   "r",
			Domain: typesystem.DomainFields,
			Body: typesystem.TArrow{
				Input: typesystem.TRecord{
					Fields: []typesystem.Field{{Label: "x", Type: typesystem.NaturalType}},
					Tail:   typesystem.VarRow{Name: "r"},
				},
				Output: typesystem.NaturalType,
			},
		},
		typesystem.Forall{
			Name:   "a",
			Domain: typesystem.DomainType,
			Body: typesystem.Forall{
				Name:   "v",
				Domain: typesystem.DomainAlternatives,
				Body: typesystem.TArrow{
					Input: typesystem.TVar{Name: "a"},
					Output: typesystem.TUnion{
						Alternatives: []typesystem.Field{{Label: "Some", Type: typesystem.TVar{Name: "a"}}},
						Tail:         typesystem.VarVariant{Name: "v"},
					},
				},
			},
		},
	}

	for _, original := range types {
		printed := original.String()
		reparsed := parseType(t, printed)
		if reparsed.String() != printed {
			t.Errorf("round trip changed %q into %q", printed, reparsed.String())
		}
	}
}

func TestParseTypeErrors(t *testing.T) {
	tests := []string{
		"Unknown",
		"List",
		"{ x Natural }",
		"forall . a",
		"forall (a : Wrong) . a",
		"< Left: Bool",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, errors := ParseType(input); len(errors) == 0 {
				t.Errorf("ParseType(%q) succeeded, want error", input)
			}
		})
	}
}
