package evaluator

import (
	"testing"
)

func TestDecodeYAML(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectedType  string
	}{
		{"scalar_natural", "42", "42", "Natural"},
		{"scalar_bool", "true", "true", "Bool"},
		{"scalar_text", `"hello"`, `"hello"`, "Text"},
		{"sequence", "[1, 2, 3]", "[1, 2, 3]", "List Natural"},
		{
			"mapping",
			"name: grace\ncount: 2\n",
			`{ count: 2, name: "grace" }`,
			"{ count: Natural, name: Text }",
		},
		{
			"nested",
			"xs:\n  - a: 1\n  - a: 2\n",
			"{ xs: [{ a: 1 }, { a: 2 }] }",
			"{ xs: List { a: Natural } }",
		},
		{
			"heterogeneous_sequence",
			"[1, true]",
			"[1, true]",
			"List (exists a . a)",
		},
		{"empty_sequence", "[]", "[]", "List (exists a . a)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, liftedType, err := DecodeYAML([]byte(tc.input))
			if err != nil {
				t.Fatalf("DecodeYAML(%q): %v", tc.input, err)
			}
			if value.Inspect() != tc.expectedValue {
				t.Errorf("value = %q, want %q", value.Inspect(), tc.expectedValue)
			}
			if liftedType.String() != tc.expectedType {
				t.Errorf("type = %q, want %q", liftedType.String(), tc.expectedType)
			}
		})
	}
}

func TestDecodeYAMLErrors(t *testing.T) {
	for _, input := range []string{"-1", "null", "{k: [1, null]}", ": : :"} {
		if _, _, err := DecodeYAML([]byte(input)); err == nil {
			t.Errorf("DecodeYAML(%q) succeeded, want error", input)
		}
	}
}
