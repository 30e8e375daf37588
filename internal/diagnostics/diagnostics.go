package diagnostics

import (
	"fmt"

	"github.com/nilp0inter/grace/internal/token"
)

// Error codes, grouped by pipeline stage. Tests distinguish failure
// categories by code, never by message text.
const (
	// Lexer
	ErrL001 = "L001" // illegal character
	ErrL002 = "L002" // unterminated text literal

	// Parser
	ErrP001 = "P001" // unexpected token
	ErrP002 = "P002" // malformed type
	ErrP003 = "P003" // recursion depth limit exceeded

	// Type inference
	ErrT001 = "T001" // unbound variable
	ErrT002 = "T002" // not a function
	ErrT003 = "T003" // not a subtype
	ErrT004 = "T004" // missing record field
	ErrT005 = "T005" // missing union alternative
	ErrT006 = "T006" // occurs check (infinite type)
	ErrT007 = "T007" // annotation not well formed
	ErrT008 = "T008" // existential solved out of scope
	ErrT009 = "T009" // merge on a non-handler record

	// Imports
	ErrI001 = "I001" // unreadable import
	ErrI002 = "I002" // cyclic import

	// Runtime. Evaluation only runs after inference succeeded, so any R001
	// indicates a bug in the interpreter itself rather than in user code.
	ErrR001 = "R001"
)

// DiagnosticError is a located, coded error. File is filled in by whichever
// pipeline stage knows the path, so constructors may leave it empty.
type DiagnosticError struct {
	Code    string
	Token   token.Token
	File    string
	Message string
}

func (e *DiagnosticError) Error() string {
	if e.Token.Line > 0 {
		if e.File != "" {
			return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Token.Line, e.Token.Column, e.Code, e.Message)
		}
		return fmt.Sprintf("%d:%d: %s: %s", e.Token.Line, e.Token.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a DiagnosticError at the given token.
func NewError(code string, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Token:   tok,
		Message: fmt.Sprintf(format, args...),
	}
}
