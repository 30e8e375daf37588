// Package grace interprets a small functional configuration language whose
// type system infers principal types for open records and open unions. The
// package wires the internal pipeline together: TypeOf for inference alone,
// Evaluate for normalization of already-checked expressions, Interpret for
// both.
package grace

import (
	"errors"

	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/evaluator"
	"github.com/nilp0inter/grace/internal/infer"
	"github.com/nilp0inter/grace/internal/parser"
	"github.com/nilp0inter/grace/internal/pipeline"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// TypeOf infers the principal type of expr under an empty context.
func TypeOf(expr ast.Expression) (typesystem.Type, error) {
	t, err := infer.Infer(expr)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Evaluate normalizes expr under env, which may be nil for an empty
// environment. Evaluate assumes expr already type-checked: on an ill-typed
// tree it panics rather than returning an error.
func Evaluate(env *evaluator.Environment, expr ast.Expression) evaluator.Object {
	if env == nil {
		env = evaluator.NewEnvironment()
	}
	return evaluator.New().Eval(expr, env)
}

// Interpret infers and evaluates expr. A non-nil annotation wraps the
// expression before inference, the way the import layer threads a surface
// annotation into an imported file; evaluation always runs on the
// un-annotated tree.
func Interpret(annotation typesystem.Type, expr ast.Expression) (typesystem.Type, evaluator.Object, error) {
	if annotation != nil {
		expr = &ast.Annotation{Token: expr.GetToken(), Expression: expr, Type: annotation}
	}
	inferred, err := TypeOf(expr)
	if err != nil {
		return nil, nil, err
	}
	if inner, ok := expr.(*ast.Annotation); ok && annotation != nil {
		expr = inner.Expression
	}
	return inferred, Evaluate(nil, expr), nil
}

// InterpretSource parses, infers and evaluates a source string: the whole
// pipeline in one call. The returned error is the first diagnostic.
func InterpretSource(source string) (typesystem.Type, evaluator.Object, error) {
	ctx := &pipeline.PipelineContext{Source: source}
	ctx = pipeline.New(
		&parser.Processor{},
		&infer.Processor{},
		&evaluator.Processor{},
	).Run(ctx)
	if ctx.Failed() {
		return nil, nil, ctx.Errors[0]
	}
	value, ok := ctx.Value.(evaluator.Object)
	if !ok {
		return nil, nil, errors.New("pipeline produced no value")
	}
	return ctx.InferredType, value, nil
}

// Diagnostic unwraps a pipeline error back into its diagnostic form, if it
// has one.
func Diagnostic(err error) (*diagnostics.DiagnosticError, bool) {
	var d *diagnostics.DiagnosticError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
