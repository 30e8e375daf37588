package imports

import (
	"os"

	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/parser"
	"github.com/nilp0inter/grace/internal/token"
	"github.com/nilp0inter/grace/internal/utils"
)

// Resolver loads source files and splices imported expressions into the
// tree, replacing every embedded path node before the result reaches the
// type checker. Paths compose directory-relative: an import inside
// ./lib/x.grace resolves against ./lib.
type Resolver struct {
	// active tracks files on the current resolution path for cycle
	// detection.
	active map[string]bool
}

func NewResolver() *Resolver {
	return &Resolver{active: make(map[string]bool)}
}

// ResolveFile parses path and resolves its imports recursively.
func (r *Resolver) ResolveFile(path string) (ast.Expression, *diagnostics.DiagnosticError) {
	if r.active[path] {
		return nil, diagnostics.NewError(diagnostics.ErrI002, token.Token{},
			"cyclic import of %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrI001, token.Token{},
			"cannot read import %q: %v", path, err)
	}

	expr, parseErrors := parser.Parse(string(content))
	if len(parseErrors) > 0 {
		first := parseErrors[0]
		if first.File == "" {
			first.File = path
		}
		return nil, first
	}

	r.active[path] = true
	resolved, resolveErr := r.resolve(expr, utils.GetModuleDir(path))
	delete(r.active, path)
	if resolveErr != nil {
		if resolveErr.File == "" {
			resolveErr.File = path
		}
		return nil, resolveErr
	}
	return resolved, nil
}

// Resolve replaces embedded paths in an already-parsed expression, with
// paths taken relative to baseDir.
func (r *Resolver) Resolve(expr ast.Expression, baseDir string) (ast.Expression, *diagnostics.DiagnosticError) {
	return r.resolve(expr, baseDir)
}

// resolve rebuilds the tree bottom-up. A surface annotation on an import
// (`./x.grace : T`) is already an Annotation node wrapping the embed, so
// replacing the embed in place threads the annotation through untouched.
func (r *Resolver) resolve(expr ast.Expression, baseDir string) (ast.Expression, *diagnostics.DiagnosticError) {
	switch e := expr.(type) {
	case *ast.Embed:
		resolved, err := r.ResolveFile(utils.ResolveImportPath(baseDir, e.Path))
		if err != nil {
			if err.Token.Line == 0 {
				err.Token = e.Token
			}
			return nil, err
		}
		return resolved, nil

	case *ast.Lambda:
		body, err := r.resolve(e.Body, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Token: e.Token, Parameter: e.Parameter, Body: body}, nil

	case *ast.Application:
		fn, err := r.resolve(e.Function, baseDir)
		if err != nil {
			return nil, err
		}
		arg, err := r.resolve(e.Argument, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.Application{Function: fn, Argument: arg}, nil

	case *ast.Let:
		bindings := make([]*ast.Binding, len(e.Bindings))
		for i, b := range e.Bindings {
			value, err := r.resolve(b.Value, baseDir)
			if err != nil {
				return nil, err
			}
			bindings[i] = &ast.Binding{Token: b.Token, Name: b.Name, Annotation: b.Annotation, Value: value}
		}
		body, err := r.resolve(e.Body, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Token: e.Token, Bindings: bindings, Body: body}, nil

	case *ast.Annotation:
		inner, err := r.resolve(e.Expression, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.Annotation{Token: e.Token, Expression: inner, Type: e.Type}, nil

	case *ast.ListLiteral:
		elements := make([]ast.Expression, len(e.Elements))
		for i, element := range e.Elements {
			resolved, err := r.resolve(element, baseDir)
			if err != nil {
				return nil, err
			}
			elements[i] = resolved
		}
		return &ast.ListLiteral{Token: e.Token, Elements: elements}, nil

	case *ast.RecordLiteral:
		fields := make([]ast.RecordField, len(e.Fields))
		for i, field := range e.Fields {
			value, err := r.resolve(field.Value, baseDir)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.RecordField{Token: field.Token, Label: field.Label, Value: value}
		}
		return &ast.RecordLiteral{Token: e.Token, Fields: fields}, nil

	case *ast.Projection:
		record, err := r.resolve(e.Record, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.Projection{Token: e.Token, Record: record, Label: e.Label}, nil

	case *ast.Merge:
		handlers, err := r.resolve(e.Handlers, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.Merge{Token: e.Token, Handlers: handlers}, nil

	case *ast.If:
		predicate, err := r.resolve(e.Predicate, baseDir)
		if err != nil {
			return nil, err
		}
		then, err := r.resolve(e.Then, baseDir)
		if err != nil {
			return nil, err
		}
		alternative, err := r.resolve(e.Else, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.If{Token: e.Token, Predicate: predicate, Then: then, Else: alternative}, nil

	case *ast.Operator:
		left, err := r.resolve(e.Left, baseDir)
		if err != nil {
			return nil, err
		}
		right, err := r.resolve(e.Right, baseDir)
		if err != nil {
			return nil, err
		}
		return &ast.Operator{Token: e.Token, Op: e.Op, Left: left, Right: right}, nil
	}

	// Leaves: variables, literals, alternatives, builtins.
	return expr, nil
}
