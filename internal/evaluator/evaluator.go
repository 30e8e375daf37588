package evaluator

import (
	"fmt"

	"github.com/nilp0inter/grace/internal/ast"
)

// Evaluator normalizes well-typed expressions to values, call by value.
// Inference runs first, so an expression that cannot be reduced here is an
// interpreter bug: Eval panics with a runtimePanic that the pipeline
// converts into an internal-error diagnostic.
type Evaluator struct{}

func New() *Evaluator {
	return &Evaluator{}
}

// runtimePanic distinguishes deliberate evaluator panics from everything
// else when recovering.
type runtimePanic struct {
	message string
}

func (r runtimePanic) Error() string { return r.message }

func (ev *Evaluator) fail(format string, args ...interface{}) {
	panic(runtimePanic{message: fmt.Sprintf(format, args...)})
}

// Eval evaluates expr under env.
func (ev *Evaluator) Eval(expr ast.Expression, env *Environment) Object {
	switch e := expr.(type) {
	case *ast.Variable:
		if value, ok := env.Get(e.Name, e.Index); ok {
			return value
		}
		// A free variable is a stuck term, not an error: the caller may
		// be normalizing an open expression on purpose.
		return &NeutralVariable{Name: e.Name, Index: e.Index}

	case *ast.Lambda:
		return &Closure{Env: env, Parameter: e.Parameter, Body: e.Body}

	case *ast.Application:
		fn := ev.Eval(e.Function, env)
		arg := ev.Eval(e.Argument, env)
		return ev.apply(fn, arg)

	case *ast.Let:
		for _, b := range e.Bindings {
			env = env.Extend(b.Name, ev.Eval(b.Value, env))
		}
		return ev.Eval(e.Body, env)

	case *ast.Annotation:
		return ev.Eval(e.Expression, env)

	case *ast.BoolLiteral:
		return &Boolean{Value: e.Value}

	case *ast.NaturalLiteral:
		return &Natural{Value: e.Value}

	case *ast.TextLiteral:
		return &Text{Value: e.Value}

	case *ast.ListLiteral:
		elements := make([]Object, len(e.Elements))
		for i, element := range e.Elements {
			elements[i] = ev.Eval(element, env)
		}
		return &List{Elements: elements}

	case *ast.RecordLiteral:
		entries := make([]RecordEntry, len(e.Fields))
		for i, field := range e.Fields {
			entries[i] = RecordEntry{Label: field.Label, Value: ev.Eval(field.Value, env)}
		}
		return &Record{Entries: entries}

	case *ast.Projection:
		record := ev.Eval(e.Record, env)
		if isNeutral(record) {
			return &NeutralApplication{Function: &NeutralVariable{Name: "." + e.Label}, Argument: record}
		}
		r, ok := record.(*Record)
		if !ok {
			ev.fail("projection .%s on a non-record %s", e.Label, record.Inspect())
		}
		value, ok := r.Get(e.Label)
		if !ok {
			ev.fail("record %s has no field %q", record.Inspect(), e.Label)
		}
		return value

	case *ast.Alternative:
		return &Constructor{Tag: e.Name}

	case *ast.Merge:
		handlers := ev.Eval(e.Handlers, env)
		record, ok := handlers.(*Record)
		if !ok {
			ev.fail("merge applied to a non-record %s", handlers.Inspect())
		}
		return &Merge{Handlers: record}

	case *ast.If:
		predicate := ev.Eval(e.Predicate, env)
		cond, ok := predicate.(*Boolean)
		if !ok {
			ev.fail("if predicate evaluated to %s, not a boolean", predicate.Inspect())
		}
		if cond.Value {
			return ev.Eval(e.Then, env)
		}
		return ev.Eval(e.Else, env)

	case *ast.Operator:
		return ev.evalOperator(e, env)

	case *ast.Builtin:
		return &Builtin{Name: e.Name}

	case *ast.Embed:
		ev.fail("unresolved import %q reached the evaluator", e.Path)
	}

	ev.fail("cannot evaluate %T", expr)
	return nil
}

// apply forces one application step.
func (ev *Evaluator) apply(fn, arg Object) Object {
	switch f := fn.(type) {
	case *Closure:
		return ev.Eval(f.Body, f.Env.Extend(f.Parameter, arg))
	case *Constructor:
		return &Tagged{Tag: f.Tag, Payload: arg}
	case *Merge:
		if isNeutral(arg) {
			return &NeutralApplication{Function: fn, Argument: arg}
		}
		tagged, ok := arg.(*Tagged)
		if !ok {
			ev.fail("merge applied to a non-union value %s", arg.Inspect())
		}
		handler, ok := f.Handlers.Get(tagged.Tag)
		if !ok {
			ev.fail("merge has no handler for tag %q", tagged.Tag)
		}
		return ev.apply(handler, tagged.Payload)
	case *Builtin:
		return ev.applyBuiltin(f, arg)
	case *NeutralVariable, *NeutralApplication:
		return &NeutralApplication{Function: fn, Argument: arg}
	}
	ev.fail("cannot apply a value of kind %s", fn.Type())
	return nil
}

func (ev *Evaluator) evalOperator(e *ast.Operator, env *Environment) Object {
	// && and || short-circuit; everything else is strict.
	switch e.Op {
	case "&&":
		left := ev.boolOperand(e.Op, ev.Eval(e.Left, env))
		if !left {
			return &Boolean{Value: false}
		}
		return &Boolean{Value: ev.boolOperand(e.Op, ev.Eval(e.Right, env))}
	case "||":
		left := ev.boolOperand(e.Op, ev.Eval(e.Left, env))
		if left {
			return &Boolean{Value: true}
		}
		return &Boolean{Value: ev.boolOperand(e.Op, ev.Eval(e.Right, env))}
	}

	left := ev.Eval(e.Left, env)
	right := ev.Eval(e.Right, env)

	switch e.Op {
	case "+":
		return &Natural{Value: ev.naturalOperand(e.Op, left) + ev.naturalOperand(e.Op, right)}
	case "*":
		return &Natural{Value: ev.naturalOperand(e.Op, left) * ev.naturalOperand(e.Op, right)}
	case "++":
		switch l := left.(type) {
		case *Text:
			r, ok := right.(*Text)
			if !ok {
				ev.fail("++ on mismatched operands %s and %s", left.Inspect(), right.Inspect())
			}
			return &Text{Value: l.Value + r.Value}
		case *List:
			r, ok := right.(*List)
			if !ok {
				ev.fail("++ on mismatched operands %s and %s", left.Inspect(), right.Inspect())
			}
			elements := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elements = append(elements, l.Elements...)
			elements = append(elements, r.Elements...)
			return &List{Elements: elements}
		}
		ev.fail("++ on %s", left.Inspect())
	}
	ev.fail("unknown operator %q", e.Op)
	return nil
}

func (ev *Evaluator) boolOperand(op string, o Object) bool {
	b, ok := o.(*Boolean)
	if !ok {
		ev.fail("%s applied to non-boolean %s", op, o.Inspect())
	}
	return b.Value
}

func (ev *Evaluator) naturalOperand(op string, o Object) uint64 {
	n, ok := o.(*Natural)
	if !ok {
		ev.fail("%s applied to non-natural %s", op, o.Inspect())
	}
	return n.Value
}
