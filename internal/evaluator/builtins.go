package evaluator

import (
	"github.com/nilp0inter/grace/internal/config"
)

// builtinArity is the number of arguments each primitive needs before it
// computes. Builtins curry: an unsaturated application is itself a value.
var builtinArity = map[string]int{
	config.BuiltinListLength:  1,
	config.BuiltinListReverse: 1,
	config.BuiltinListFold:    3,
	config.BuiltinNaturalFold: 3,
	config.BuiltinNaturalEven: 1,
	config.BuiltinNaturalOdd:  1,
	config.BuiltinTextEqual:   2,
}

func (ev *Evaluator) applyBuiltin(b *Builtin, arg Object) Object {
	arity, ok := builtinArity[b.Name]
	if !ok {
		ev.fail("unknown builtin %q", b.Name)
	}

	args := make([]Object, 0, len(b.Args)+1)
	args = append(args, b.Args...)
	args = append(args, arg)
	if len(args) < arity {
		return &Builtin{Name: b.Name, Args: args}
	}

	// A neutral argument leaves the whole application stuck.
	for _, a := range args {
		if isNeutral(a) {
			stuck := Object(&Builtin{Name: b.Name})
			for _, a := range args {
				stuck = &NeutralApplication{Function: stuck, Argument: a}
			}
			return stuck
		}
	}

	switch b.Name {
	case config.BuiltinListLength:
		list := ev.listArg(b.Name, args[0])
		return &Natural{Value: uint64(len(list.Elements))}

	case config.BuiltinListReverse:
		list := ev.listArg(b.Name, args[0])
		elements := make([]Object, len(list.Elements))
		for i, e := range list.Elements {
			elements[len(list.Elements)-1-i] = e
		}
		return &List{Elements: elements}

	case config.BuiltinListFold:
		// Right fold: List/fold [x, y] f z = f x (f y z).
		list := ev.listArg(b.Name, args[0])
		step, zero := args[1], args[2]
		accumulator := zero
		for i := len(list.Elements) - 1; i >= 0; i-- {
			accumulator = ev.apply(ev.apply(step, list.Elements[i]), accumulator)
		}
		return accumulator

	case config.BuiltinNaturalFold:
		n := ev.naturalArg(b.Name, args[0])
		step, zero := args[1], args[2]
		accumulator := zero
		for i := uint64(0); i < n.Value; i++ {
			accumulator = ev.apply(step, accumulator)
		}
		return accumulator

	case config.BuiltinNaturalEven:
		n := ev.naturalArg(b.Name, args[0])
		return &Boolean{Value: n.Value%2 == 0}

	case config.BuiltinNaturalOdd:
		n := ev.naturalArg(b.Name, args[0])
		return &Boolean{Value: n.Value%2 == 1}

	case config.BuiltinTextEqual:
		left := ev.textArg(b.Name, args[0])
		right := ev.textArg(b.Name, args[1])
		return &Boolean{Value: left.Value == right.Value}
	}

	ev.fail("builtin %q has an arity entry but no implementation", b.Name)
	return nil
}

func (ev *Evaluator) listArg(name string, o Object) *List {
	list, ok := o.(*List)
	if !ok {
		ev.fail("%s applied to non-list %s", name, o.Inspect())
	}
	return list
}

func (ev *Evaluator) naturalArg(name string, o Object) *Natural {
	n, ok := o.(*Natural)
	if !ok {
		ev.fail("%s applied to non-natural %s", name, o.Inspect())
	}
	return n
}

func (ev *Evaluator) textArg(name string, o Object) *Text {
	text, ok := o.(*Text)
	if !ok {
		ev.fail("%s applied to non-text %s", name, o.Inspect())
	}
	return text
}
