package evaluator

import (
	"github.com/benbjohnson/immutable"
)

var emptyBindings = immutable.NewList()

// binding is one (name, value) pair.
type binding struct {
	name  string
	value Object
}

// Environment is a persistent list of bindings. Extending never copies:
// closures capture the environment at their definition site and share
// structure with every later extension.
type Environment struct {
	bindings *immutable.List
}

func NewEnvironment() *Environment {
	return &Environment{bindings: emptyBindings}
}

// Extend returns a new environment with one more binding; the receiver is
// unchanged.
func (e *Environment) Extend(name string, value Object) *Environment {
	return &Environment{bindings: e.bindings.Append(binding{name: name, value: value})}
}

// Get resolves name, skipping index shadowed bindings of the same name.
// The scan runs newest to oldest, so index 0 is the innermost binding.
func (e *Environment) Get(name string, index int) (Object, bool) {
	for i := e.bindings.Len() - 1; i >= 0; i-- {
		b := e.bindings.Get(i).(binding)
		if b.name != name {
			continue
		}
		if index == 0 {
			return b.value, true
		}
		index--
	}
	return nil, false
}

// Len reports the number of bindings, shadowed ones included.
func (e *Environment) Len() int {
	return e.bindings.Len()
}
