package config

import "strings"

const SourceFileExt = ".grace"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".grace"}

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name, if any.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// DebugEnvVar, when set in the environment, enables context dumps from the
// inference engine on stderr.
const DebugEnvVar = "GRACE_DEBUG"

// Builtin names. The lexer recognizes NAMESPACE/name identifiers and the
// inference engine and evaluator both key off these constants.
const (
	BuiltinListLength  = "List/length"
	BuiltinListFold    = "List/fold"
	BuiltinListReverse = "List/reverse"
	BuiltinNaturalFold = "Natural/fold"
	BuiltinNaturalEven = "Natural/even"
	BuiltinNaturalOdd  = "Natural/odd"
	BuiltinTextEqual   = "Text/equal"
)
