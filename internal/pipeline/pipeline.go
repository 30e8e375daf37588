package pipeline

import (
	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/typesystem"
)

// Value is the part of a runtime value the pipeline needs to carry. The
// evaluator's Object satisfies it; naming only this much here keeps the
// pipeline free of a dependency cycle with the evaluator.
type Value interface {
	Inspect() string
}

// PipelineContext is the state threaded through the stages: source text in,
// AST, inferred type and value out, diagnostics accumulated along the way.
type PipelineContext struct {
	FilePath string
	Source   string

	// Annotation optionally wraps the whole program before inference, the
	// way an embedded import with a surface annotation is threaded in.
	Annotation typesystem.Type

	AstRoot      ast.Expression
	InferredType typesystem.Type
	Value        Value

	Errors []*diagnostics.DiagnosticError
}

// Failed reports whether any stage recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// Processor is one stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages run unconditionally and decide for
// themselves whether to skip on upstream errors, so every stage gets a
// chance to attach diagnostics.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
