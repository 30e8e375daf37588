package evaluator

import (
	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/pipeline"
	"github.com/nilp0inter/grace/internal/token"
)

// Processor is the evaluation stage. It only runs after inference
// succeeded, so an evaluator panic here is an interpreter bug and is
// reported as an internal error rather than crashing the process.
type Processor struct{}

func (ep *Processor) Process(ctx *pipeline.PipelineContext) (out *pipeline.PipelineContext) {
	out = ctx
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}

	defer func() {
		if r := recover(); r != nil {
			if rp, ok := r.(runtimePanic); ok {
				ctx.Errors = append(ctx.Errors, diagnostics.NewError(
					diagnostics.ErrR001,
					token.Token{},
					"internal error: %s", rp.message,
				))
				return
			}
			panic(r)
		}
	}()

	// Evaluation ignores annotations, so the un-annotated root is used even
	// when inference checked against ctx.Annotation.
	ctx.Value = New().Eval(ctx.AstRoot, NewEnvironment())
	return ctx
}
