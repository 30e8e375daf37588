package parser

import (
	"github.com/nilp0inter/grace/internal/pipeline"
)

// Processor is the parse stage: source text in, AST out.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	expr, errors := Parse(ctx.Source)
	ctx.AstRoot = expr
	for _, err := range errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}
	return ctx
}
