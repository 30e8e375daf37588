package infer

import (
	"github.com/nilp0inter/grace/internal/ast"
	"github.com/nilp0inter/grace/internal/pipeline"
)

// Processor is the inference stage. When the context carries an outer
// annotation (an imported expression with a surface type) the program is
// wrapped in an Annotation node first, exactly as a source-level `e : T`
// would be.
type Processor struct{}

func (ip *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}

	root := ctx.AstRoot
	if ctx.Annotation != nil {
		root = &ast.Annotation{
			Token:      root.GetToken(),
			Expression: root,
			Type:       ctx.Annotation,
		}
	}

	inferred, err := Infer(root)
	if err != nil {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.InferredType = inferred
	return ctx
}
