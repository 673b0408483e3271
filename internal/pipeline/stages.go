package pipeline

import "github.com/relground/ground/internal/shuttle"

// GroundingStage runs the shuttle over the context's current result,
// replacing it with the grounded from on success and recording a
// diagnostic (without aborting the pipeline) on failure — matching
// Pipeline.Run's "continue on errors to collect diagnostics from all
// stages" contract.
type GroundingStage struct{}

func (GroundingStage) Process(ctx *PipelineContext) *PipelineContext {
	out, err := shuttle.Run(ctx.Result, ctx.Registry, ctx.Options, ctx.Env)
	if err != nil {
		ctx.fail(err)
		return ctx
	}
	ctx.Result = out
	ctx.Grounded = true
	return ctx
}
