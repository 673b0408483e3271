package pipeline

import (
	"github.com/relground/ground/internal/diagnostics"
	"github.com/relground/ground/internal/env"
	"github.com/relground/ground/internal/expand"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/registry"
)

// PipelineContext threads a single declaration's from expression through
// the pipeline's stages, accumulating diagnostics along the way rather
// than aborting at the first one — the host (cmd/groundctl, an eventual
// LSP) wants every stage's errors, not just the first.
type PipelineContext struct {
	Source      ir.From
	Result      ir.From
	Registry    *registry.Registry
	Options     expand.Options
	Env         *env.Env // the declaration's lexical environment (spec §6), nilable
	Diagnostics []*diagnostics.Error
	Grounded    bool
}

// NewPipelineContext seeds a context from a raw declaration body and the
// function registry the shuttle/expander consult for inversion.
func NewPipelineContext(source ir.From, reg *registry.Registry) *PipelineContext {
	return &PipelineContext{
		Source:   source,
		Result:   source,
		Registry: reg,
		Options:  expand.DefaultOptions(),
	}
}

func (c *PipelineContext) fail(err error) {
	if de, ok := err.(*diagnostics.Error); ok {
		c.Diagnostics = append(c.Diagnostics, de)
		return
	}
	c.Diagnostics = append(c.Diagnostics, diagnostics.New(diagnostics.InvariantViolation, diagnostics.Pos{}, "%v", err))
}

// Processor is one pipeline stage; it receives the context produced by
// the previous stage and returns the context for the next one.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}
