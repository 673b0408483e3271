package main

import "github.com/relground/ground/internal/pipeline"

// printResult renders the grounded from, tinting the whole printed query
// green when colorize is set — a cheap visual cue for "this query is now
// grounded" that mirrors the teacher's interactive-terminal conventions
// (internal/evaluator/builtins_term.go's isatty-gated formatting).
func printResult(ctx *pipeline.PipelineContext, colorize bool) string {
	printed := ctx.Result.String()
	if !colorize {
		return printed + "\n"
	}
	return "\x1b[32m" + printed + "\x1b[0m\n"
}
