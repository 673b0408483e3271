package config

// Version is the current ground version.
var Version = "0.1.0"

const SourceFileExt = ".ground"

// Built-in function names. registry.New does not pre-seed them: the
// registry holds only functions passed to Declare.
const (
	IterateFuncName = "iterate"
	ExtentFuncName  = "extent"
	PrefixFuncName  = "isPrefix"
)
