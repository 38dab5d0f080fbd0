// Package config loads the runtime's types.Config by layering, in
// increasing priority, compiled-in defaults, an optional .krillclaw.json
// file in the working directory, environment variables, and CLI flags.
//
// Configuration sources (priority order, high to low):
//  1. CLI flags (highest priority)
//  2. Environment variables (KRILLCLAW_* prefix, plus the two bare
//     provider-key variables ANTHROPIC_API_KEY/OPENAI_API_KEY)
//  3. JSON config file (default: .krillclaw.json in the working directory)
//  4. Built-in defaults (types.DefaultConfig)
package config

import "github.com/bhardwajRahul/krillclaw/pkg/types"

// configFileName is the config file's fixed name, always resolved
// against the current working directory — there is no override flag
// for its location.
const configFileName = ".krillclaw"

// Loaded is the result of a Load call: the layered Config plus the
// one-shot prompt, if any, sourced from -p/--prompt or a positional
// argument.
type Loaded struct {
	Config types.Config
	Prompt string
}
