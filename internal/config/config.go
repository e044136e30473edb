// Package config loads the optional HCL server configuration file.
//
// Everything in the file can also be set from the command line; CLI flags
// win. Attribute expressions are evaluated with an `env` variable holding
// the process environment, so a config can follow deployment conventions
// like `document = env.ROCKIQ_CONFIG`.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// File mirrors the attributes a server config file may set.
type File struct {
	Document        string `hcl:"document,optional"`
	Listen          string `hcl:"listen,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	LogFormat       string `hcl:"log_format,optional"`
	WatchDebounceMS int    `hcl:"watch_debounce_ms,optional"`
}

// Load parses and evaluates the config file at path.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing server config %s: %s", path, diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envVars()},
	}
	var out File
	if diags := gohcl.DecodeBody(f.Body, evalCtx, &out); diags.HasErrors() {
		return nil, fmt.Errorf("decoding server config %s: %s", path, diags.Error())
	}
	return &out, nil
}

// envVars exposes the process environment as a cty map for expressions.
func envVars() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	if len(vars) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(vars)
}
