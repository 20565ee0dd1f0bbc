// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🧭 DefaultRemotes is the detection preference order used when the config
// does not supply one.
var DefaultRemotes = []string{"cros", "cros-internal", "origin"}

// DefaultNavFile is the navigation file Gitiles renders as the sidebar.
const DefaultNavFile = "navbar.md"

// 📚 Config represents the complete configuration. Every field is
// optional: a missing config file is equivalent to Default().
type Config struct {
	// Remotes is the ordered preference list for remote detection.
	Remotes []string `json:"remotes,omitempty" yaml:"remotes,omitempty" hcl:"remotes,optional"`
	// NavFile is looked up at the repository root and bundled into the
	// preview so rendered pages keep the production sidebar.
	NavFile string `json:"nav_file,omitempty" yaml:"nav_file,omitempty" hcl:"nav_file,optional"`
	// OpenBrowser controls whether the derived URL is opened after the
	// push. Unset means true.
	OpenBrowser *bool `json:"open_browser,omitempty" yaml:"open_browser,omitempty" hcl:"open_browser,optional"`
}

// 🏭 Default returns the configuration used when no config file exists
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate() // defaults always validate
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate normalizes the configuration and fills defaults
func (cfg *Config) Validate() error {
	if len(cfg.Remotes) == 0 {
		cfg.Remotes = append([]string(nil), DefaultRemotes...)
	}
	if cfg.NavFile == "" {
		cfg.NavFile = DefaultNavFile
	}

	for _, r := range cfg.Remotes {
		if strings.TrimSpace(r) == "" {
			return errors.Errorf("remotes must not contain empty names")
		}
	}
	if strings.ContainsAny(cfg.NavFile, "/\\") {
		return errors.Errorf("nav_file must be a bare file name, got %q", cfg.NavFile)
	}

	return nil
}

// 🌐 OpenBrowserEnabled reports whether the browser step is enabled
func (cfg *Config) OpenBrowserEnabled() bool {
	return cfg.OpenBrowser == nil || *cfg.OpenBrowser
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
