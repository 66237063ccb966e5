package options

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. MERGETAGS__PREFIX.
const EnvPrefix = "MERGETAGS__"

// Load builds the configuration with the following priority (highest first):
//  1. environment variables (MERGETAGS__SHOW_BRACES -> show_braces)
//  2. the config file at path (YAML, or HCL when the extension is .hcl)
//  3. Default()
//
// An empty path skips the file layer.
func Load(ctx context.Context, path string) (*Options, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Errorf("config file not found: %s", path)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".hcl":
			m, err := decodeHCLFile(path)
			if err != nil {
				return nil, err
			}
			if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
				return nil, errors.Errorf("loading HCL config: %w", err)
			}
		default:
			if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
				return nil, errors.Errorf("loading YAML config: %w", err)
			}
		}
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loaded config file")
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Errorf("loading environment: %w", err)
	}

	out := &Options{}
	if err := k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Errorf("decoding config: %w", err)
	}
	if out.Tags == nil {
		out.Tags = []any{}
	}

	if err := out.Validate(); err != nil {
		return nil, errors.Errorf("invalid config: %w", err)
	}

	return out, nil
}

// hclOptions mirrors Options for HCL files. Pointers keep unset attributes
// from overwriting the defaults.
type hclOptions struct {
	Prefix            *string   `hcl:"prefix,optional"`
	Suffix            *string   `hcl:"suffix,optional"`
	Trigger           *string   `hcl:"trigger,optional"`
	TokenClass        *string   `hcl:"token_class,optional"`
	BraceClass        *string   `hcl:"brace_class,optional"`
	ActiveClass       *string   `hcl:"active_class,optional"`
	Display           *string   `hcl:"display,optional"`
	ShowBraces        *bool     `hcl:"show_braces,optional"`
	HighlightOnInsert *bool     `hcl:"highlight_on_insert,optional"`
	KeepUnknown       *bool     `hcl:"keep_unknown,optional"`
	MaxSuggestions    *int      `hcl:"max_suggestions,optional"`
	HistoryLimit      *int      `hcl:"history_limit,optional"`
	Tags              cty.Value `hcl:"tags,optional"`
}

func decodeHCLFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}
	return DecodeHCL(data, path)
}

// DecodeHCL turns an HCL document into a flat koanf map. The tags attribute
// may be any tuple/object expression and is handed to the catalog as plain
// JSON-shaped data.
func DecodeHCL(data []byte, filename string) (map[string]any, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var cfg hclOptions
	diags = gohcl.DecodeBody(hclFile.Body, &hcl.EvalContext{Variables: map[string]cty.Value{}}, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	m := map[string]any{}
	setString := func(key string, v *string) {
		if v != nil {
			m[key] = *v
		}
	}
	setBool := func(key string, v *bool) {
		if v != nil {
			m[key] = *v
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			m[key] = *v
		}
	}

	setString("prefix", cfg.Prefix)
	setString("suffix", cfg.Suffix)
	setString("trigger", cfg.Trigger)
	setString("token_class", cfg.TokenClass)
	setString("brace_class", cfg.BraceClass)
	setString("active_class", cfg.ActiveClass)
	setString("display", cfg.Display)
	setBool("show_braces", cfg.ShowBraces)
	setBool("highlight_on_insert", cfg.HighlightOnInsert)
	setBool("keep_unknown", cfg.KeepUnknown)
	setInt("max_suggestions", cfg.MaxSuggestions)
	setInt("history_limit", cfg.HistoryLimit)

	if !cfg.Tags.IsNull() {
		if !cfg.Tags.IsWhollyKnown() {
			return nil, errors.Errorf("decoding HCL: tags must be a literal value")
		}
		raw, err := ctyjson.SimpleJSONValue{Value: cfg.Tags}.MarshalJSON()
		if err != nil {
			return nil, errors.Errorf("converting HCL tags: %w", err)
		}
		var tags any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&tags); err != nil {
			return nil, errors.Errorf("converting HCL tags: %w", err)
		}
		m["tags"] = tags
	}

	return m, nil
}

// DumpYAML writes the effective configuration as YAML.
func DumpYAML(w io.Writer, o *Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(o); err != nil {
		return errors.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
