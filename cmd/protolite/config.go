package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/lumera-tools/protolite/jsonbridge"
	"github.com/lumera-tools/protolite/wire"
)

// codecConfig is the effective CLI configuration: built-in defaults, then
// the config file, then command-line flags.
type codecConfig struct {
	MaxDepth       int
	AcceptPacked   bool
	JSONIndent     string
	JSONProtoNames bool
	ProtoPaths     []string
	LogLevel       string
}

type fileConfig struct {
	MaxDepth       int      `toml:"max_depth"`
	AcceptPacked   bool     `toml:"accept_packed"`
	JSONIndent     string   `toml:"json_indent"`
	JSONProtoNames bool     `toml:"json_proto_names"`
	ProtoPaths     []string `toml:"proto_paths"`
	LogLevel       string   `toml:"log_level"`
}

func defaultCodecConfig() codecConfig {
	return codecConfig{
		MaxDepth:     wire.DefaultMaxDepth,
		AcceptPacked: true,
		LogLevel:     zerolog.LevelInfoValue,
	}
}

// loadCodecConfig overlays the keys defined in the TOML file at path on the
// defaults. An empty path yields the defaults.
func loadCodecConfig(path string) (codecConfig, error) {
	cfg := defaultCodecConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return codecConfig{}, fmt.Errorf("load codec config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return codecConfig{}, fmt.Errorf("load codec config: unknown key %s", undecoded[0])
	}

	if meta.IsDefined("max_depth") {
		if raw.MaxDepth <= 0 {
			return codecConfig{}, fmt.Errorf("max_depth must be positive, got %d", raw.MaxDepth)
		}
		cfg.MaxDepth = raw.MaxDepth
	}

	if meta.IsDefined("accept_packed") {
		cfg.AcceptPacked = raw.AcceptPacked
	}

	if meta.IsDefined("json_indent") {
		if strings.Trim(raw.JSONIndent, " \t") != "" {
			return codecConfig{}, fmt.Errorf("json_indent may only hold spaces and tabs")
		}
		cfg.JSONIndent = raw.JSONIndent
	}

	if meta.IsDefined("json_proto_names") {
		cfg.JSONProtoNames = raw.JSONProtoNames
	}

	if meta.IsDefined("proto_paths") {
		cfg.ProtoPaths = normalizePaths(raw.ProtoPaths)
	}

	if meta.IsDefined("log_level") {
		level := strings.TrimSpace(raw.LogLevel)
		if _, err := parseLevel(level); err != nil {
			return codecConfig{}, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func (c codecConfig) wireOptions() wire.Options {
	return wire.Options{
		MaxDepth:      c.MaxDepth,
		StrictPacking: !c.AcceptPacked,
	}
}

func (c codecConfig) jsonOptions() jsonbridge.MarshalOptions {
	return jsonbridge.MarshalOptions{
		UseProtoNames: c.JSONProtoNames,
		Indent:        c.JSONIndent,
	}
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		v := strings.TrimSpace(p)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
