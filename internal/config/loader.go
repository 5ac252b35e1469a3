package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"sharingd/internal/adapter"
	"sharingd/internal/native"
	"sharingd/pkg/types"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults in main.
type Config struct {
	Addr        string    `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel    string    `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string    `json:"log_format" yaml:"log_format" toml:"log_format"`
	ScriptsDir  string    `json:"scripts_dir" yaml:"scripts_dir" toml:"scripts_dir"`
	EventBuffer int       `json:"event_buffer" yaml:"event_buffer" toml:"event_buffer"`
	CORSOrigins []string  `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	Simulator   Simulator `json:"simulator" yaml:"simulator" toml:"simulator"`
}

// Simulator describes the simulated sharing service.
type Simulator struct {
	// Supported defaults to true when omitted.
	Supported *bool `json:"supported" yaml:"supported" toml:"supported"`
	// Types lists the enabled link types by name; empty enables all.
	Types []string `json:"types" yaml:"types" toml:"types"`
	// Ifaces overrides interface names per type name.
	Ifaces map[string]string `json:"ifaces" yaml:"ifaces" toml:"ifaces"`
	// Regexes overrides sharable patterns per type name.
	Regexes       map[string][]string `json:"regexes" yaml:"regexes" toml:"regexes"`
	UpstreamNetID int32               `json:"upstream_net_id" yaml:"upstream_net_id" toml:"upstream_net_id"`
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() Config {
	return Config{
		Addr:        ":8080",
		LogLevel:    "info",
		LogFormat:   "console",
		EventBuffer: 64,
	}
}

// Merge returns c with every zero field filled from base.
func (c Config) Merge(base Config) Config {
	if c.Addr == "" {
		c.Addr = base.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = base.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = base.LogFormat
	}
	if c.ScriptsDir == "" {
		c.ScriptsDir = base.ScriptsDir
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = base.EventBuffer
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = base.CORSOrigins
	}
	return c
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// NativeConfig turns the simulator section into a native.SimConfig on top
// of native.DefaultSimConfig.
func (s Simulator) NativeConfig() (native.SimConfig, error) {
	out := native.DefaultSimConfig()
	if s.Supported != nil {
		out.Supported = *s.Supported
	}
	if s.UpstreamNetID != 0 {
		out.UpstreamNetID = s.UpstreamNetID
	}
	if len(s.Types) > 0 {
		enabled := make(map[native.IfaceType]string, len(s.Types))
		for _, name := range s.Types {
			t, err := parseType(name)
			if err != nil {
				return out, err
			}
			enabled[t] = out.Ifaces[t]
		}
		out.Ifaces = enabled
	}
	for name, iface := range s.Ifaces {
		t, err := parseType(name)
		if err != nil {
			return out, err
		}
		if _, ok := out.Ifaces[t]; ok {
			out.Ifaces[t] = iface
		}
	}
	for name, re := range s.Regexes {
		t, err := parseType(name)
		if err != nil {
			return out, err
		}
		out.Regexes[t] = re
	}
	return out, nil
}

func parseType(name string) (native.IfaceType, error) {
	t, err := types.ParseSharingIfaceType(name)
	if err != nil {
		return native.SharingNone, fmt.Errorf("simulator: %w", err)
	}
	return adapter.IfaceTypeToNative(t), nil
}
