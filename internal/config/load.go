// Package config loads SoC descriptions from HCL, YAML or JSON files.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"github.com/x-heep/socgen/api"
	"github.com/x-heep/socgen/internal/socerr"
)

//go:embed default.hcl
var defaultHCL []byte

// DefaultRoot is the root node name used when a description sets none.
const DefaultRoot = "x_heep_system"

// Load reads and decodes the description at path. The format follows the
// file extension: .hcl, .yaml/.yml or .json.
func Load(path string) (*api.SoC, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes data, choosing the format from filename's extension.
func Parse(data []byte, filename string) (*api.SoC, error) {
	var soc api.SoC
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".hcl":
		if err := hclsimple.Decode(filepath.Base(filename), data, nil, &soc); err != nil {
			return nil, fmt.Errorf("parsing hcl %s: %w", filename, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &soc); err != nil {
			return nil, fmt.Errorf("parsing yaml %s: %w", filename, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &soc); err != nil {
			return nil, fmt.Errorf("parsing json %s: %w", filename, err)
		}
	default:
		return nil, socerr.New(socerr.ErrConfig, "load", []string{filename}, "unsupported config format %q", ext)
	}
	applyDefaults(&soc)
	return &soc, nil
}

// Default returns the stock description embedded in the binary.
func Default() (*api.SoC, error) {
	return Parse(defaultHCL, "default.hcl")
}

func applyDefaults(soc *api.SoC) {
	if soc.Root == "" {
		soc.Root = DefaultRoot
	}
	if soc.Bus == "" {
		soc.Bus = "onetoM"
	}
}

// ParseAddr parses a decimal or 0x-prefixed address. field names the
// configuration entry for the error message.
func ParseAddr(field, s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, socerr.New(socerr.ErrTypeMismatch, "config", []string{field}, "%s: invalid address %q", field, s)
	}
	return v, nil
}
