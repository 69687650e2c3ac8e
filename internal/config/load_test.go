package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-heep/socgen/internal/socerr"
)

const sampleYAML = `
name: tiny
bus: NtoM
ram:
  banks:
    - section: code
      sizes: [32]
    - section: data
      interleaved: 2
      size: 16
regions:
  - name: ao_peripherals
    base: "0x20000000"
    length: "0x00100000"
    components:
      - name: SOC_ctrl
        offset: "0x0"
        length: "0x10000"
      - name: Bootrom
        length: "0x10000"
nodes:
  - name: ao
    parent: top
sources:
  - name: timer_intr
    node: ao
    kind: fast_intr
targets:
  - name: fic
    node: top
    kind: fast_intr
    capacity: 2
`

const sampleHCL = `
name = "tiny"
root = "top"

ram {
  banks "code" {
    sizes = [32]
  }
  banks "data" {
    sizes = [32, 64]
  }
  section "stack" {
    start = "0x10000"
  }
}

region "peripherals" {
  base   = "0x30000000"
  length = "0x100000"

  component "uart" {
    length = "0x10000"
  }
}

node "ao" {
  parent = "top"
}

source "uart_intr" {
  node = "ao"
  kind = "plic_intr"
  to   = "plic"
}

target "plic" {
  node     = "top"
  kind     = "plic_intr"
  capacity = 4
}
`

const sampleJSON = `{
  "name": "tiny",
  "root": "top",
  "regions": [{"name": "r", "base": "0x0", "length": "0x1000",
    "components": [{"name": "a", "length": "0x100"}]}]
}`

func TestParse_YAML(t *testing.T) {
	soc, err := Parse([]byte(sampleYAML), "soc.yaml")
	require.NoError(t, err)

	assert.Equal(t, "tiny", soc.Name)
	assert.Equal(t, "NtoM", soc.Bus)
	assert.Equal(t, DefaultRoot, soc.Root)
	require.NotNil(t, soc.RAM)
	require.Len(t, soc.RAM.Banks, 2)
	assert.Equal(t, 2, soc.RAM.Banks[1].Interleaved)
	assert.Equal(t, uint64(16), soc.RAM.Banks[1].Size)
	require.Len(t, soc.Regions, 1)
	assert.Equal(t, "0x0", soc.Regions[0].Components[0].Offset)
	assert.Empty(t, soc.Regions[0].Components[1].Offset)
	assert.Equal(t, 2, soc.Targets[0].Capacity)
}

func TestParse_HCL(t *testing.T) {
	soc, err := Parse([]byte(sampleHCL), "soc.hcl")
	require.NoError(t, err)

	assert.Equal(t, "top", soc.Root)
	assert.Equal(t, "onetoM", soc.Bus)
	require.Len(t, soc.RAM.Banks, 2)
	assert.Equal(t, "data", soc.RAM.Banks[1].Section)
	assert.Equal(t, []uint64{32, 64}, soc.RAM.Banks[1].Sizes)
	require.Len(t, soc.RAM.Sections, 1)
	assert.Equal(t, "stack", soc.RAM.Sections[0].Name)
	assert.Equal(t, "plic", soc.Sources[0].To)
	assert.Equal(t, 4, soc.Targets[0].Capacity)
	assert.Equal(t, "uart", soc.Regions[0].Components[0].Name)
}

func TestParse_JSON(t *testing.T) {
	soc, err := Parse([]byte(sampleJSON), "soc.json")
	require.NoError(t, err)
	assert.Equal(t, "top", soc.Root)
	assert.Nil(t, soc.RAM)
	assert.Equal(t, "0x100", soc.Regions[0].Components[0].Length)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("x"), "soc.toml")
	assert.ErrorIs(t, err, socerr.ErrConfig)

	_, err = Parse([]byte("region {"), "soc.hcl")
	assert.Error(t, err)

	_, err = Parse([]byte("name: [unterminated"), "soc.yaml")
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soc.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	soc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", soc.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	soc, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "x_heep_system", soc.Root)
	require.Len(t, soc.Regions, 2)
	assert.Equal(t, "SOC_ctrl", soc.Regions[0].Components[0].Name)
	assert.Equal(t, "0x0", soc.Regions[0].Components[0].Offset)
	assert.NotEmpty(t, soc.Sources)
	assert.NotEmpty(t, soc.Targets)
}

func TestParseAddr(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0x10000", 0x10000},
		{"4096", 4096},
		{" 0x2000_0000 ", 0x20000000},
	}
	for _, tt := range tests {
		got, err := ParseAddr("base", tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseAddr("base", "0xZZ")
	assert.ErrorIs(t, err, socerr.ErrTypeMismatch)
	assert.Equal(t, []string{"base"}, socerr.Names(err))
}
