package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-heep/socgen/internal/socerr"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, outDir, formatName, logLevel, logFormat, snapshotPath = "", ".", "json", "error", "text", ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidate_Default(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "x_heep: ok (2 regions, 17 components, 2 banks,")
}

func TestGenerate_WritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "generate", "-o", dir, "--format", "cbor")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "snapshot.cbor", lines[0])
	assert.FileExists(t, filepath.Join(dir, "snapshot.cbor"))
	assert.FileExists(t, filepath.Join(dir, "nodes", "core_v_mini_mcu.cbor"))
}

func TestGenerate_UnknownFormat(t *testing.T) {
	_, err := execute(t, "generate", "-o", t.TempDir(), "--format", "xml")
	assert.ErrorIs(t, err, socerr.ErrConfig)
}

func TestBuild_SQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "x_heep.db")
	out, err := execute(t, "build", db)
	require.NoError(t, err)
	assert.Contains(t, out, "stored in "+db)
	assert.FileExists(t, db)
}

func TestQuery(t *testing.T) {
	const sel = `$.regions[?(@.name == 'ao_peripherals')].components[?(@.name == 'Bootrom')].address`

	t.Run("fresh run", func(t *testing.T) {
		out, err := execute(t, "query", sel)
		require.NoError(t, err)
		assert.Equal(t, "536936448\n", out)
	})

	t.Run("snapshot file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, "generate", "-o", dir)
		require.NoError(t, err)

		out, err := execute(t, "query", "--snapshot", filepath.Join(dir, "snapshot.json"), `$.routing.bundles[*].id`)
		require.NoError(t, err)
		assert.Contains(t, out, `"ao_peripheral_subsystem__peripheral_subsystem_bundle"`)
	})

	t.Run("cbor snapshot file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, "generate", "-o", dir, "--format", "cbor")
		require.NoError(t, err)

		out, err := execute(t, "query", "-s", filepath.Join(dir, "snapshot.cbor"), sel)
		require.NoError(t, err)
		assert.Equal(t, "536936448\n", out)
	})
}

func TestConfigFile_Overlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: bad
ram:
  banks:
    - section: code
      sizes: [32]
    - section: data
      sizes: [32]
regions:
  - name: ao
    base: "0x20000000"
    length: "0x100000"
    components:
      - {name: a, offset: "0x0", length: "0x10000"}
      - {name: b, offset: "0x8000", length: "0x10000"}
`), 0o644))

	_, err := execute(t, "validate", "-c", path)
	assert.ErrorIs(t, err, socerr.ErrOverlap)
	assert.Equal(t, []string{"b", "a"}, socerr.Names(err))
}

func TestLogLevel_Invalid(t *testing.T) {
	_, err := execute(t, "validate", "--log-level", "loud")
	assert.Error(t, err)
}
