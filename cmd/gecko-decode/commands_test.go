package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dccourt/esphome-gecko/internal/catalog"
	"github.com/dccourt/esphome-gecko/internal/frame"
)

const dumpFile = "testdata/inyt-65-dump.hex"

// resetFlags puts every flag back to its default so commands can run more
// than once in a process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, configFile, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", configFile}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestDecodeCompact(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "decode", "-r", "inyt-cfg-65", "-f", dumpFile, "-o", "compact")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "ConfigNumber=19\nSetpointG=32.5 °C\n"), out)
	assert.Contains(t, out, "EconType=Standard\n")
	assert.Contains(t, out, "SilentMode=NA\n")
}

func TestDecodeJSONFromStdin(t *testing.T) {
	hex, err := os.ReadFile(dumpFile)
	require.NoError(t, err)

	out, err := execute(t, tempConfig(t), "0000"+string(hex), "decode", "-r", "inyt-log-65", "--skip-header", "2", "-o", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "inyt-log-65", doc["revision"])
	assert.Equal(t, "builtin", doc["source"])
	assert.Equal(t, float64(281), doc["consumed"])
	assert.Equal(t, float64(366), doc["length"])
	values := doc["values"].(map[string]any)
	assert.Equal(t, float64(14), values["Hours"])
	assert.Equal(t, "Unknown", values["PackType"])
}

func TestDecodeTrace(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "decode", "-r", "inyt-cfg-65", "-f", dumpFile, "-o", "compact", "--trace")
	require.NoError(t, err)

	assert.Contains(t, out, "Data length: 366 bytes\n")
	assert.Contains(t, out, "0000->0000: ConfigNumber = 19\n")
	assert.Contains(t, out, "0049->0046: EconType = Standard\n")
}

func TestDecodeAdjustOffset(t *testing.T) {
	// Byte 5 of the frame lands on position 0 once shifted back by 5
	out, err := execute(t, tempConfig(t), "", "decode", "-r", "inyt-cfg-65", "--adjust-offset", "-5", "-o", "compact", "0000000000130249")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ConfigNumber=19\nSetpointG=32.5 °C\n"), out)
}

func TestDecodePlainDetailed(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "decode", "-r", "inyt-log-65", "-f", dumpFile)
	require.NoError(t, err)

	assert.Contains(t, out, "Revision:  inyt-log-65 (builtin)\n")
	assert.Contains(t, out, "Length:    366 bytes, 281 consumed\n")
	assert.Contains(t, out, "Warnings:\n  enum accessor PackType out-of-range")
}

func TestDecodeCBOR(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "decode", "-r", "inyt-cfg-65", "-o", "cbor", "13024904")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "ConfigNumber")
}

func TestDecodeErrors(t *testing.T) {
	cfgFile := tempConfig(t)

	_, err := execute(t, cfgFile, "", "decode", "130249")
	assert.ErrorContains(t, err, "no revision given")

	_, err = execute(t, cfgFile, "", "decode", "-r", "inyt-cfg-99", "130249")
	assert.ErrorIs(t, err, catalog.ErrUnknownRevision)

	_, err = execute(t, cfgFile, "", "decode", "-r", "inyt-cfg-65", "13G249")
	var formatErr *frame.FormatError
	assert.True(t, errors.As(err, &formatErr), "got %v", err)

	_, err = execute(t, cfgFile, "", "decode", "-r", "inyt-cfg-65", "--skip-header", "4", "1302")
	assert.Error(t, err)

	_, err = execute(t, cfgFile, "", "decode", "-r", "inyt-cfg-65", "-f", dumpFile, "1302")
	assert.Error(t, err)

	_, err = execute(t, cfgFile, "", "decode", "-r", "inyt-cfg-65", "-o", "xml", "1302")
	assert.Error(t, err)
}

func TestControllerPinning(t *testing.T) {
	cfgFile := tempConfig(t)

	out, err := execute(t, cfgFile, "", "controller", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No controllers configured")

	_, err = execute(t, cfgFile, "", "controller", "set", "pool-house", "-r", "inyt-cfg-65", "--nickname", "Pool House Spa")
	require.NoError(t, err)

	out, err = execute(t, cfgFile, "", "decode", "-c", "pool-house", "-f", dumpFile, "-o", "compact")
	require.NoError(t, err)
	assert.Contains(t, out, "ConfigNumber=19\n")

	out, err = execute(t, cfgFile, "", "controller", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "pool-house")
	assert.Contains(t, out, "Pool House Spa")
	assert.Contains(t, out, "(161 bytes)")

	_, err = execute(t, cfgFile, "", "controller", "set", "garden", "-r", "nope")
	assert.ErrorIs(t, err, catalog.ErrUnknownRevision)

	_, err = execute(t, cfgFile, "", "controller", "set", "garden")
	assert.Error(t, err)
}

func TestCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
revision = "custom-1"

[[fields]]
path = "Heater"
kind = "bool"
position = 1
bit = 0
`), 0600))

	out, err := execute(t, tempConfig(t), "", "decode", "--catalog", path, "-o", "compact", "0001")
	require.NoError(t, err)
	assert.Equal(t, "Heater=true\n", out)

	out, err = execute(t, tempConfig(t), "", "schema", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Revision:     custom-1 ("+path+")")
	assert.Contains(t, out, "bit 0")
}

func TestCatalogDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inyt-cfg-65.yaml"),
		[]byte("revision: inyt-cfg-65\nfields:\n  - {path: Only, kind: byte, position: 0}\n"), 0600))

	cfgFile := tempConfig(t)
	require.NoError(t, os.WriteFile(cfgFile, []byte("version: 1\ndefaults:\n  catalog_dir: "+dir+"\n  format: compact\n"), 0600))

	out, err := execute(t, cfgFile, "", "decode", "-r", "inyt-cfg-65", "2A")
	require.NoError(t, err)
	assert.Equal(t, "Only=42\n", out)
}

func TestRevisionsAndSchema(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "revisions")
	require.NoError(t, err)
	for _, rev := range catalog.Revisions() {
		assert.Contains(t, out, string(rev))
	}

	out, err = execute(t, tempConfig(t), "", "schema", "inyt-cfg-65")
	require.NoError(t, err)
	assert.Contains(t, out, "Corrections:  [(64, -3), (164, +3), (284, -3), (372, -3)]")
	assert.Contains(t, out, "SilentMode")

	_, err = execute(t, tempConfig(t), "", "schema")
	assert.Error(t, err)
}

func TestInspectNeedsTerminal(t *testing.T) {
	_, err := execute(t, tempConfig(t), "", "inspect", "-r", "inyt-cfg-65", "1302")
	assert.ErrorContains(t, err, "needs a terminal")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "gecko-decode "), out)
}

func TestDecodeUnknownControllerIsNotRecorded(t *testing.T) {
	cfgFile := tempConfig(t)

	out, err := execute(t, cfgFile, "", "decode", "-c", "pool-hose", "-r", "inyt-cfg-65", "-o", "compact", "13024904")
	require.NoError(t, err)
	assert.Contains(t, out, "ConfigNumber=19\n")

	_, err = os.Stat(cfgFile)
	assert.ErrorIs(t, err, os.ErrNotExist, "decode must not write the config for an unknown controller")

	out, err = execute(t, cfgFile, "", "controller", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No controllers configured")
}

func TestDecodeTraceNegativeBaseOffset(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "decode", "-r", "inyt-cfg-65", "--adjust-offset", "-2", "--trace", "-o", "compact", "AAAA13024904")
	require.NoError(t, err)
	assert.Contains(t, out, "0002->0000: ConfigNumber = 19\n")
}
