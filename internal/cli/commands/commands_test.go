package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"only", "parallel"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewIngestCommand(t *testing.T) {
	cmd := NewIngestCommand()

	assert.Equal(t, "ingest", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewTablesCommand(t *testing.T) {
	cmd := NewTablesCommand()

	assert.Equal(t, "tables", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewQueryCommand(t *testing.T) {
	cmd := NewQueryCommand()

	assert.Equal(t, "query <sql>", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// query requires at least the SQL argument
	cmd.SetArgs([]string{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	require.Error(t, cmd.Execute())
}

func TestNewReportCommand(t *testing.T) {
	cmd := NewReportCommand()

	assert.Equal(t, "report", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestGetConfig_FallbackUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := NewTablesCommand()
	cmd.SetContext(context.Background())

	cfg, err := getConfig(cmd)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Countries)
}

func TestGetConfig_FallbackSurfacesLoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ghgmart.yaml"), []byte("countries: []\n"), 0o644))
	t.Chdir(dir)

	cmd := NewTablesCommand()
	cmd.SetContext(context.Background())

	_, err := getConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "ghgmart v1.2.3")
	assert.Contains(t, buf.String(), "DuckDB")
}
