package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEnablesColorAndPretty(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Diagnostics.Color)
	assert.False(t, cfg.Diagnostics.Compact)
	assert.True(t, cfg.AllowsClass("AnythingAtAll"), "an empty allow-list permits every class")
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eopsin.yml")
	contents := "domain:\n  allow: [Token, Address]\ndiagnostics:\n  color: false\n  compact_json: true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Diagnostics.Color)
	assert.True(t, cfg.Diagnostics.Compact)
	assert.True(t, cfg.AllowsClass("Token"))
	assert.False(t, cfg.AllowsClass("ScriptContext"))
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "eopsin.yml"), []byte("diagnostics:\n  color: true\n"), 0644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "eopsin.yml"), found)
}

func TestLoadNearestFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadNearest(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
