package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/monty/pkg/collection"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[run]
mode = "queue"
trace = true

[log]
verbosity = 2
path = "logs/monty.log"

[image]
output = "out.mbc"
`)

	m, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "queue", m.Run.Mode)
	assert.Equal(t, collection.Queue, m.Mode())
	assert.True(t, m.Run.Trace)
	assert.Equal(t, 2, m.Log.Verbosity)
	assert.Equal(t, "out.mbc", m.Image.Output)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, FileName), m.Path)
	require.NotNil(t, m.LogPath())
	assert.Equal(t, filepath.Join(abs, "logs", "monty.log"), *m.LogPath())
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "# empty\n")

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, collection.Stack, m.Mode())
	assert.False(t, m.Run.Trace)
	assert.Equal(t, -4, m.Log.Verbosity)
	assert.Nil(t, m.LogPath())
}

func TestLoadManifestBadMode(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[run]\nmode = \"deque\"\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.mode")
}

func TestLoadManifestParseError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[run\nmode = 1\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFileAbsoluteLogPath(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "x.log")
	cfg := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[log]\npath = \""+filepath.ToSlash(logPath)+"\"\n"), 0644))

	m, err := LoadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(logPath), filepath.ToSlash(*m.LogPath()))
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[run]\nmode = \"queue\"\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	m, err := FindAndLoad(nested)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, collection.Queue, m.Mode())
}

func TestFindAndLoadNone(t *testing.T) {
	// A fresh temp dir normally has no monty.toml above it. Skip if the
	// machine happens to have one on the path.
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	require.NoError(t, err)
	if m != nil {
		t.Skipf("found unrelated %s", m.Path)
	}
	assert.Nil(t, m)
}

func TestDefault(t *testing.T) {
	m := Default()
	assert.Equal(t, collection.Stack, m.Mode())
	assert.Empty(t, m.Path)
}
