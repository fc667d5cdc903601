package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionID = "0192a4c8-7d1e-7000-8000-00000000abcd"

func TestArchive_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "archive")
	raw := []byte(`{"id":"s1","data":{"strokes":[],"totalTime":0}}` + strings.Repeat(" ", 512))

	path, err := Archive(testSessionID, KindJSON, raw, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, testSessionID+".json.zst"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(raw)), "padding compresses")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestArchive_EmptyPayload(t *testing.T) {
	dir := t.TempDir()
	path, err := Archive(testSessionID, KindRM, nil, dir)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestArchive_Overwrites(t *testing.T) {
	dir := t.TempDir()
	_, err := Archive(testSessionID, KindJSON, []byte("first"), dir)
	require.NoError(t, err)
	path, err := Archive(testSessionID, KindJSON, []byte("second"), dir)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestArchive_RejectsPathNames(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"", ".", "..", "../escape", `a\b`} {
		_, err := Archive(id, KindJSON, []byte("x"), dir)
		assert.Error(t, err, "id %q", id)
	}
	_, err := Archive(testSessionID, "a/b", []byte("x"), dir)
	assert.Error(t, err)
}

func TestIsArchived(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsArchived(testSessionID, KindJSON, dir))

	_, err := Archive(testSessionID, KindJSON, []byte("{}"), dir)
	require.NoError(t, err)

	assert.True(t, IsArchived(testSessionID, KindJSON, dir))
	assert.False(t, IsArchived(testSessionID, KindRM, dir))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json.zst"))
	assert.Error(t, err)

	bogus := filepath.Join(dir, "bogus.json.zst")
	require.NoError(t, os.WriteFile(bogus, []byte("not zstd at all"), 0o644))
	_, err = Load(bogus)
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRM, KindOf("page.rm"))
	assert.Equal(t, KindRM, KindOf("PAGE.RM"))
	assert.Equal(t, KindJSON, KindOf("session.json"))
	assert.Equal(t, KindJSON, KindOf("noext"))
}
