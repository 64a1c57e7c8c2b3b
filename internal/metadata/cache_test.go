package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheWriteAtomicAndExists(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	path := c.PackagesPath("main", "stable", "main", "amd64", "deadbeef")
	assert.False(t, c.Exists(path))

	require.NoError(t, c.WriteAtomic(path, strings.NewReader("hello")))
	assert.True(t, c.Exists(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	_, err = os.Stat(path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestCacheReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	path := c.PackagesPath("main", "stable", "main", "amd64", "deadbeef")
	require.NoError(t, c.WriteAtomic(path, strings.NewReader("packages data")))

	content, err := c.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "packages data", string(content))
}

func TestCacheReadMissingFileErrors(t *testing.T) {
	c := NewCache(t.TempDir())
	_, err := c.Read(c.PackagesPath("main", "stable", "main", "amd64", "deadbeef"))
	assert.Error(t, err)
}

func TestCacheArchivePath(t *testing.T) {
	c := NewCache("/cache")
	got := c.ArchivePath("a", "1.0-1", "amd64")
	assert.Equal(t, filepath.Join("/cache", "archives", "a_1.0-1_amd64.deb"), got)
}

func TestCacheCleanPartials(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	leftover := filepath.Join(dir, "main", "InRelease.abc.part")
	require.NoError(t, os.MkdirAll(filepath.Dir(leftover), 0o755))
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0o644))

	require.NoError(t, c.CleanPartials())
	_, err := os.Stat(leftover)
	assert.True(t, os.IsNotExist(err))
}

func TestLockRejectsSecondAcquire(t *testing.T) {
	dir := t.TempDir()
	l1 := NewLock(dir)
	require.NoError(t, l1.Lock())
	defer l1.Unlock()

	l2 := NewLock(dir)
	assert.Error(t, l2.Lock())
}
