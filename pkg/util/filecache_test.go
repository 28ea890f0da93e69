package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCache_GetAndBytes(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "Button.jsx", "export const Button = () => <button/>;\n")

	cache := NewFileCache(UnboundedFileCacheConfig())
	defer cache.Close()

	mf, err := cache.Get(path)
	require.NoError(t, err)
	assert.Equal(t, path, mf.Path)
	assert.Equal(t, int64(39), mf.Size)
	assert.False(t, mf.ModTime.IsZero())

	again, err := cache.Get(path)
	require.NoError(t, err)
	assert.Same(t, mf, again)

	data, err := cache.Bytes(path)
	require.NoError(t, err)
	assert.Equal(t, "export const Button = () => <button/>;\n", string(data))

	stats := cache.Stats()
	assert.Equal(t, 1, stats.FilesCached)
	assert.Equal(t, int64(1), stats.FilesLoaded)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func TestFileCache_BytesSurviveReleaseAndRewrite(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "App.tsx", "const App = () => <main/>;\n")

	cache := NewFileCache(nil)
	defer cache.Close()

	data, err := cache.Bytes(path)
	require.NoError(t, err)
	require.NoError(t, cache.Release(path))
	assert.Equal(t, 0, cache.Size())

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, "const App = () => <main/>;\n", string(data))

	reloaded, err := cache.Bytes(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(reloaded))
	assert.Equal(t, int64(1), cache.Stats().FilesReleased)
}

func TestFileCache_ReleaseUnknownIsNoop(t *testing.T) {
	cache := NewFileCache(nil)
	defer cache.Close()
	assert.NoError(t, cache.Release("/does/not/exist.js"))
}

func TestFileCache_MaxFiles(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(&FileCacheConfig{MaxFiles: 2})
	defer cache.Close()

	for i := 0; i < 2; i++ {
		_, err := cache.Get(writeSource(t, dir, fmt.Sprintf("f%d.js", i), "let a = 1;"))
		require.NoError(t, err)
	}

	_, err := cache.Get(writeSource(t, dir, "f2.js", "let a = 1;"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCacheFull))

	require.NoError(t, cache.Release(filepath.Join(dir, "f0.js")))
	_, err = cache.Get(filepath.Join(dir, "f2.js"))
	assert.NoError(t, err, "releasing a file frees a slot")
}

func TestFileCache_MaxMemory(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(&FileCacheConfig{MaxMemoryMB: 1})
	defer cache.Close()

	big := writeSource(t, dir, "big.js", strings.Repeat("a", 2*1024*1024))
	_, err := cache.Get(big)
	assert.ErrorIs(t, err, ErrCacheFull)

	small := writeSource(t, dir, "small.js", "const x = 1;")
	_, err = cache.Get(small)
	assert.NoError(t, err)
}

func TestFileCache_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "empty.js", "")

	cache := NewFileCache(nil)
	defer cache.Close()

	data, err := cache.Bytes(path)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NoError(t, cache.Release(path))
}

func TestFileCache_Errors(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(nil)
	defer cache.Close()

	_, err := cache.Get(filepath.Join(dir, "missing.js"))
	assert.Error(t, err)

	_, err = cache.Get(dir)
	assert.Error(t, err, "directories are rejected")
}

func TestFileCache_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 8; i++ {
		paths = append(paths, writeSource(t, dir, fmt.Sprintf("c%d.jsx", i), fmt.Sprintf("const C%d = () => <i/>;", i)))
	}

	cache := NewFileCache(UnboundedFileCacheConfig())
	defer cache.Close()

	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			p := paths[g%len(paths)]
			data, err := cache.Bytes(p)
			assert.NoError(t, err)
			assert.Contains(t, string(data), fmt.Sprintf("C%d", g%len(paths)))
		}(g)
	}
	wg.Wait()

	assert.Equal(t, len(paths), cache.Size())
	assert.Equal(t, int64(len(paths)), cache.Stats().FilesLoaded)
}

func TestFileCache_CloseKeepsCacheUsable(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.js", "var a;")

	cache := NewFileCache(nil)
	_, err := cache.Get(path)
	require.NoError(t, err)

	require.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Size())

	_, err = cache.Get(path)
	assert.NoError(t, err)
	assert.NoError(t, cache.Close())
}
