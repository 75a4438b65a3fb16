package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestKey(t *testing.T) {
	k1 := Key("nomic-embed-text", "회의 내용")
	assert.Len(t, k1, 64)
	assert.Equal(t, k1, Key("nomic-embed-text", "회의 내용"))

	assert.NotEqual(t, k1, Key("other-model", "회의 내용"))
	assert.NotEqual(t, k1, Key("nomic-embed-text", "다른 내용"))
	// field boundaries matter
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}

func TestCache_GetPut(t *testing.T) {
	c := New(t.TempDir())
	key := Key("m", "hello")

	_, ok := c.Get(key)
	assert.False(t, ok)

	vec := []float32{0.1, -0.2, 0.3}
	require.NoError(t, c.Put(key, "m", vec))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestCache_Disabled(t *testing.T) {
	c := New("")

	require.NoError(t, c.Put("k", "m", []float32{1}))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.NoError(t, c.Clear())
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644))

	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectors")
	c := New(dir)
	require.NoError(t, c.Put(Key("m", "a"), "m", []float32{1, 2}))
	require.NoError(t, c.Put(Key("m", "b"), "m", []float32{3, 4}))

	require.NoError(t, c.Clear())

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCache_ClearRefusesForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep me"), 0644))

	err := New(dir).Clear()

	require.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(t.TempDir())

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		i := i
		g.Go(func() error {
			key := Key("m", fmt.Sprintf("text-%d", i%5))
			if err := c.Put(key, "m", []float32{float32(i % 5)}); err != nil {
				return err
			}
			if _, ok := c.Get(key); !ok {
				return fmt.Errorf("missing key for %d", i)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < 5; i++ {
		got, ok := c.Get(Key("m", fmt.Sprintf("text-%d", i)))
		require.True(t, ok)
		assert.Equal(t, []float32{float32(i)}, got)
	}
}
