package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/stay_dashboard/pipeline"
)

func TestStoreUpload(t *testing.T) {
	dir := t.TempDir()
	cache := pipeline.NewCache(filepath.Join(dir, "none.csv"), pipeline.Options{}, zerolog.Nop())

	ds, err := storeUpload(dir, "../../etc/new.csv", strings.NewReader(dischargesCSV), pipeline.Options{}, cache, zerolog.Nop())
	require.NoError(t, err)
	path := ds.Source
	assert.Equal(t, "new.csv", filepath.Base(path))
	assert.Equal(t, dir, filepath.Dir(filepath.Dir(path)))
	assert.Equal(t, path, cache.Source())
	assert.Equal(t, 5, ds.Len())

	cached, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, ds, cached)
	assert.Zero(t, cache.Loads(), "the upload is parsed once")

	_, err = storeUpload(dir, "bad.csv", strings.NewReader("Length of Stay,Age Group,Gender,Type of Admission\nx,A,F,Urgent\n"), pipeline.Options{}, cache, zerolog.Nop())
	assert.ErrorIs(t, err, pipeline.ErrNoRows)
	assert.Equal(t, path, cache.Source())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRemoveOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "a", "old.csv")
	active := filepath.Join(dir, "b", "active.csv")
	fresh := filepath.Join(dir, "c", "fresh.csv")
	for _, p := range []string{old, active, fresh} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(active, past, past))

	require.NoError(t, removeOldFiles(dir, time.Now().Add(-2*time.Hour), active, zerolog.Nop()))

	assert.NoFileExists(t, old)
	assert.NoDirExists(t, filepath.Dir(old))
	assert.FileExists(t, active)
	assert.FileExists(t, fresh)
}

func TestRemoveOldFiles_EmptyDirs(t *testing.T) {
	dir := t.TempDir()
	// an upload dir between MkdirAll and Create
	pending := filepath.Join(dir, "pending")
	stale := filepath.Join(dir, "stale")
	require.NoError(t, os.MkdirAll(pending, 0755))
	require.NoError(t, os.MkdirAll(stale, 0755))
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(stale, past, past))

	require.NoError(t, removeOldFiles(dir, time.Now().Add(-2*time.Hour), "", zerolog.Nop()))

	assert.DirExists(t, pending)
	assert.NoDirExists(t, stale)
}
