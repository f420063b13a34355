package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwnholic/plotbook/internal/config"
)

const localBook = `{
  "id": "bk_local",
  "title": "The Silent Valley",
  "genre": "Fantasy",
  "author": "Ada",
  "chapters": [
    {"title": "The Awakening", "content": "Mara woke to silence.", "position": 0, "wordCount": 4}
  ]
}`

func newProcess(t *testing.T, apiURL string, f *Flag) *exportProcess {
	t.Helper()
	cfg := config.Default()
	cfg.HTTP.RetryCount = 0
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	ep, err := NewExportProcess(cfg, f)
	require.NoError(t, err)
	t.Cleanup(ep.Close)
	return ep
}

func TestProcessExportLocalFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.json")
	require.NoError(t, os.WriteFile(input, []byte(localBook), 0o644))
	out := filepath.Join(dir, "out")

	ep := newProcess(t, "", &Flag{Input: input, OutputDir: out, MaxConcurrent: 1})
	require.NoError(t, ep.processExport(context.Background()))

	data, err := os.ReadFile(filepath.Join(out, "The Silent Valley.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestProcessExportSkipsExistingUnlessForced(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.json")
	require.NoError(t, os.WriteFile(input, []byte(localBook), 0o644))
	target := filepath.Join(dir, "The Silent Valley.pdf")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	ep := newProcess(t, "", &Flag{Input: input, OutputDir: dir, MaxConcurrent: 1})
	require.NoError(t, ep.processExport(context.Background()))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	ep = newProcess(t, "", &Flag{Input: input, OutputDir: dir, MaxConcurrent: 1, Force: true})
	require.NoError(t, ep.processExport(context.Background()))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestProcessBatchMixesIDsAndFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/book/bk_remote", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "bk_remote", "title": "Remote Tale", "author": "Lin"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "book.json")
	require.NoError(t, os.WriteFile(input, []byte(localBook), 0o644))
	out := filepath.Join(dir, "out")

	ep := newProcess(t, srv.URL, &Flag{
		BookRefs:      []string{input, "bk_remote", "bk_missing"},
		OutputDir:     out,
		MaxConcurrent: 2,
	})
	err := ep.processExport(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bk_missing")
	assert.Contains(t, err.Error(), "completed with 1 errors")

	assert.FileExists(t, filepath.Join(out, "The Silent Valley.pdf"))
	assert.FileExists(t, filepath.Join(out, "Remote Tale.pdf"))
}

func TestExportOneClaimsOutputPath(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(first, []byte(localBook), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(localBook), 0o644))

	ep := newProcess(t, "", &Flag{OutputDir: dir, MaxConcurrent: 1, Force: true})
	var fileCache, claimed sync.Map

	res, err := ep.exportOne(context.Background(), first, &fileCache, &claimed)
	require.NoError(t, err)
	assert.False(t, res.skipped)
	assert.Equal(t, 1, res.pages)

	res, err = ep.exportOne(context.Background(), second, &fileCache, &claimed)
	require.NoError(t, err)
	assert.True(t, res.skipped)
	assert.Zero(t, res.pages)

	owner, ok := claimed.Load(filepath.Join(dir, "The Silent Valley.pdf"))
	require.True(t, ok)
	assert.Equal(t, first, owner)
}

func TestProcessBatchSameTitleWritesOnce(t *testing.T) {
	dir := t.TempDir()
	refs := make([]string, 4)
	for i := range refs {
		refs[i] = filepath.Join(dir, fmt.Sprintf("copy-%d.json", i))
		require.NoError(t, os.WriteFile(refs[i], []byte(localBook), 0o644))
	}
	out := filepath.Join(dir, "out")

	ep := newProcess(t, "", &Flag{BookRefs: refs, OutputDir: out, MaxConcurrent: 4, Force: true})
	require.NoError(t, ep.processExport(context.Background()))

	data, err := os.ReadFile(filepath.Join(out, "The Silent Valley.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("bk_1\n\n# comment\n  bk_2  \nbooks/three.json\n"), 0o644))

	refs, err := readBatchFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bk_1", "bk_2", "books/three.json"}, refs)

	_, err = readBatchFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	cfg, err := loadConfig(&Flag{APIURL: "https://plots.example.com", LogLevel: "debug", ServeAddr: ":9999"})
	require.NoError(t, err)

	assert.Equal(t, "https://plots.example.com", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9999", cfg.Server.Address)

	_, err = loadConfig(&Flag{LogLevel: "chatty"})
	assert.Error(t, err)
}

func TestNewExportProcessBadCover(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.CoverImagePath = filepath.Join(t.TempDir(), "missing.png")

	_, err := NewExportProcess(cfg, &Flag{})
	assert.Error(t, err)
}

func TestIsFileExistsCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	var cache sync.Map

	assert.False(t, isFileExists(path, &cache))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.False(t, isFileExists(path, &cache), "cached negative result")
}
