package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ldurand/adidasharvester/internal/crawler"
)

var testTarget = crawler.Target{Country: "fr", Gender: "hommes", Category: "chaussures"}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestLinkStoreAppend(t *testing.T) {
	root := t.TempDir()
	store := NewLinkStore(root)

	refs := []crawler.ProductRef{
		{Link: "https://www.adidas.fr/a/AA1111.html", Code: "AA1111"},
		{Link: "https://www.adidas.fr/b/BB2222.html", Code: "BB2222"},
	}

	added, err := store.Append(testTarget, refs)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	base := filepath.Join(root, "fr", "hommes", "chaussures")
	links := readLines(t, base+"_links.txt")
	codes := readLines(t, base+"_codes.txt")

	require.Len(t, links, 2)
	require.Len(t, codes, 2)
	// parallel files stay line-index aligned
	assert.Equal(t, "https://www.adidas.fr/a/AA1111.html", links[0])
	assert.Equal(t, "AA1111", codes[0])
	assert.Equal(t, "BB2222", codes[1])
}

func TestLinkStoreAppendIsIdempotent(t *testing.T) {
	root := t.TempDir()
	store := NewLinkStore(root)

	refs := []crawler.ProductRef{
		{Link: "https://www.adidas.fr/a/AA1111.html", Code: "AA1111"},
	}

	for i := 0; i < 3; i++ {
		_, err := store.Append(testTarget, refs)
		require.NoError(t, err)
	}

	// a fresh store instance against the same files must still dedup
	added, err := NewLinkStore(root).Append(testTarget, refs)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	base := filepath.Join(root, "fr", "hommes", "chaussures")
	assert.Len(t, readLines(t, base+"_links.txt"), 1)
	assert.Len(t, readLines(t, base+"_codes.txt"), 1)
}

func TestLinkStoreAppendDedupsWithinBatch(t *testing.T) {
	root := t.TempDir()
	store := NewLinkStore(root)

	refs := []crawler.ProductRef{
		{Link: "https://www.adidas.fr/a/AA1111.html", Code: "AA1111"},
		{Link: "https://www.adidas.fr/a/AA1111.html", Code: "AA1111"},
	}

	added, err := store.Append(testTarget, refs)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestReadCodes(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "chaussures_codes.txt")
	require.NoError(t, os.WriteFile(path, []byte("AA1111\n\nBB2222\n"), 0o644))

	codes, err := ReadCodes(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AA1111", "BB2222"}, codes)
}

func TestRejectionLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejected_codes.txt")
	log := NewRejectionLog(path)

	log.Record("AA1111", testTarget, "HTTP 404")
	log.Record("BB2222", testTarget, "no product id")

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "AA1111 (fr/hommes/chaussures) - HTTP 404", lines[0])
	assert.Equal(t, "BB2222 (fr/hommes/chaussures) - no product id", lines[1])
}

func TestRecordWriter(t *testing.T) {
	root := t.TempDir()
	writer := NewRecordWriter(root)

	record := map[string]string{"id": "ABC123"}
	require.NoError(t, writer.Write("fr", "hommes", "AA1111", record))

	path := writer.Path("fr", "hommes", "AA1111")
	assert.Equal(t, filepath.Join(root, "fr", "hommes", "AA1111.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "ABC123"`)
}
