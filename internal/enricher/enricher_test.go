package enricher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ldurand/adidasharvester/config"
	"ldurand/adidasharvester/internal/crawler"
	"ldurand/adidasharvester/internal/fetch"
	"ldurand/adidasharvester/internal/images"
	"ldurand/adidasharvester/internal/store"
	"ldurand/adidasharvester/services/cache"
)

var frTarget = crawler.Target{Country: "fr", Gender: "hommes", Category: "chaussures"}

// capturePublisher records published messages in memory.
type capturePublisher struct {
	keys     []string
	payloads [][]byte
}

func (p *capturePublisher) Publish(key string, message []byte) error {
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, message)
	return nil
}

func (p *capturePublisher) TrimStreams() error { return nil }
func (p *capturePublisher) Close() error      { return nil }

type fixture struct {
	enricher    *Enricher
	recordsRoot string
	imagesRoot  string
	rejectsPath string
	imageHits   *int64
	published   *capturePublisher
}

// apiHandler serves product payloads by code and a valid JPEG for every
// /img/ path.
func newFixture(t *testing.T, products map[string]string) (*fixture, *httptest.Server) {
	t.Helper()

	var imageHits int64
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/img/") {
			atomic.AddInt64(&imageHits, 1)
			if strings.Contains(r.URL.Path, "missing") {
				http.NotFound(w, r)
				return
			}
			var buf bytes.Buffer
			require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil))
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(buf.Bytes())
			return
		}

		code := strings.TrimPrefix(r.URL.Path, "/product/")
		payload, ok := products[code]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, strings.ReplaceAll(payload, "{{base}}", server.URL))
	}))
	t.Cleanup(server.Close)

	cfg := config.Config{RequestTimeout: 5 * time.Second, MaxRetries: 1, PageSize: 48}
	client := fetch.NewClient(cfg, cache.NewMemoryService(), nil)

	root := t.TempDir()
	f := &fixture{
		recordsRoot: filepath.Join(root, "products"),
		imagesRoot:  filepath.Join(root, "images"),
		rejectsPath: filepath.Join(root, "rejected_codes.txt"),
		imageHits:   &imageHits,
		published:   &capturePublisher{},
	}
	f.enricher = New(
		client,
		server.URL+"/product/",
		f.imagesRoot,
		store.NewRecordWriter(f.recordsRoot),
		store.NewRejectionLog(f.rejectsPath),
		images.NewAcquirer(client, nil),
		NewLedger(),
		f.published,
		nil,
	)
	return f, server
}

func (f *fixture) readRecord(t *testing.T, country, gender, code string) ProductRecord {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.recordsRoot, country, gender, code+".json"))
	require.NoError(t, err)
	var record ProductRecord
	require.NoError(t, json.Unmarshal(data, &record))
	return record
}

func (f *fixture) rejections(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.rejectsPath)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

const stanSmith = `{
	"product": {
		"id": "IF1234",
		"title": "Chaussure Stan Smith",
		"url": "/chaussure-stan-smith/IF1234.html",
		"image": "{{base}}/img/main.jpg",
		"hoverImage": "{{base}}/img/hover.jpg",
		"priceData": {"price": 100}
	}
}`

func TestEnrichWritesRecord(t *testing.T) {
	f, _ := newFixture(t, map[string]string{"IF1234": stanSmith})

	require.NoError(t, f.enricher.Enrich("IF1234", frTarget))

	record := f.readRecord(t, "fr", "hommes", "IF1234")
	assert.Equal(t, "IF1234", record.ID)
	assert.Equal(t, "Chaussure Stan Smith", record.Name)
	assert.Equal(t, "adidas", record.Brand)
	assert.Equal(t, "shoes", record.Category)
	assert.Equal(t, "hommes", record.Section)
	assert.Equal(t, "fr", record.Country)
	assert.Equal(t, "https://www.adidas.fr/chaussure-stan-smith/IF1234.html", record.URL)
	assert.Equal(t, 100.0, record.Price.Original)
	assert.Equal(t, 100.0, record.Price.Current)
	assert.False(t, record.Price.IsDiscount)
	assert.Equal(t, "EUR", record.Price.Currency)

	require.Len(t, record.Images, 2)
	assert.Equal(t, "main", record.Images[0].Role)
	assert.Equal(t, "hover", record.Images[1].Role)
	for _, img := range record.Images {
		_, err := os.Stat(filepath.FromSlash(img.LocalPath))
		assert.NoError(t, err)
	}

	assert.Empty(t, f.rejections(t))
}

func TestEnrichSalePriceMarksDiscount(t *testing.T) {
	payload := `{
		"product": {
			"id": "GZ5678",
			"title": "Veste",
			"url": "/veste/GZ5678.html",
			"priceData": {"price": 100, "salePrice": 80}
		}
	}`
	f, _ := newFixture(t, map[string]string{"GZ5678": payload})

	require.NoError(t, f.enricher.Enrich("GZ5678", frTarget))

	record := f.readRecord(t, "fr", "hommes", "GZ5678")
	assert.Equal(t, 100.0, record.Price.Original)
	assert.Equal(t, 80.0, record.Price.Current)
	assert.True(t, record.Price.IsDiscount)
}

func TestEnrichHTTPErrorRejects(t *testing.T) {
	f, _ := newFixture(t, nil)

	require.NoError(t, f.enricher.Enrich("ZZ0000", frTarget))

	rejections := f.rejections(t)
	assert.Contains(t, rejections, "ZZ0000 (fr/hommes/chaussures) - HTTP 404")

	_, err := os.Stat(filepath.Join(f.recordsRoot, "fr", "hommes", "ZZ0000.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnrichMissingProductIDRejects(t *testing.T) {
	f, _ := newFixture(t, map[string]string{"AA1111": `{"product": {"title": "Nameless"}}`})

	require.NoError(t, f.enricher.Enrich("AA1111", frTarget))

	assert.Contains(t, f.rejections(t), "AA1111 (fr/hommes/chaussures) - no product id")
}

func TestEnrichMalformedPayloadIsSoftSkip(t *testing.T) {
	f, _ := newFixture(t, map[string]string{"AA1111": `{"product": `})

	require.NoError(t, f.enricher.Enrich("AA1111", frTarget))

	assert.Empty(t, f.rejections(t))
	_, err := os.Stat(filepath.Join(f.recordsRoot, "fr", "hommes", "AA1111.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnrichDedupsByProductID(t *testing.T) {
	// two input codes resolve to the same upstream product
	f, _ := newFixture(t, map[string]string{
		"IF1234":    stanSmith,
		"IF1234-V2": stanSmith,
	})

	require.NoError(t, f.enricher.Enrich("IF1234", frTarget))
	require.NoError(t, f.enricher.Enrich("IF1234-V2", frTarget))

	_, err := os.Stat(filepath.Join(f.recordsRoot, "fr", "hommes", "IF1234.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.recordsRoot, "fr", "hommes", "IF1234-V2.json"))
	assert.True(t, os.IsNotExist(err))

	// images are fetched once per product, not per code
	assert.Equal(t, int64(2), atomic.LoadInt64(f.imageHits))
	assert.Empty(t, f.rejections(t))
}

func TestEnrichPublishesOnlyNewRecords(t *testing.T) {
	f, _ := newFixture(t, map[string]string{
		"IF1234":    stanSmith,
		"IF1234-V2": stanSmith,
	})

	require.NoError(t, f.enricher.Enrich("IF1234", frTarget))
	require.NoError(t, f.enricher.Enrich("IF1234-V2", frTarget)) // deduped
	require.NoError(t, f.enricher.Enrich("ZZ0000", frTarget))    // rejected

	require.Len(t, f.published.keys, 1)
	assert.Equal(t, "fr", f.published.keys[0])

	var record ProductRecord
	require.NoError(t, json.Unmarshal(f.published.payloads[0], &record))
	assert.Equal(t, "IF1234", record.ID)
}

func TestEnrichEmptyCodeIsNoop(t *testing.T) {
	f, _ := newFixture(t, nil)

	require.NoError(t, f.enricher.Enrich("", frTarget))

	assert.Empty(t, f.rejections(t))
}

func TestEnrichMissingHoverImage(t *testing.T) {
	payload := `{
		"product": {
			"id": "HQ9999",
			"title": "Sac",
			"url": "/sac/HQ9999.html",
			"image": "{{base}}/img/main.jpg",
			"hoverImage": "{{base}}/img/missing.jpg",
			"priceData": {"price": 30}
		}
	}`
	f, _ := newFixture(t, map[string]string{"HQ9999": payload})

	target := crawler.Target{Country: "fr", Gender: "femmes", Category: "accessoires"}
	require.NoError(t, f.enricher.Enrich("HQ9999", target))

	record := f.readRecord(t, "fr", "femmes", "HQ9999")
	require.Len(t, record.Images, 1)
	assert.Equal(t, "main", record.Images[0].Role)
	assert.Equal(t, "accessories", record.Category)
}
