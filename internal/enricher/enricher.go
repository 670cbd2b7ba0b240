package enricher

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"ldurand/adidasharvester/internal/crawler"
	"ldurand/adidasharvester/internal/fetch"
	"ldurand/adidasharvester/internal/images"
	"ldurand/adidasharvester/internal/metrics"
	"ldurand/adidasharvester/internal/store"
	"ldurand/adidasharvester/logger"
	errs "ldurand/adidasharvester/pkg/errors"
	"ldurand/adidasharvester/services/publisher"
)

// Enricher resolves a persisted product code into a full product record:
// API call, price resolution, image acquisition, record write.
type Enricher struct {
	client     *fetch.Client
	apiBase    string
	imagesRoot string
	records    *store.RecordWriter
	rejects    *store.RejectionLog
	acquirer   *images.Acquirer
	ledger     *Ledger
	publisher  publisher.Publisher
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// New builds an enricher. pub may be nil to disable publishing.
func New(
	client *fetch.Client,
	apiBase string,
	imagesRoot string,
	records *store.RecordWriter,
	rejects *store.RejectionLog,
	acquirer *images.Acquirer,
	ledger *Ledger,
	pub publisher.Publisher,
	m *metrics.Metrics,
) *Enricher {
	return &Enricher{
		client:     client,
		apiBase:    apiBase,
		imagesRoot: imagesRoot,
		records:    records,
		rejects:    rejects,
		acquirer:   acquirer,
		ledger:     ledger,
		publisher:  pub,
		metrics:    m,
		log:        logger.ForComponent("enricher"),
	}
}

// Enrich processes one product code in its target context. Failed codes are
// recorded in the rejection log; duplicates within the country run are
// skipped silently. Only storage failures surface as errors.
func (e *Enricher) Enrich(code string, target crawler.Target) error {
	if code == "" {
		e.log.Debug().Str("target", target.Key()).Msg("Empty code skipped")
		return nil
	}

	var payload apiResponse
	if err := e.client.GetJSON(e.apiBase+code, &payload); err != nil {
		switch {
		case errs.StatusCode(err) != 0:
			e.reject(code, target, fmt.Sprintf("HTTP %d", errs.StatusCode(err)))
		case errs.TypeLabel(err) == string(errs.ErrorTypeParsing):
			// malformed payload, not worth a ledger entry
			e.log.Warn().Str("code", code).Err(err).Msg("Unparsable product payload skipped")
		default:
			e.log.Warn().Str("code", code).Err(err).Msg("Product fetch failed")
			e.reject(code, target, "fetch failed")
		}
		return nil
	}

	product := payload.Product
	if product.ID == "" {
		e.reject(code, target, "no product id")
		return nil
	}

	if !e.ledger.MarkSeen(target.Country, product.ID) {
		e.log.Debug().
			Str("code", code).
			Str("product_id", product.ID).
			Str("country", target.Country).
			Msg("Duplicate product id skipped")
		e.metrics.IncProduct("deduped")
		return nil
	}

	record := e.buildRecord(code, target, product)
	e.acquireImages(&record, product)

	if err := e.records.Write(target.Country, target.Gender, code, record); err != nil {
		return err
	}
	e.metrics.IncProduct("enriched")

	e.publish(target.Country, record)

	e.log.Info().
		Str("code", code).
		Str("product_id", product.ID).
		Str("target", target.Key()).
		Msg("Product enriched")
	return nil
}

func (e *Enricher) buildRecord(code string, target crawler.Target, product apiProduct) ProductRecord {
	original := 0.0
	if product.PriceData.Price != nil {
		original = *product.PriceData.Price
	}
	current := original
	if product.PriceData.SalePrice != nil {
		current = *product.PriceData.SalePrice
	}

	canonicalURL := ""
	if product.URL != "" {
		canonicalURL = fmt.Sprintf("https://www.adidas.%s/%s",
			target.Country, strings.TrimLeft(product.URL, "/"))
	}

	return ProductRecord{
		ID:       product.ID,
		Name:     product.Title,
		Brand:    "adidas",
		Color:    "",
		Category: TranslateCategory(target.Category),
		Section:  target.Gender,
		Country:  target.Country,
		Price: PriceInfo{
			Original:   original,
			Current:    current,
			IsDiscount: current != original,
			Currency:   CurrencyFor(target.Country),
		},
		URL:         canonicalURL,
		ProductCode: product.ID,
		Images:      []ImageRef{},
	}
}

// acquireImages downloads the main and hover images in that order. A
// descriptor is appended only after the acquirer confirms the file was
// saved, so the record never references a missing path.
func (e *Enricher) acquireImages(record *ProductRecord, product apiProduct) {
	roles := []struct {
		role string
		url  string
	}{
		{"main", product.Image},
		{"hover", product.HoverImage},
	}

	for _, r := range roles {
		if r.url == "" {
			continue
		}
		localPath := filepath.Join(e.imagesRoot, record.ID, r.role+".jpg")
		if err := e.acquirer.Acquire(r.url, localPath); err != nil {
			continue
		}
		record.Images = append(record.Images, ImageRef{
			Role:      r.role,
			SourceURL: r.url,
			LocalPath: filepath.ToSlash(localPath),
		})
	}
}

func (e *Enricher) publish(country string, record ProductRecord) {
	if e.publisher == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		e.log.Error().Err(err).Msg("Cannot marshal record for publishing")
		return
	}
	if err := e.publisher.Publish(country, data); err != nil {
		e.log.Error().Err(err).Msg("Publish failed")
	}
}

func (e *Enricher) reject(code string, target crawler.Target, reason string) {
	e.log.Warn().
		Str("code", code).
		Str("target", target.Key()).
		Str("reason", reason).
		Msg("Code rejected")
	e.rejects.Record(code, target, reason)
	e.metrics.IncProduct("rejected")
}
