package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"ldurand/adidasharvester/internal/fetch"
	"ldurand/adidasharvester/internal/metrics"
	"ldurand/adidasharvester/logger"
	errs "ldurand/adidasharvester/pkg/errors"
)

// Acquirer downloads product images and re-encodes them to JPEG at a
// deterministic local path.
type Acquirer struct {
	client  *fetch.Client
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewAcquirer builds an image acquirer on top of the fetch client.
func NewAcquirer(client *fetch.Client, m *metrics.Metrics) *Acquirer {
	return &Acquirer{
		client:  client,
		metrics: m,
		log:     logger.ForComponent("images"),
	}
}

// Acquire fetches sourceURL, decodes it and saves it as JPEG at localPath,
// creating parent directories as needed. A non-nil error means nothing was
// saved; callers treat it as non-fatal for the product.
func (a *Acquirer) Acquire(sourceURL, localPath string) error {
	body, err := a.client.Get(sourceURL)
	if err != nil {
		a.log.Warn().Str("url", sourceURL).Err(err).Msg("Image fetch failed")
		return err
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		a.log.Warn().Str("url", sourceURL).Err(err).Msg("Image decode failed")
		return errs.NewParsing(sourceURL, "decode image", err)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return errs.NewStorage(localPath, "create image directory", err)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return errs.NewStorage(localPath, "create image file", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, nil); err != nil {
		os.Remove(localPath)
		return errs.NewStorage(localPath, "encode JPEG", err)
	}

	a.metrics.IncImages()
	a.log.Debug().
		Str("url", sourceURL).
		Str("path", localPath).
		Str("source_format", format).
		Msg("Image saved")
	return nil
}
