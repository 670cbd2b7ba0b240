package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ldurand/adidasharvester/logger"
	errs "ldurand/adidasharvester/pkg/errors"
)

// RecordWriter persists one structured product record per input code at
// <root>/<country>/<gender>/<code>.json.
type RecordWriter struct {
	root string
	log  *logger.Logger
}

// NewRecordWriter creates a record writer rooted at root.
func NewRecordWriter(root string) *RecordWriter {
	return &RecordWriter{
		root: root,
		log:  logger.ForComponent("records"),
	}
}

// Path returns the record file path for a code.
func (w *RecordWriter) Path(country, gender, code string) string {
	return filepath.Join(w.root, country, gender, code+".json")
}

// Write marshals record as indented JSON and writes it, creating parent
// directories as needed.
func (w *RecordWriter) Write(country, gender, code string, record interface{}) error {
	path := w.Path(country, gender, code)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.NewStorage(path, "create record directory", err)
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return errs.NewStorage(path, "marshal record", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.NewStorage(path, "write record", err)
	}

	w.log.Debug().Str("path", path).Msg("Record written")
	return nil
}
