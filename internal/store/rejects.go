package store

import (
	"fmt"
	"os"
	"sync"

	"ldurand/adidasharvester/internal/crawler"
	"ldurand/adidasharvester/logger"
)

// RejectionLog appends one line per rejected code to a shared append-only
// file, accumulating history across runs. Record never fails the caller: a
// write error is logged and swallowed.
type RejectionLog struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

// NewRejectionLog creates a rejection log writing to path.
func NewRejectionLog(path string) *RejectionLog {
	return &RejectionLog{
		path: path,
		log:  logger.ForComponent("rejects"),
	}
}

// Record appends a rejection line for code with its target context and the
// failure reason.
func (r *RejectionLog) Record(code string, target crawler.Target, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.log.Error().Str("code", code).Err(err).Msg("Cannot open rejection log")
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s (%s) - %s\n", code, target.Key(), reason)
	if _, err := f.WriteString(line); err != nil {
		r.log.Error().Str("code", code).Err(err).Msg("Cannot append rejection line")
	}
}
