package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"ldurand/adidasharvester/internal/crawler"
	"ldurand/adidasharvester/logger"
	errs "ldurand/adidasharvester/pkg/errors"
)

// LinkStore persists discovered product links and codes to parallel
// append-only files per target. Appends are deduplicated against the file's
// full history, so repeated crawls never grow the files with duplicates.
type LinkStore struct {
	root string
	log  *logger.Logger
}

// NewLinkStore creates a link store rooted at root.
func NewLinkStore(root string) *LinkStore {
	return &LinkStore{
		root: root,
		log:  logger.ForComponent("linkstore"),
	}
}

// BasePath returns the per-target path stem under the store root.
func (s *LinkStore) BasePath(target crawler.Target) string {
	return filepath.Join(s.root, target.Country, target.Gender, target.Category)
}

// Append writes every reference whose link is not already persisted for the
// target, one line per entry at the same ordinal position in the links and
// codes files. It returns the number of references written.
func (s *LinkStore) Append(target crawler.Target, refs []crawler.ProductRef) (int, error) {
	base := s.BasePath(target)
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return 0, errs.NewStorage(target.Key(), "create output directory", err)
	}

	existing, err := loadLineSet(base + "_links.txt")
	if err != nil {
		return 0, err
	}

	linksFile, err := os.OpenFile(base+"_links.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, errs.NewStorage(target.Key(), "open links file", err)
	}
	defer linksFile.Close()

	codesFile, err := os.OpenFile(base+"_codes.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, errs.NewStorage(target.Key(), "open codes file", err)
	}
	defer codesFile.Close()

	added := 0
	for _, ref := range refs {
		if _, seen := existing[ref.Link]; seen {
			continue
		}
		existing[ref.Link] = struct{}{}

		if _, err := fmt.Fprintln(linksFile, ref.Link); err != nil {
			return added, errs.NewStorage(target.Key(), "append link", err)
		}
		if _, err := fmt.Fprintln(codesFile, ref.Code); err != nil {
			return added, errs.NewStorage(target.Key(), "append code", err)
		}
		added++
	}

	s.log.Info().
		Str("target", target.Key()).
		Int("discovered", len(refs)).
		Int("added", added).
		Msg("Links persisted")
	return added, nil
}

// loadLineSet reads a line-oriented file into a set. A missing file yields an
// empty set.
func loadLineSet(path string) (map[string]struct{}, error) {
	set := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, errs.NewStorage(path, "read existing links", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			set[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.NewStorage(path, "scan existing links", err)
	}
	return set, nil
}

// ReadCodes returns the non-empty code lines of a codes file.
func ReadCodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewStorage(path, "open codes file", err)
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			codes = append(codes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.NewStorage(path, "scan codes file", err)
	}
	return codes, nil
}
