// Package filesystem reads station tables and prepares output directories.
package filesystem

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/precip-maps/internal/domain"
)

// ErrDirectoryCreation is returned when an output directory cannot be made.
var ErrDirectoryCreation = errors.New("create directory")

// Store implements the orchestrator's file-backed stages.
type Store struct {
	logger *slog.Logger
}

// NewStore creates a Store that logs through logger.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// EnsureDirectory creates path if it does not exist and returns it. Only one
// level is created: a missing parent is an error.
func (s *Store) EnsureDirectory(path string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return "", fmt.Errorf("%w %s: exists and is not a directory", ErrDirectoryCreation, path)
		}
		return path, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w %s: %w", ErrDirectoryCreation, path, err)
	}

	s.logger.Info("creating output directory", "path", path)
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return path, nil
		}
		return "", fmt.Errorf("%w %s: %w", ErrDirectoryCreation, path, err)
	}
	return path, nil
}

// LoadRecords reads a comma-separated station table. The first line is a
// header and is always dropped; blank lines are ignored. Fields are not
// validated here.
func (s *Store) LoadRecords(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station data: %w", err)
	}
	defer f.Close()

	var records []domain.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, domain.Record(strings.Split(line, ",")))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read station data %s: %w", path, err)
	}

	s.logger.Debug("station data loaded", "path", path, "records", len(records))
	return records, nil
}
