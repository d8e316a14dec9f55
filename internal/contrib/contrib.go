// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contrib records DOIs that visitors suggest for the next
// dataset update. The log is a plain text file with one DOI per line.
package contrib

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// ErrEmptyDOI is returned when a submission is blank after trimming.
var ErrEmptyDOI = errors.New("Please enter a DOI before saving.")

// ThankYou is the confirmation shown after a successful submission.
const ThankYou = "DOI is saved. Thank you for contributing to the Cold Spray Hub!"

// contributionsTotal counts accepted submissions.
var contributionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coldspray_hub",
	Subsystem: "contrib",
	Name:      "submissions_total",
	Help:      "Total DOIs appended to the contribution log",
})

// Log appends submissions to a file. Entries are neither validated nor
// deduplicated.
type Log struct {
	path   string
	logger *zap.Logger
}

// NewLog returns a log writing to path. A nil logger is replaced by a
// no-op logger.
func NewLog(path string, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{path: path, logger: logger}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Submit trims doi and appends it as one line. A blank doi returns
// ErrEmptyDOI and leaves the file untouched.
func (l *Log) Submit(doi string) (string, error) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return "", ErrEmptyDOI
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating contribution directory: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening contribution log: %w", err)
	}
	if _, err := f.WriteString(doi + "\n"); err != nil {
		f.Close()
		return "", fmt.Errorf("appending to contribution log: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing contribution log: %w", err)
	}

	contributionsTotal.Inc()
	l.logger.Info("doi submitted", zap.String("doi", doi))
	return doi, nil
}

// Entries returns the logged DOIs in submission order. A missing log has
// no entries.
func (l *Log) Entries() ([]string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening contribution log: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading contribution log: %w", err)
	}
	return out, nil
}
