package output

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Sink receives finished records.
type Sink interface {
	Append(r Record) error
}

// TSVSink appends records to a tab-separated file. The header is written at
// most once per sink; a file that already has content is assumed to carry one.
// The header of an existing file is not checked against Columns.
type TSVSink struct {
	path   string
	log    *slog.Logger
	header atomic.Bool
	mu     sync.Mutex
}

// NewTSVSink creates a sink writing to path. Nothing is opened until the first Append.
func NewTSVSink(path string, log *slog.Logger) *TSVSink {
	return &TSVSink{path: path, log: log.With("component", "output")}
}

// Append writes one row, preceded by the header on the sink's first write to
// an empty file. The file is opened and closed on every call.
func (s *TSVSink) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if !s.header.Load() {
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("stat output: %w", err)
		}
		if info.Size() > 0 {
			s.log.Info("appending to existing output, header assumed present", "path", s.path, "bytes", info.Size())
		} else if err := w.Write(Columns()); err != nil {
			_ = f.Close()
			return fmt.Errorf("write header: %w", err)
		}
		s.header.Store(true)
	}

	if err := w.Write(sanitize(r.Row())); err != nil {
		_ = f.Close()
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// Close is a no-op; every Append closes the file itself.
func (s *TSVSink) Close() error {
	return nil
}

var fieldReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// sanitize keeps each field on one line and free of delimiters.
func sanitize(row []string) []string {
	for i, v := range row {
		row[i] = fieldReplacer.Replace(v)
	}
	return row
}
