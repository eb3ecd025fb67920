// Package reporter holds the Runner's completion-reporting sinks: a
// no-op sink, an in-memory sink for tests, and a streaming JSON-lines
// file sink.
package reporter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"defio/internal/workload"
)

// Reporter aliases workload.Reporter so callers that only need a sink
// implementation can import this package alone. The interface itself
// lives in workload to avoid an import cycle: these concrete sinks
// already depend on workload.QueryReport, and the Runner depends on
// the interface.
type Reporter = workload.Reporter

// BlankReporter discards every report.
type BlankReporter struct{}

func (BlankReporter) Report(workload.QueryReport) error { return nil }
func (BlankReporter) Done() error                       { return nil }

// BufferingReporter accumulates reports in memory, for tests and small
// runs that want to inspect results directly rather than stream them.
type BufferingReporter struct {
	mu      sync.Mutex
	reports []workload.QueryReport
	done    bool
}

func NewBufferingReporter() *BufferingReporter {
	return &BufferingReporter{}
}

func (r *BufferingReporter) Report(report workload.QueryReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *BufferingReporter) Done() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	return nil
}

// Reports returns a snapshot of every report collected so far.
func (r *BufferingReporter) Reports() []workload.QueryReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]workload.QueryReport(nil), r.reports...)
}

// IsDone reports whether Done has been called.
func (r *BufferingReporter) IsDone() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// reportRecord is the on-disk JSON-lines shape of one QueryReport: sql,
// execution_time_seconds, and exactly one of results or error_message.
// A nil Results/ErrorMessage marshals as JSON null.
type reportRecord struct {
	SQL                  string  `json:"sql"`
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
	Results              []any   `json:"results"`
	ErrorMessage         *string `json:"error_message"`
}

// FileReporter streams one JSON object per line to a temp file as
// reports arrive, and renames it to its final path only on Done — so a
// run that crashes mid-stream never leaves a file claiming to be
// complete. If zero reports were ever written, Done removes the temp
// file instead of renaming it (no empty report file is created).
type FileReporter struct {
	mu        sync.Mutex
	dir       string
	tempName  string
	finalName string
	file      *os.File
	writer    *bufio.Writer
	count     int
}

// NewFileReporter creates a report file named "<label>-<timestamp>.temp.txt"
// inside dir, streaming writes to it until Done renames it, dropping
// the ".temp" infix.
func NewFileReporter(dir, label string) (*FileReporter, error) {
	return newFileReporterAt(dir, label, time.Now())
}

func newFileReporterAt(dir, label string, now time.Time) (*FileReporter, error) {
	timestamp := now.UTC().Format("20060102T150405.000000000Z")
	tempName := fmt.Sprintf("%s-%s.temp.txt", label, timestamp)
	finalName := fmt.Sprintf("%s-%s.txt", label, timestamp)

	file, err := os.Create(filepath.Join(dir, tempName))
	if err != nil {
		return nil, fmt.Errorf("reporter: create temp report file: %w", err)
	}
	return &FileReporter{
		dir:       dir,
		tempName:  tempName,
		finalName: finalName,
		file:      file,
		writer:    bufio.NewWriter(file),
	}, nil
}

func (r *FileReporter) Report(report workload.QueryReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := reportRecord{
		SQL:                  report.Query.SQL,
		ExecutionTimeSeconds: report.ExecutionTime.Seconds(),
	}
	if report.Err != nil {
		msg := report.Err.Error()
		record.ErrorMessage = &msg
	} else {
		record.Results = report.Results
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("reporter: marshal report: %w", err)
	}
	if _, err := r.writer.Write(line); err != nil {
		return fmt.Errorf("reporter: write report: %w", err)
	}
	if err := r.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("reporter: write report: %w", err)
	}
	r.count++
	return nil
}

func (r *FileReporter) Done() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writer.Flush(); err != nil {
		return fmt.Errorf("reporter: flush report file: %w", err)
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("reporter: close report file: %w", err)
	}

	tempPath := filepath.Join(r.dir, r.tempName)
	if r.count == 0 {
		return os.Remove(tempPath)
	}
	return os.Rename(tempPath, filepath.Join(r.dir, r.finalName))
}

var (
	_ Reporter = BlankReporter{}
	_ Reporter = (*BufferingReporter)(nil)
	_ Reporter = (*FileReporter)(nil)
)
