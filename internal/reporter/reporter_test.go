package reporter

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defio/internal/workload"
)

func sampleReport(t *testing.T) workload.QueryReport {
	t.Helper()
	now := time.Now()
	sq := workload.Query{SQL: "SELECT 1", Schedule: workload.Once{At: now}}.
		Start(workload.NewUser(0), now, now)
	report, err := sq.CreateReport(now, 5*time.Millisecond, []any{1}, nil)
	require.NoError(t, err)
	return report
}

func TestBufferingReporterAccumulatesReports(t *testing.T) {
	r := NewBufferingReporter()
	require.NoError(t, r.Report(sampleReport(t)))
	require.NoError(t, r.Report(sampleReport(t)))
	require.NoError(t, r.Done())

	assert.Len(t, r.Reports(), 2)
	assert.True(t, r.IsDone())
}

func reportFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestFileReporterWritesJSONLinesAndRenamesOnDone(t *testing.T) {
	dir := t.TempDir()

	r, err := NewFileReporter(dir, "worker-3")
	require.NoError(t, err)
	require.NoError(t, r.Report(sampleReport(t)))
	require.NoError(t, r.Report(sampleReport(t)))
	require.NoError(t, r.Done())

	names := reportFiles(t, dir)
	require.Len(t, names, 1)
	assert.True(t, strings.HasPrefix(names[0], "worker-3-"))
	assert.True(t, strings.HasSuffix(names[0], ".txt"))
	assert.False(t, strings.HasSuffix(names[0], ".temp.txt"))

	f, err := os.Open(filepath.Join(dir, names[0]))
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &decoded))
		assert.Contains(t, decoded, "sql")
		assert.Contains(t, decoded, "execution_time_seconds")
		assert.Contains(t, decoded, "results")
		assert.Contains(t, decoded, "error_message")
		assert.Nil(t, decoded["error_message"])
	}
	assert.Equal(t, 2, lines)
}

func TestFileReporterRecordsErrorMessageInsteadOfResults(t *testing.T) {
	dir := t.TempDir()

	r, err := NewFileReporter(dir, "worker-0")
	require.NoError(t, err)

	now := time.Now()
	sq := workload.Query{SQL: "SELECT 1", Schedule: workload.Once{At: now}}.
		Start(workload.NewUser(0), now, now)
	failed, err := sq.CreateReport(now, 5*time.Millisecond, nil, errors.New("timeout"))
	require.NoError(t, err)
	require.NoError(t, r.Report(failed))
	require.NoError(t, r.Done())

	names := reportFiles(t, dir)
	require.Len(t, names, 1)

	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data[:len(data)-1], &decoded))
	assert.Nil(t, decoded["results"])
	assert.Equal(t, "timeout", decoded["error_message"])
}

func TestFileReporterRemovesTempFileWhenNoReportsWritten(t *testing.T) {
	dir := t.TempDir()

	r, err := NewFileReporter(dir, "empty")
	require.NoError(t, err)
	require.NoError(t, r.Done())

	assert.Empty(t, reportFiles(t, dir))
}

func TestBlankReporterDiscardsEverything(t *testing.T) {
	r := BlankReporter{}
	assert.NoError(t, r.Report(sampleReport(t)))
	assert.NoError(t, r.Done())
}
