package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInfofWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.now = func() time.Time { return time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC) }

	l.Infof("starting user %d", 3)

	line := buf.String()
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "starting user 3")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestWarnfAndErrorfUseDistinctLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Warnf("slow query: %s", "SELECT 1")
	l.Errorf("connect failed: %s", "refused")

	out := buf.String()
	assert.Contains(t, out, "[WARN] slow query: SELECT 1")
	assert.Contains(t, out, "[ERROR] connect failed: refused")
}
