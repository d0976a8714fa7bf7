package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkRecordsStagesInOrder(t *testing.T) {
	p := NewProfiler(nil)
	p.Begin()

	time.Sleep(2 * time.Millisecond)
	d := p.Mark("parse")
	p.Mark("upload")

	stages := p.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "parse", stages[0].Stage)
	assert.Equal(t, "upload", stages[1].Stage)
	assert.Equal(t, d, stages[0].Duration)
	assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	assert.Equal(t, stages[0].Duration+stages[1].Duration, p.Total())
}

func TestBeginClearsStages(t *testing.T) {
	p := NewProfiler(nil)
	p.Mark("first")
	p.Begin()
	assert.Empty(t, p.Stages())
	assert.Zero(t, p.Total())
}

func TestStagesReturnsCopy(t *testing.T) {
	p := NewProfiler(nil)
	p.Mark("a")
	stages := p.Stages()
	stages[0].Stage = "changed"
	assert.Equal(t, "a", p.Stages()[0].Stage)
}

func TestReportLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	p.Begin()
	p.Mark("container")
	p.Report("crate")

	out := buf.String()
	assert.Contains(t, out, "import stage")
	assert.Contains(t, out, "stage=container")
	assert.Contains(t, out, "import profile")
	assert.Contains(t, out, "model=crate")
	assert.Contains(t, out, "heap_mb=")
}
