package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// StageTiming is the wall time spent in one named import stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Profiler tracks per-stage import timing and memory statistics.
// Stages are measured back to back: each Mark closes the stage that began at the previous Mark.
type Profiler struct {
	mu     sync.Mutex
	logger *slog.Logger

	lastTime time.Time
	stages   []StageTiming

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler. The first stage starts now.
//
// Parameters:
//   - logger: the logger Report writes to, or nil for slog.Default()
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Profiler{logger: logger, lastTime: time.Now()}
	runtime.ReadMemStats(&p.memStats)
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return p
}

// Begin clears recorded stages and starts a new measurement.
func (p *Profiler) Begin() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stages = p.stages[:0]
	p.lastTime = time.Now()
	runtime.ReadMemStats(&p.memStats)
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

// Mark ends the current stage under the given name and starts the next one.
//
// Parameters:
//   - stage: the name of the stage that just finished
//
// Returns:
//   - time.Duration: the stage's duration
func (p *Profiler) Mark(stage string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	d := now.Sub(p.lastTime)
	p.stages = append(p.stages, StageTiming{Stage: stage, Duration: d})
	p.lastTime = now
	return d
}

// Stages returns a copy of the stages recorded since Begin.
//
// Returns:
//   - []StageTiming: the stages in the order they were marked
func (p *Profiler) Stages() []StageTiming {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]StageTiming(nil), p.stages...)
}

// Total returns the sum of all recorded stage durations.
func (p *Profiler) Total() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total time.Duration
	for _, s := range p.stages {
		total += s.Duration
	}
	return total
}

// Report logs one line per stage and a summary with heap usage, bytes allocated since Begin and
// the garbage collections that ran in between.
//
// Parameters:
//   - name: the label of the measured import, usually the model name
func (p *Profiler) Report(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total time.Duration
	for _, s := range p.stages {
		total += s.Duration
		p.logger.Debug("import stage", "model", name, "stage", s.Stage, "duration", s.Duration)
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap; TotalAlloc: cumulative, so the delta is the churn of this import
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	churnMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024

	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		// PauseNs is a circular buffer of the last 256 pauses
		if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
			maxPauseUs = pause
		}
	}

	p.logger.Info("import profile",
		"model", name,
		"total", total,
		"heap_mb", allocMB,
		"alloc_mb", churnMB,
		"gc", gcCount-p.lastGCCount,
		"max_pause_us", maxPauseUs,
		"sys_mb", sysMB,
	)
}
