// Package profiler - records how long each pipeline stage takes across a run
// and logs the elapsed time between phases of a single image.
package profiler

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// StageStats summarises the recorded durations of one stage.
type StageStats struct {
	Name  string
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Mean returns the average duration, zero when nothing was recorded.
func (s StageStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Recorder accumulates stage timings. It is safe for concurrent use so one
// recorder can be shared by every worker of a batch.
type Recorder struct {
	mu        sync.Mutex
	startTime time.Time
	stages    map[string]*StageStats
}

// NewRecorder creates an empty recorder whose uptime starts now.
func NewRecorder() *Recorder {
	return &Recorder{startTime: time.Now(), stages: make(map[string]*StageStats)}
}

// StartOperation begins timing a stage.
//
// Arguments:
// - name: The stage to attribute the time to.
//
// Returns:
// - A function to call when the stage completes.
//
// @example
// done := recorder.StartOperation("skin_mask")
// mask, err := skinmask.Build(hs, opts)
// done()
func (r *Recorder) StartOperation(name string) func() {
	start := time.Now()
	return func() { r.Record(name, time.Since(start)) }
}

// Record adds one duration to a stage. A nil recorder ignores the call.
func (r *Recorder) Record(name string, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stage, exists := r.stages[name]
	if !exists {
		stage = &StageStats{Name: name, Min: duration, Max: duration}
		r.stages[name] = stage
	}
	stage.Count++
	stage.Total += duration
	stage.Min = min(stage.Min, duration)
	stage.Max = max(stage.Max, duration)
}

// Snapshot returns the statistics of every stage, sorted by name.
func (r *Recorder) Snapshot() []StageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]StageStats, 0, len(r.stages))
	for _, s := range r.stages {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs one line per stage followed by uptime and heap usage.
func (r *Recorder) Report(log logrus.FieldLogger) {
	for _, s := range r.Snapshot() {
		log.WithFields(logrus.Fields{
			"stage": s.Name,
			"count": humanize.Comma(s.Count),
			"mean":  s.Mean().Round(time.Microsecond),
			"min":   s.Min.Round(time.Microsecond),
			"max":   s.Max.Round(time.Microsecond),
		}).Info("stage timing")
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	log.WithFields(logrus.Fields{
		"uptime":     time.Since(r.startTime).Round(time.Millisecond),
		"heap_alloc": humanize.Bytes(mem.HeapAlloc),
		"gc_cycles":  mem.NumGC,
	}).Info("runtime")
}

// IntervalTimer logs the time elapsed between consecutive phases of one job.
type IntervalTimer struct {
	log  logrus.FieldLogger
	last time.Time
}

// NewIntervalTimer starts a timer that logs through log.
func NewIntervalTimer(log logrus.FieldLogger) *IntervalTimer {
	return &IntervalTimer{log: log, last: time.Now()}
}

// Lap logs the time since the previous lap (or since creation) and returns it.
func (t *IntervalTimer) Lap(phase string) time.Duration {
	now := time.Now()
	elapsed := now.Sub(t.last)
	t.last = now
	t.log.WithFields(logrus.Fields{"phase": phase, "elapsed": elapsed}).Debug("phase complete")
	return elapsed
}
