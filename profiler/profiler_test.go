package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAggregates(t *testing.T) {
	r := NewRecorder()
	r.Record("mask", 3*time.Millisecond)
	r.Record("mask", time.Millisecond)
	r.Record("color", 10*time.Millisecond)

	stats := r.Snapshot()
	require.Len(t, stats, 2)

	assert.Equal(t, "color", stats[0].Name)
	assert.Equal(t, int64(1), stats[0].Count)

	mask := stats[1]
	assert.Equal(t, "mask", mask.Name)
	assert.Equal(t, int64(2), mask.Count)
	assert.Equal(t, time.Millisecond, mask.Min)
	assert.Equal(t, 3*time.Millisecond, mask.Max)
	assert.Equal(t, 2*time.Millisecond, mask.Mean())
	assert.Equal(t, time.Duration(0), StageStats{}.Mean())
}

func TestRecorderConcurrentUse(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.StartOperation("stage")()
			}
		}()
	}
	wg.Wait()

	stats := r.Snapshot()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(800), stats[0].Count)
}

func TestNilRecorderIgnoresRecords(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.Record("stage", time.Second) })
}

func TestReportAndLap(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r := NewRecorder()
	r.Record("regions", time.Millisecond)
	r.Report(logger)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "regions", entries[0].Data["stage"])
	assert.Equal(t, "runtime", entries[1].Message)

	hook.Reset()
	timer := NewIntervalTimer(logger)
	elapsed := timer.Lap("decode")
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "decode", hook.LastEntry().Data["phase"])
}
