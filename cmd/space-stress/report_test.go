package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/plus3/voxar/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond}}
	s.Finalize()

	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{
		Duration:       time.Second,
		Entities:       10,
		TotalUpdates:   60,
		GCPauseMetrics: true,
		Space: space.Stats{
			ID:    "test-space",
			Swept: 4,
			Scheduler: space.SchedulerStats{
				Phases: []space.PhaseStats{{Name: space.PhasePhysics, ExecutionCount: 60}},
			},
		},
	}
	r.MemStatsEnd.NumGC = 3

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))

	out := buf.String()
	assert.Contains(t, out, "**Space:** test-space")
	assert.Contains(t, out, "| physics | 60 |")
	assert.Contains(t, out, "**Entities swept:** 4")
	assert.Contains(t, out, "## GC Pause Durations")
}
