package space

import (
	"time"
)

// Phase names in execution order.
const (
	PhaseCamera   = "camera"
	PhasePhysics  = "physics"
	PhaseEntities = "entities"
	PhaseCull     = "cull"
)

// Frame is passed to every phase of one tick.
type Frame struct {
	Number    uint64
	DeltaTime float64
}

// SchedulerStats provides statistics about phase execution.
type SchedulerStats struct {
	PhaseCount      int
	TotalExecutions int64
	Phases          []PhaseStats
}

// PhaseStats provides execution statistics for a single phase.
type PhaseStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type phaseStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type phase struct {
	name string
	run  func(f *Frame)
}

// scheduler runs a fixed list of phases in registration order.
type scheduler struct {
	phases     []phase
	phaseStats []*phaseStatsInternal
	observe    func(name string, f *Frame)
}

func (s *scheduler) register(name string, run func(f *Frame)) {
	s.phases = append(s.phases, phase{name: name, run: run})
	s.phaseStats = append(s.phaseStats, &phaseStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	})
}

// once executes every phase with the given frame.
func (s *scheduler) once(f *Frame) {
	for i, p := range s.phases {
		start := time.Now()
		p.run(f)
		duration := time.Since(start)

		stats := s.phaseStats[i]
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}

		if s.observe != nil {
			s.observe(p.name, f)
		}
	}
}

func (s *scheduler) stats() SchedulerStats {
	stats := SchedulerStats{
		PhaseCount: len(s.phases),
		Phases:     make([]PhaseStats, len(s.phaseStats)),
	}

	var totalExecs int64
	for i, internal := range s.phaseStats {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Phases[i] = PhaseStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
