package profiler

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Stats is one reporting interval of profiler measurements.
type Stats struct {
	TicksPerSecond float64
	AvgTickCost    time.Duration
	MaxTickCost    time.Duration
	HeapMB         float64
	AllocRateMB    float64
	SysMB          float64
	GCCount        uint32
	LastPauseUs    uint64
	MaxPauseUs     uint64
}

// Profiler tracks tick rate, tick cost and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	tickCount      int
	totalCost      time.Duration
	maxCost        time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	logger         zerolog.Logger
	now            func() time.Time
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and output is discarded unless WithLogger is given.
//
// Parameters:
//   - options: functional options such as WithLogger or WithInterval
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		logger:         zerolog.Nop(),
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per engine tick with the time the tick took.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: ticks/second, tick cost, heap usage, allocation rate, GC count/pause times, total memory.
//
// Parameters:
//   - cost: the wall time spent inside the tick
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(cost time.Duration) bool {
	p.tickCount++
	p.totalCost += cost
	p.maxCost = max(p.maxCost, cost)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		TicksPerSecond: float64(p.tickCount) / elapsed.Seconds(),
		AvgTickCost:    p.totalCost / time.Duration(p.tickCount),
		MaxTickCost:    p.maxCost,
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:          float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:    float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
	}

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info().
		Float64("tps", s.TicksPerSecond).
		Dur("tick_avg", s.AvgTickCost).
		Dur("tick_max", s.MaxTickCost).
		Float64("heap_mb", s.HeapMB).
		Float64("alloc_rate_mb", s.AllocRateMB).
		Uint32("gc", s.GCCount).
		Uint64("gc_last_us", s.LastPauseUs).
		Uint64("gc_max_us", s.MaxPauseUs).
		Float64("sys_mb", s.SysMB).
		Msg("profiler")

	p.last = s
	p.tickCount = 0
	p.totalCost = 0
	p.maxCost = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics of the most recent reporting interval.
//
// Returns:
//   - Stats: the last logged statistics, zero before the first interval
func (p *Profiler) Last() Stats {
	return p.last
}
