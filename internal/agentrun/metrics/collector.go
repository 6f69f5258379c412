package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	// Counters
	ticksTotal     atomic.Int64
	processedTotal atomic.Int64
	errorsTotal    atomic.Int64
	recoveredTotal atomic.Int64

	// Timing
	lastTickDuration atomic.Int64 // milliseconds

	// State
	isLeader  atomic.Bool
	startedAt time.Time
}

func NewCollector() *Collector {
	return &Collector{
		startedAt: time.Now(),
	}
}

func (c *Collector) IncTicks() {
	c.ticksTotal.Add(1)
}

func (c *Collector) IncProcessed(n int64) {
	c.processedTotal.Add(n)
}

func (c *Collector) IncErrors(n int64) {
	c.errorsTotal.Add(n)
}

func (c *Collector) IncRecovered(n int64) {
	c.recoveredTotal.Add(n)
}

func (c *Collector) SetLeader(isLeader bool) {
	c.isLeader.Store(isLeader)
}

func (c *Collector) RecordTickDuration(d time.Duration) {
	c.lastTickDuration.Store(d.Milliseconds())
}

type Snapshot struct {
	TicksTotal       int64         `json:"ticks_total"`
	ProcessedTotal   int64         `json:"processed_total"`
	ErrorsTotal      int64         `json:"errors_total"`
	RecoveredTotal   int64         `json:"recovered_total"`
	LastTickDuration int64         `json:"last_tick_duration_ms"`
	IsLeader         bool          `json:"is_leader"`
	Uptime           time.Duration `json:"uptime"`
}

func (c *Collector) Snapshot() *Snapshot {
	return &Snapshot{
		TicksTotal:       c.ticksTotal.Load(),
		ProcessedTotal:   c.processedTotal.Load(),
		ErrorsTotal:      c.errorsTotal.Load(),
		RecoveredTotal:   c.recoveredTotal.Load(),
		LastTickDuration: c.lastTickDuration.Load(),
		IsLeader:         c.isLeader.Load(),
		Uptime:           time.Since(c.startedAt),
	}
}
