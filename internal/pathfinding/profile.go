package pathfinding

import (
	"context"
	"sync/atomic"
)

// CarveProfiler captures instrumentation hooks for path carving.
type CarveProfiler interface {
	RecordStep()
	RecordRecoveryMove()
	RecordDeadEnd()
	RecordCeilingHit()
	RecordStartRetry()
	RecordPathCarved(length int, reachedGoal bool)
}

// CarveMetrics accumulates profiling counters for Carver operations.
type CarveMetrics struct {
	steps         atomic.Int64
	recoveryMoves atomic.Int64
	deadEnds      atomic.Int64
	ceilingHits   atomic.Int64
	startRetries  atomic.Int64
	paths         atomic.Int64
	pathsReached  atomic.Int64
	pathTiles     atomic.Int64
}

// MetricsSnapshot captures a point-in-time copy of carve metrics.
type MetricsSnapshot struct {
	Steps         int64
	RecoveryMoves int64
	DeadEnds      int64
	CeilingHits   int64
	StartRetries  int64
	Paths         int64
	PathsReached  int64
	PathTiles     int64
}

// Profiler returns a CarveProfiler implementation backed by this metric set.
func (m *CarveMetrics) Profiler() CarveProfiler {
	if m == nil {
		return nil
	}
	return (*metricsProfiler)(m)
}

// Reset zeroes all counters in the metrics set.
func (m *CarveMetrics) Reset() {
	if m == nil {
		return
	}
	m.steps.Store(0)
	m.recoveryMoves.Store(0)
	m.deadEnds.Store(0)
	m.ceilingHits.Store(0)
	m.startRetries.Store(0)
	m.paths.Store(0)
	m.pathsReached.Store(0)
	m.pathTiles.Store(0)
}

// Snapshot captures the current counter values.
func (m *CarveMetrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Steps:         m.steps.Load(),
		RecoveryMoves: m.recoveryMoves.Load(),
		DeadEnds:      m.deadEnds.Load(),
		CeilingHits:   m.ceilingHits.Load(),
		StartRetries:  m.startRetries.Load(),
		Paths:         m.paths.Load(),
		PathsReached:  m.pathsReached.Load(),
		PathTiles:     m.pathTiles.Load(),
	}
}

// metricsProfiler adapts CarveMetrics to the CarveProfiler interface.
type metricsProfiler CarveMetrics

func (m *metricsProfiler) RecordStep() {
	(*CarveMetrics)(m).steps.Add(1)
}

func (m *metricsProfiler) RecordRecoveryMove() {
	(*CarveMetrics)(m).recoveryMoves.Add(1)
}

func (m *metricsProfiler) RecordDeadEnd() {
	(*CarveMetrics)(m).deadEnds.Add(1)
}

func (m *metricsProfiler) RecordCeilingHit() {
	(*CarveMetrics)(m).ceilingHits.Add(1)
}

func (m *metricsProfiler) RecordStartRetry() {
	(*CarveMetrics)(m).startRetries.Add(1)
}

func (m *metricsProfiler) RecordPathCarved(length int, reachedGoal bool) {
	metrics := (*CarveMetrics)(m)
	metrics.paths.Add(1)
	metrics.pathTiles.Add(int64(length))
	if reachedGoal {
		metrics.pathsReached.Add(1)
	}
}

type profilerContextKey struct{}

// ContextWithProfiler returns a context that will report the provided profiler during
// carving operations.
func ContextWithProfiler(ctx context.Context, profiler CarveProfiler) context.Context {
	if profiler == nil {
		return ctx
	}
	return context.WithValue(ctx, profilerContextKey{}, profiler)
}

func profilerFromContext(ctx context.Context) CarveProfiler {
	if ctx == nil {
		return nil
	}
	if profiler, ok := ctx.Value(profilerContextKey{}).(CarveProfiler); ok {
		return profiler
	}
	return nil
}
