// Package profiler provides a lightweight frame profiler: call Tick once per
// rendered frame and it logs frame rate, frame time, instance counts, and Go
// heap statistics at a fixed interval.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, frame time, and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64

	maxFrameTime time.Duration
	lastFrame    time.Time

	objectCount int
	lightCount  int
}

// NewProfiler creates a new Profiler with a one second update interval.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	now := time.Now()
	return &Profiler{
		lastTime:       now,
		lastFrame:      now,
		updateInterval: time.Second,
	}
}

// SetCounts records the instance counts reported with the next stats line.
//
// Parameters:
//   - objects: the number of object instances drawn this frame
//   - lights: the number of lights accumulated this frame
func (p *Profiler) SetCounts(objects, lights int) {
	p.objectCount = objects
	p.lightCount = lights
}

// Tick should be called once per frame. Logs frame and memory statistics
// when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	now := time.Now()
	frameTime := now.Sub(p.lastFrame)
	p.lastFrame = now
	if frameTime > p.maxFrameTime {
		p.maxFrameTime = frameTime
	}

	p.frameCount++
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	log.Printf("[Profiler] FPS: %.2f | Max Frame: %.2f ms | Objects: %d | Lights: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s",
		fps, float64(p.maxFrameTime.Microseconds())/1000, p.objectCount, p.lightCount, allocMB, allocRateMB)

	p.frameCount = 0
	p.maxFrameTime = 0
	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
