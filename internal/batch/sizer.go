package batch

import (
	"log/slog"
	"math"
	"os"
	"sync"
	"time"
)

const (
	batchBase = 1000
	batchMin  = 10
	batchMax  = 1000

	// rollingWindow is how many recent per-file times feed the pace factor.
	rollingWindow = 20

	// sizeSampleLimit caps how many remaining files are stat'ed per batch.
	sizeSampleLimit = 100

	cpuSampleInterval = time.Second
)

// Sizer picks the next batch size from host pressure and the run's own
// pace. One instance per run; Reset at run start.
type Sizer struct {
	log *slog.Logger

	mu    sync.Mutex
	times []time.Duration // ring of the last rollingWindow per-file times

	// Overridable probes, for tests.
	memFn  func() memInfo
	cpuFn  func() float64
	statFn func(path string) (int64, bool)
}

// NewSizer returns a Sizer reading live host state.
func NewSizer(log *slog.Logger) *Sizer {
	if log == nil {
		log = slog.Default()
	}
	return &Sizer{
		log:   log,
		memFn: readMemInfo,
		cpuFn: func() float64 { return sampleCPUPercent(cpuSampleInterval) },
		statFn: func(path string) (int64, bool) {
			fi, err := os.Stat(path)
			if err != nil {
				return 0, false
			}
			return fi.Size(), true
		},
	}
}

// Reset clears the rolling processing-time window.
func (s *Sizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = s.times[:0]
}

// RecordFileTime feeds one file's wall-clock processing time into the
// rolling window.
func (s *Sizer) RecordFileTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = append(s.times, d)
	if len(s.times) > rollingWindow {
		s.times = s.times[len(s.times)-rollingWindow:]
	}
}

// Next picks the size of the next batch given the remaining file paths.
// The base size is scaled by multiplicative pressure factors, clamped to
// [batchMin, batchMax], then trimmed by the tail rule so the last batches
// shrink instead of one worker-starving the rest.
func (s *Sizer) Next(remaining []string) int {
	size := float64(batchBase)

	memFactor := s.memoryFactor()
	cpuFactor := s.cpuFactor()
	fileFactor := s.fileSizeFactor(remaining)
	paceFactor := s.paceFactor()
	size *= memFactor * cpuFactor * fileFactor * paceFactor

	batch := int(math.Round(size))
	if batch < batchMin {
		batch = batchMin
	}
	if batch > batchMax {
		batch = batchMax
	}

	if len(remaining) < 2*batch {
		if half := len(remaining) / 2; half > batchMin {
			batch = half
		} else {
			batch = batchMin
		}
	}

	s.log.Debug("batch size selected",
		"batch", batch,
		"remaining", len(remaining),
		"mem_factor", memFactor,
		"cpu_factor", cpuFactor,
		"file_factor", fileFactor,
		"pace_factor", paceFactor)
	return batch
}

// ramp maps v into [0, 1] linearly between lo and hi, clamped at both ends.
func ramp(v, lo, hi float64) float64 {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return 1
	}
	return (v - lo) / (hi - lo)
}

// memoryFactor scales down linearly under memory pressure, up to half the
// batch at full memory, and up when the host has plenty of headroom.
func (s *Sizer) memoryFactor() float64 {
	info := s.memFn()
	if info.Total == 0 {
		return 1
	}
	used := info.UsedPercent()
	switch {
	case used > 75:
		return 1 - 0.5*ramp(used, 75, 100)
	case used < 50 && info.Available >= 4<<30:
		return 1 + 0.5*ramp(50-used, 0, 50)
	default:
		return 1
	}
}

// cpuFactor samples CPU utilisation over one second. Down to 0.6 at a fully
// loaded host, up to 1.3 on an idle one.
func (s *Sizer) cpuFactor() float64 {
	pct := s.cpuFn()
	switch {
	case pct > 80:
		return 1 - 0.4*ramp(pct, 80, 100)
	case pct > 0 && pct < 50:
		return 1 + 0.3*ramp(50-pct, 0, 50)
	default:
		return 1
	}
}

// fileSizeFactor samples the first files of the remaining set: big
// recordings mean long decodes and transcriptions per slot.
func (s *Sizer) fileSizeFactor(remaining []string) float64 {
	sample := remaining
	if len(sample) > sizeSampleLimit {
		sample = sample[:sizeSampleLimit]
	}
	var total int64
	counted := 0
	for _, path := range sample {
		if size, ok := s.statFn(path); ok {
			total += size
			counted++
		}
	}
	if counted == 0 {
		return 1
	}
	avgMB := float64(total) / float64(counted) / float64(1<<20)
	switch {
	case avgMB > 10:
		// Full scale-down at 50 MB, roughly an hour-long stereo recording.
		return 1 - 0.5*ramp(avgMB, 10, 50)
	case avgMB < 2:
		return 1 + 0.3*ramp(2-avgMB, 0, 2)
	default:
		return 1
	}
}

// paceFactor scales down when recent files have been slow, bottoming out at
// 90 s/file, triple the trigger.
func (s *Sizer) paceFactor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.times) == 0 {
		return 1
	}
	var total time.Duration
	for _, d := range s.times {
		total += d
	}
	avg := (total / time.Duration(len(s.times))).Seconds()
	if avg > 30 {
		return 1 - 0.3*ramp(avg, 30, 90)
	}
	return 1
}
