// Package vad locates speech in telephone audio. The primary path classifies
// 50 ms frames by energy, zero-crossing rate and spectral shape against an
// adaptive noise floor; a simple energy detector serves as fallback when the
// spectral path finds nothing usable.
package vad

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/callsift/callsift/pkg/audio"
)

// Frame geometry. 50 ms frames with 50 % overlap track word-level onsets
// closely enough for late-hello timing.
const (
	FrameMs = 50
	HopMs   = 25
)

// Speech classification gates.
const (
	zcrMin = 0.01
	zcrMax = 0.3

	centroidMinHz  = 300
	centroidMaxHz  = 3500
	bandwidthMinHz = 200
	rolloffMaxHz   = 4000
)

// Defaults for Config fields left zero.
const (
	DefaultEnergyThreshold     = 500.0
	DefaultMinSpeechDurationMs = 300
)

// ErrNoFrames reports audio too short to fill a single analysis frame.
var ErrNoFrames = errors.New("vad: audio shorter than one frame")

// Segment is a detected span of speech. EndMs > StartMs; a segment list is
// monotonic and non-overlapping.
type Segment struct {
	StartMs int
	EndMs   int
}

// Config tunes the detector.
type Config struct {
	// EnergyThreshold is the baseline RMS threshold in int16 units.
	// The effective threshold adapts to the clip's noise floor:
	// max(noiseFloor + 0.3·EnergyThreshold, 0.7·EnergyThreshold).
	EnergyThreshold float64

	// MinSpeechDurationMs drops segments shorter than this. Late-hello
	// callers tune it down to 50 ms to catch clipped greetings.
	MinSpeechDurationMs int
}

func (c Config) withDefaults() Config {
	if c.EnergyThreshold <= 0 {
		c.EnergyThreshold = DefaultEnergyThreshold
	}
	if c.MinSpeechDurationMs <= 0 {
		c.MinSpeechDurationMs = DefaultMinSpeechDurationMs
	}
	return c
}

// Engine detects speech segments in mono clips. Safe for concurrent use;
// each detection run builds its own scratch state.
type Engine struct {
	cfg Config
}

// New creates an Engine with the given config. Zero fields take defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// DetectSegments runs the spectral classifier over the clip and returns the
// speech segments.
func (e *Engine) DetectSegments(clip *audio.Clip) ([]Segment, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, fmt.Errorf("vad: empty clip")
	}
	if clip.Channels != 1 {
		return nil, fmt.Errorf("vad: need mono audio, got %d channels", clip.Channels)
	}

	frameSize := clip.SampleRate * FrameMs / 1000
	hop := clip.SampleRate * HopMs / 1000
	if len(clip.Samples) < frameSize {
		return nil, ErrNoFrames
	}

	extractor := newFeatureExtractor(clip.SampleRate, frameSize)
	var features []frameFeatures
	for start := 0; start+frameSize <= len(clip.Samples); start += hop {
		features = append(features, extractor.analyze(clip.Samples[start:start+frameSize]))
	}

	threshold := e.effectiveThreshold(features)

	speech := make([]bool, len(features))
	for i, f := range features {
		speech[i] = isSpeechFrame(f, threshold)
	}

	segments := collapseFrames(speech, clip.DurationMs())
	return dropShortSegments(segments, e.cfg.MinSpeechDurationMs), nil
}

// DetectSegmentsWithFallback runs the spectral path and, when it errors or
// finds nothing, retries with the simple energy detector.
func (e *Engine) DetectSegmentsWithFallback(clip *audio.Clip) []Segment {
	segments, err := e.DetectSegments(clip)
	if err == nil && len(segments) > 0 {
		return segments
	}
	if err != nil {
		slog.Debug("vad: spectral path failed, using energy fallback", "error", err)
	}
	return energyFallback(clip)
}

// effectiveThreshold adapts the configured threshold to the clip's noise
// floor, taken as the 10th percentile of frame RMS values.
func (e *Engine) effectiveThreshold(features []frameFeatures) float64 {
	values := make([]float64, len(features))
	for i, f := range features {
		values[i] = f.rms
	}
	sort.Float64s(values)
	floor := 0.0
	if len(values) > 0 {
		floor = values[int(float64(len(values)-1)*0.10)]
	}

	adaptive := floor + 0.3*e.cfg.EnergyThreshold
	minimum := 0.7 * e.cfg.EnergyThreshold
	if adaptive > minimum {
		return adaptive
	}
	return minimum
}

// isSpeechFrame applies the energy, periodicity and spectral gates. The
// spectral gates vote: two of three must pass.
func isSpeechFrame(f frameFeatures, threshold float64) bool {
	if f.rms <= threshold {
		return false
	}
	if f.zcr <= zcrMin || f.zcr >= zcrMax {
		return false
	}

	votes := 0
	if f.centroid > centroidMinHz && f.centroid < centroidMaxHz {
		votes++
	}
	if f.bandwidth > bandwidthMinHz {
		votes++
	}
	if f.rolloff < rolloffMaxHz {
		votes++
	}
	return votes >= 2
}

// collapseFrames merges runs of speech frames into segments, clamped to the
// clip duration.
func collapseFrames(speech []bool, durationMs int) []Segment {
	var segments []Segment
	runStart := -1
	for i, isSpeech := range speech {
		if isSpeech && runStart < 0 {
			runStart = i
		}
		if !isSpeech && runStart >= 0 {
			segments = append(segments, frameRunToSegment(runStart, i-1, durationMs))
			runStart = -1
		}
	}
	if runStart >= 0 {
		segments = append(segments, frameRunToSegment(runStart, len(speech)-1, durationMs))
	}
	return segments
}

// frameRunToSegment converts an inclusive frame index run to millisecond
// bounds.
func frameRunToSegment(first, last, durationMs int) Segment {
	start := first * HopMs
	end := last*HopMs + FrameMs
	if end > durationMs {
		end = durationMs
	}
	return Segment{StartMs: start, EndMs: end}
}

func dropShortSegments(segments []Segment, minDurationMs int) []Segment {
	var kept []Segment
	for _, s := range segments {
		if s.EndMs-s.StartMs >= minDurationMs {
			kept = append(kept, s)
		}
	}
	return kept
}
