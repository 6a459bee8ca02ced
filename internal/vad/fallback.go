package vad

import (
	"math"

	"github.com/callsift/callsift/pkg/audio"
)

// Fallback detector parameters: anything above −40 dBFS counts as sound and
// silences shorter than 200 ms do not split a segment.
const (
	fallbackSilenceDBFS  = -40.0
	fallbackMinSilenceMs = 200
)

// energyFallback is the simple energy detector used when the spectral path
// yields nothing. It marks frames above the fixed dBFS threshold as sound
// and bridges short silences.
func energyFallback(clip *audio.Clip) []Segment {
	if clip == nil || len(clip.Samples) == 0 || clip.Channels != 1 {
		return nil
	}

	frameSize := clip.SampleRate * FrameMs / 1000
	hop := clip.SampleRate * HopMs / 1000
	if len(clip.Samples) < frameSize {
		return nil
	}

	threshold := 32768.0 * math.Pow(10, fallbackSilenceDBFS/20)

	var loud []bool
	for start := 0; start+frameSize <= len(clip.Samples); start += hop {
		loud = append(loud, rms(clip.Samples[start:start+frameSize]) > threshold)
	}

	bridgeShortSilences(loud, fallbackMinSilenceMs/HopMs)
	return collapseFrames(loud, clip.DurationMs())
}

// bridgeShortSilences flips silent runs shorter than maxFrames that sit
// between sound, so brief pauses do not split a segment.
func bridgeShortSilences(loud []bool, maxFrames int) {
	i := 0
	for i < len(loud) {
		if loud[i] {
			i++
			continue
		}
		runStart := i
		for i < len(loud) && !loud[i] {
			i++
		}
		interior := runStart > 0 && i < len(loud)
		if interior && i-runStart < maxFrames {
			for j := runStart; j < i; j++ {
				loud[j] = true
			}
		}
	}
}
