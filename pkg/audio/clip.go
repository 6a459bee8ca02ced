// Package audio decodes telephone call recordings into normalized PCM clips.
//
// Decode accepts mp3, wav, m4a, mp4 and flac containers, resamples to the
// 16 kHz/16-bit format the analysis pipeline expects, and splits stereo
// recordings into the agent (left) and owner (right) channels. Quality
// validation rejects clips that are too short, too quiet or flat before any
// analysis time is spent on them.
package audio

import "fmt"

// AnalysisSampleRate is the sample rate every decoded clip is normalized to.
const AnalysisSampleRate = 16000

// SampleWidthBytes is the PCM sample width. All clips are signed 16-bit.
const SampleWidthBytes = 2

// Clip is a decoded PCM recording. Samples are interleaved when stereo.
// A Clip is treated as read-only once returned by Decode; analysis stages
// share it without copying.
type Clip struct {
	// SampleRate in Hz. Always AnalysisSampleRate after Decode.
	SampleRate int

	// Channels is 1 (mono) or 2 (stereo, L/R interleaved).
	Channels int

	// Samples holds signed 16-bit PCM, interleaved when Channels == 2.
	Samples []int16
}

// DurationMs returns the clip duration in milliseconds.
func (c *Clip) DurationMs() int {
	if c == nil || c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return int(int64(frames) * 1000 / int64(c.SampleRate))
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	if c == nil || c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// SplitChannels extracts the analysis channels from a clip. For stereo
// recordings channel 0 (left) is the agent and channel 1 the owner; for mono
// recordings the whole clip is the agent and owner is nil.
func SplitChannels(c *Clip) (agent, owner *Clip) {
	if c == nil {
		return nil, nil
	}
	if c.Channels == 1 {
		return c, nil
	}

	frames := c.Frames()
	left := make([]int16, frames)
	right := make([]int16, frames)
	for i := range frames {
		left[i] = c.Samples[i*2]
		right[i] = c.Samples[i*2+1]
	}
	agent = &Clip{SampleRate: c.SampleRate, Channels: 1, Samples: left}
	owner = &Clip{SampleRate: c.SampleRate, Channels: 1, Samples: right}
	return agent, owner
}

// Bytes returns the samples as little-endian PCM bytes, the layout WAV and
// the transcription services consume.
func (c *Clip) Bytes() []byte {
	out := make([]byte, len(c.Samples)*SampleWidthBytes)
	for i, s := range c.Samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(uint16(s) >> 8)
	}
	return out
}

// samplesFromBytes converts little-endian PCM bytes to int16 samples. Odd
// trailing bytes are dropped.
func samplesFromBytes(pcm []byte) []int16 {
	n := len(pcm) / 2
	out := make([]int16, n)
	for i := range n {
		out[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return out
}

// formatString returns a human-readable format description, e.g.
// "48000Hz stereo".
func formatString(rate, channels int) string {
	ch := "mono"
	if channels == 2 {
		ch = "stereo"
	} else if channels > 2 {
		ch = fmt.Sprintf("%dch", channels)
	}
	return fmt.Sprintf("%dHz %s", rate, ch)
}
