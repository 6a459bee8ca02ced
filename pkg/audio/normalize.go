package audio

import "math"

// Normalization parameters for telephone audio. The compressor evens out
// level differences between near and far talkers; the high-pass strips
// line hum and handling rumble below the voice band.
const (
	peakTarget = 0.95 // fraction of full scale after peak normalization

	compressorThresholdDB = -25.0
	compressorRatio       = 3.0
	compressorAttackSec   = 0.005
	compressorReleaseSec  = 0.050

	highPassCutoffHz = 80.0
)

// Normalize applies the analysis gain chain to a mono channel: peak
// normalization, dynamic-range compression, then a one-pole high-pass.
// The input clip is not modified. An all-zero channel is returned as-is so
// silent agent channels stay silent.
func Normalize(c *Clip) *Clip {
	if c == nil || len(c.Samples) == 0 {
		return c
	}

	var peak float64
	for _, s := range c.Samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return c
	}

	gain := peakTarget * 32767.0 / peak
	buf := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		buf[i] = float64(s) * gain
	}

	compress(buf, c.SampleRate)
	highPass(buf, c.SampleRate)

	out := make([]int16, len(buf))
	for i, v := range buf {
		out[i] = clampSample(v)
	}
	return &Clip{SampleRate: c.SampleRate, Channels: 1, Samples: out}
}

// compress applies feed-forward dynamic-range compression in place using an
// attack/release envelope follower.
func compress(buf []float64, sampleRate int) {
	threshold := math.Pow(10, compressorThresholdDB/20) * 32767.0
	attack := math.Exp(-1 / (compressorAttackSec * float64(sampleRate)))
	release := math.Exp(-1 / (compressorReleaseSec * float64(sampleRate)))

	var env float64
	for i, v := range buf {
		mag := math.Abs(v)
		if mag > env {
			env = attack*env + (1-attack)*mag
		} else {
			env = release*env + (1-release)*mag
		}
		if env <= threshold {
			continue
		}
		target := threshold + (env-threshold)/compressorRatio
		buf[i] = v * (target / env)
	}
}

// highPass applies a one-pole high-pass filter in place.
func highPass(buf []float64, sampleRate int) {
	rc := 1 / (2 * math.Pi * highPassCutoffHz)
	dt := 1 / float64(sampleRate)
	alpha := rc / (rc + dt)

	prevIn := buf[0]
	prevOut := buf[0]
	for i := 1; i < len(buf); i++ {
		in := buf[i]
		out := alpha * (prevOut + in - prevIn)
		buf[i] = out
		prevIn = in
		prevOut = out
	}
}

func clampSample(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
