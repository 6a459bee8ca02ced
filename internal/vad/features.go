package vad

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// frameFeatures holds the per-frame measurements the speech classifier
// evaluates.
type frameFeatures struct {
	rms       float64 // int16 scale
	zcr       float64 // zero crossings per sample, in [0, 1]
	centroid  float64 // Hz
	bandwidth float64 // Hz
	rolloff   float64 // Hz, 85 %-energy roll-off
}

// featureExtractor computes spectral frame features. One instance per
// analysis; it owns the FFT plan and window and is not safe for concurrent
// use.
type featureExtractor struct {
	sampleRate int
	frameSize  int
	nfft       int
	fft        *fourier.FFT
	window     []float64
	buf        []float64
}

// rolloffFraction is the cumulative-energy fraction for the roll-off
// frequency.
const rolloffFraction = 0.85

func newFeatureExtractor(sampleRate, frameSize int) *featureExtractor {
	nfft := 1
	for nfft < frameSize {
		nfft *= 2
	}
	return &featureExtractor{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		nfft:       nfft,
		fft:        fourier.NewFFT(nfft),
		window:     hannWindow(frameSize),
		buf:        make([]float64, nfft),
	}
}

// analyze computes the features of one frame. Frames shorter than the
// configured size are zero-padded.
func (x *featureExtractor) analyze(frame []int16) frameFeatures {
	var f frameFeatures
	if len(frame) == 0 {
		return f
	}

	f.rms = rms(frame)
	f.zcr = zeroCrossingRate(frame)

	// Windowed frame, zero-padded to the FFT size.
	for i := range x.buf {
		x.buf[i] = 0
	}
	n := len(frame)
	if n > x.frameSize {
		n = x.frameSize
	}
	for i := 0; i < n; i++ {
		x.buf[i] = float64(frame[i]) * x.window[i]
	}

	coeffs := x.fft.Coefficients(nil, x.buf)

	// Power spectrum over the positive-frequency bins.
	bins := x.nfft/2 + 1
	var total float64
	power := make([]float64, bins)
	for i := 0; i < bins; i++ {
		re := real(coeffs[i])
		im := imag(coeffs[i])
		p := re*re + im*im
		power[i] = p
		total += p
	}
	if total == 0 {
		return f
	}

	binHz := float64(x.sampleRate) / float64(x.nfft)

	var weighted float64
	for i, p := range power {
		weighted += float64(i) * binHz * p
	}
	f.centroid = weighted / total

	var spread float64
	for i, p := range power {
		d := float64(i)*binHz - f.centroid
		spread += d * d * p
	}
	f.bandwidth = math.Sqrt(spread / total)

	target := rolloffFraction * total
	var cum float64
	for i, p := range power {
		cum += p
		if cum >= target {
			f.rolloff = float64(i) * binHz
			break
		}
	}
	return f
}

// rms returns the root-mean-square energy of a frame in int16 units.
func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// zeroCrossingRate returns the fraction of adjacent sample pairs whose signs
// differ.
func zeroCrossingRate(frame []int16) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

func hannWindow(size int) []float64 {
	w := make([]float64, size)
	if size == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w
}
