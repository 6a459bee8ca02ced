package audio_test

import (
	"math"
	"testing"

	"github.com/callsift/callsift/pkg/audio"
)

func TestNormalize_SilenceStaysSilent(t *testing.T) {
	t.Parallel()
	c := &audio.Clip{SampleRate: 16000, Channels: 1, Samples: make([]int16, 16000)}
	out := audio.Normalize(c)
	for i, s := range out.Samples {
		if s != 0 {
			t.Fatalf("sample %d: got %d, want 0", i, s)
		}
	}
}

func TestNormalize_RaisesPeak(t *testing.T) {
	t.Parallel()
	c := sineClip(2000, 16000) // peak ~8000
	out := audio.Normalize(c)

	var peak float64
	for _, s := range out.Samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	// Compression and filtering eat a little of the normalized peak, but the
	// output must be much louder than the input.
	if peak < 16000 {
		t.Errorf("peak after normalize: %.0f, want >= 16000", peak)
	}
	if peak > 32767 {
		t.Errorf("peak after normalize: %.0f exceeds int16 range", peak)
	}
}

func TestNormalize_RemovesDCOffset(t *testing.T) {
	t.Parallel()
	// Tone riding on a DC offset; the high-pass should strip the offset.
	frames := 2 * 16000
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16(4000 + 3000*math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	c := &audio.Clip{SampleRate: 16000, Channels: 1, Samples: samples}
	out := audio.Normalize(c)

	var sum float64
	for _, s := range out.Samples {
		sum += float64(s)
	}
	mean := sum / float64(len(out.Samples))
	if math.Abs(mean) > 500 {
		t.Errorf("mean after high-pass: %.1f, want near 0", mean)
	}
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	t.Parallel()
	c := sineClip(1000, 16000)
	before := make([]int16, len(c.Samples))
	copy(before, c.Samples)

	audio.Normalize(c)

	for i := range before {
		if c.Samples[i] != before[i] {
			t.Fatalf("input sample %d modified: %d -> %d", i, before[i], c.Samples[i])
		}
	}
}

func TestNormalize_Nil(t *testing.T) {
	t.Parallel()
	if out := audio.Normalize(nil); out != nil {
		t.Errorf("Normalize(nil) = %v, want nil", out)
	}
}
