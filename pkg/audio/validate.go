package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Validation thresholds for decoded clips.
const (
	// MinDurationMs is the shortest clip worth analysing. Anything below it
	// cannot contain a scoreable call.
	MinDurationMs = 3000

	// MaxDurationMs caps accepted recordings at five minutes.
	MaxDurationMs = 300000

	// MinFileSizeBytes rejects truncated uploads before decoding.
	MinFileSizeBytes = 1024

	// minPeakAmplitude is the quietest peak that still counts as a real
	// recording. Below it the line was effectively dead.
	minPeakAmplitude = 500

	// minSampleStdev guards against constant or near-constant signals
	// (DC offset, tone, digital silence with dither).
	minSampleStdev = 100
)

// Sentinel errors for input and quality validation. Callers match with
// errors.Is to map failures onto result rows.
var (
	// ErrInputValidation covers unsupported formats, undersized or oversized
	// files and empty paths.
	ErrInputValidation = errors.New("audio: input validation failed")

	// ErrAudioLoad wraps container or codec failures during decode.
	ErrAudioLoad = errors.New("audio: load failed")

	// ErrAudioTooShort marks clips under MinDurationMs.
	ErrAudioTooShort = errors.New("audio: clip too short")

	// ErrAudioTooQuiet marks clips whose peak amplitude never reaches
	// a usable level.
	ErrAudioTooQuiet = errors.New("audio: clip too quiet")

	// ErrAudioUniform marks clips with near-zero sample variance.
	ErrAudioUniform = errors.New("audio: clip uniform")
)

// supportedExtensions maps accepted file extensions (lowercase, with dot).
var supportedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".mp4":  true,
	".flac": true,
}

// SupportedExtension reports whether path has an accepted audio extension.
func SupportedExtension(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// CheckInput validates the file before any decoding: path non-empty,
// extension supported, size at least MinFileSizeBytes. Errors wrap
// ErrInputValidation.
func CheckInput(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrInputValidation)
	}
	if !SupportedExtension(path) {
		return fmt.Errorf("%w: unsupported format %q", ErrInputValidation, filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrInputValidation, path, err)
	}
	if info.Size() < MinFileSizeBytes {
		return fmt.Errorf("%w: file size %d below minimum %d bytes", ErrInputValidation, info.Size(), MinFileSizeBytes)
	}
	return nil
}

// Validate checks decoded audio quality. It must run on the raw resampled
// clip, before any gain normalization, so the quiet and uniform checks see
// the original signal levels.
func Validate(c *Clip) error {
	durationMs := c.DurationMs()
	if durationMs < MinDurationMs {
		return fmt.Errorf("%w: %dms, need at least %dms", ErrAudioTooShort, durationMs, MinDurationMs)
	}
	if durationMs > MaxDurationMs {
		return fmt.Errorf("%w: duration %dms exceeds maximum %dms", ErrInputValidation, durationMs, MaxDurationMs)
	}

	var peak int
	for _, s := range c.Samples {
		a := int(s)
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	if peak < minPeakAmplitude {
		return fmt.Errorf("%w: peak amplitude %d below %d", ErrAudioTooQuiet, peak, minPeakAmplitude)
	}

	if stdev := sampleStdev(c.Samples); stdev < minSampleStdev {
		return fmt.Errorf("%w: sample stdev %.1f below %d", ErrAudioUniform, stdev, minSampleStdev)
	}
	return nil
}

// sampleStdev computes the standard deviation of the samples.
func sampleStdev(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))

	var sq float64
	for _, s := range samples {
		d := float64(s) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(samples)))
}
