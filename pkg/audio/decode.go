package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Channels holds the per-speaker analysis channels of one recording.
type Channels struct {
	// Agent is channel 0 (left) for stereo recordings, or the whole clip
	// for mono. Always non-nil on success.
	Agent *Clip

	// Owner is channel 1 (right), nil for mono recordings.
	Owner *Clip

	// DurationMs is the full recording duration.
	DurationMs int
}

// Decode reads and decodes a recording, resamples it to AnalysisSampleRate
// and validates its quality. The returned clip keeps the original gain; run
// Normalize on the split channels before analysis.
func Decode(path string) (*Clip, error) {
	if err := CheckInput(path); err != nil {
		return nil, err
	}

	var (
		clip *Clip
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		var f *os.File
		f, err = os.Open(path)
		if err == nil {
			clip, err = decodeWAV(f)
			f.Close()
		}
	case ".mp3":
		clip, err = decodeMP3(path)
	case ".m4a", ".mp4", ".flac":
		clip, err = decodeContainer(path)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInputValidation, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAudioLoad, filepath.Base(path), err)
	}

	clip = resampleClip(clip, AnalysisSampleRate)
	if err := Validate(clip); err != nil {
		return nil, err
	}
	return clip, nil
}

// DecodeChannels runs the full intake pipeline: decode, validate, split into
// agent/owner and normalize each analysis channel.
func DecodeChannels(path string) (Channels, error) {
	clip, err := Decode(path)
	if err != nil {
		return Channels{}, err
	}

	agent, owner := SplitChannels(clip)
	return Channels{
		Agent:      Normalize(agent),
		Owner:      Normalize(owner),
		DurationMs: clip.DurationMs(),
	}, nil
}
