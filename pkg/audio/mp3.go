package audio

import (
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// decodeMP3 decodes an MP3 file. The decoder always emits 16-bit stereo at
// the stream's native sample rate, so the result is a stereo clip even for
// mono sources (both channels carry the same signal; the splitter handles
// that fine since dialers record agent-left regardless).
func decodeMP3(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}

	sampleRate := dec.SampleRate()
	if sampleRate <= 0 {
		return nil, fmt.Errorf("mp3: invalid sample rate %d", sampleRate)
	}

	// Length reports the total decoded byte count (4 bytes per stereo
	// frame) and is -1 for streams without a known size.
	var pcm []byte
	if n := dec.Length(); n > 0 {
		pcm = make([]byte, n)
		if _, err := io.ReadFull(dec, pcm); err != nil && err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("mp3 read: %w", err)
		}
	} else {
		pcm, err = io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("mp3 read: %w", err)
		}
	}

	return &Clip{
		SampleRate: sampleRate,
		Channels:   2,
		Samples:    samplesFromBytes(pcm),
	}, nil
}
