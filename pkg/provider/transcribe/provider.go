// Package transcribe defines the Provider interface for batch transcription
// backends.
//
// A transcription provider wraps a speech-to-text service (a whisper-server
// instance, the in-process whisper.cpp bindings, or a cloud API) behind a
// single file-oriented call: the caller hands over a WAV file on disk and
// receives the full transcript, optionally with word timings and speaker
// labels.
//
// Implementations must be safe for concurrent use; the batch engine submits
// many files at once.
package transcribe

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors. Callers match with errors.Is to decide whether a failed
// transcription should surface as a timeout (rebuttal = No) or an error row.
var (
	// ErrTimeout marks a network or deadline timeout talking to the backend.
	ErrTimeout = errors.New("transcribe: timeout")

	// ErrAuth marks an authentication or authorization failure.
	ErrAuth = errors.New("transcribe: authentication failed")
)

// Options carries per-request hints.
type Options struct {
	// SpeakerLabels requests per-word speaker attribution when the backend
	// supports it. Backends without diarization ignore it.
	SpeakerLabels bool

	// LanguageCode is the BCP-47 language for recognition. Empty means "en".
	LanguageCode string
}

// Word is one recognized word with millisecond timing.
type Word struct {
	Text    string
	StartMs int
	EndMs   int

	// Speaker is the diarization label ("A", "B", ...) when speaker labels
	// were requested and the backend supports them; empty otherwise.
	Speaker string
}

// Result is a completed transcription.
type Result struct {
	// Text is the full transcript, lowercased by the caller before matching.
	Text string

	// Words holds word-level timings when the backend provides them.
	Words []Word

	// Confidence is the backend's overall confidence in [0,1], or 0 when the
	// backend does not report one.
	Confidence float64

	// ProcessingTime is how long the backend took.
	ProcessingTime time.Duration
}

// Provider is the abstraction over any batch transcription backend.
type Provider interface {
	// TranscribeFile transcribes the audio file at path. The file must be a
	// 16 kHz mono 16-bit WAV; callers are responsible for decoding and
	// resampling beforehand.
	//
	// Errors wrap ErrTimeout or ErrAuth where the cause is known.
	TranscribeFile(ctx context.Context, path string, opts Options) (*Result, error)
}
