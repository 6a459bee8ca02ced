// Package mock provides a test double for the transcribe.Provider interface.
//
// Use Provider to return pre-canned transcripts without a live backend and
// to verify which files are submitted for transcription.
//
// Example:
//
//	p := &mock.Provider{
//	    Result: &transcribe.Result{Text: "hi this is john from acme"},
//	}
//	res, _ := p.TranscribeFile(ctx, "/tmp/agent.wav", transcribe.Options{})
package mock

import (
	"context"
	"sync"

	"github.com/callsift/callsift/pkg/provider/transcribe"
)

// Call records a single invocation of TranscribeFile.
type Call struct {
	// Path is the file path passed to TranscribeFile.
	Path string

	// Opts is the options value passed to TranscribeFile.
	Opts transcribe.Options
}

// Provider is a mock implementation of transcribe.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// Result is returned by TranscribeFile. If nil, an empty Result is
	// returned.
	Result *transcribe.Result

	// Err, if non-nil, is returned as the error from TranscribeFile.
	Err error

	// ResultFunc, if non-nil, overrides Result/Err and computes the response
	// per call. Useful for delaying or varying responses by path.
	ResultFunc func(ctx context.Context, path string) (*transcribe.Result, error)

	// --- Call records ---

	// Calls records every call to TranscribeFile in order.
	Calls []Call
}

// Compile-time assertion that Provider implements transcribe.Provider.
var _ transcribe.Provider = (*Provider)(nil)

// TranscribeFile records the call and returns the configured response.
func (p *Provider) TranscribeFile(ctx context.Context, path string, opts transcribe.Options) (*transcribe.Result, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, Call{Path: path, Opts: opts})
	fn := p.ResultFunc
	res, err := p.Result, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &transcribe.Result{}, nil
	}
	out := *res
	return &out, nil
}

// CallCount returns the number of recorded calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
