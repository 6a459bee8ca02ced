package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/callsift/callsift/internal/detect"
	"github.com/callsift/callsift/internal/phrase"
	"github.com/callsift/callsift/internal/rebuttal"
	storemock "github.com/callsift/callsift/internal/store/mock"
	"github.com/callsift/callsift/pkg/audio"
	"github.com/callsift/callsift/pkg/provider/transcribe"
	transcribemock "github.com/callsift/callsift/pkg/provider/transcribe/mock"
)

// writeStereoWAV renders a 10 s stereo recording: the agent tone (left)
// starts at agentStartMs (negative means a silent agent), the owner (right)
// speaks throughout.
func writeStereoWAV(t *testing.T, path string, agentStartMs int) {
	t.Helper()

	const rate = audio.AnalysisSampleRate
	const durationMs = 10000
	frames := durationMs * rate / 1000
	samples := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		ms := i * 1000 / rate
		if agentStartMs >= 0 && ms >= agentStartMs {
			samples[2*i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/rate))
		}
		samples[2*i+1] = int16(6000 * math.Sin(2*math.Pi*220*float64(i)/rate))
	}
	clip := &audio.Clip{SampleRate: rate, Channels: 2, Samples: samples}
	if err := audio.WriteWAV(path, clip); err != nil {
		t.Fatalf("write wav: %v", err)
	}
}

func newTestEngine(t *testing.T, transcriber transcribe.Provider) *Engine {
	t.Helper()
	repo := phrase.NewRepository(storemock.New(), nil)
	matcher := rebuttal.NewMatcher(repo)
	return New(
		WithTranscriber(transcriber),
		WithMatcher(matcher),
		WithRepository(repo),
	)
}

func TestProcessFolder_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "Campaign Alpha")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeStereoWAV(t, filepath.Join(dir, "JohnSmith _ 10_30am _ 5551234567 _ Callback.wav"), 1200)
	writeStereoWAV(t, filepath.Join(dir, "SilentSam _ 10_45am _ 5557654321 _ NoAnswer.wav"), -1)

	transcriber := &transcribemock.Provider{Result: &transcribe.Result{
		Text: "hi this is john do you have any other property you might want to sell",
	}}
	engine := newTestEngine(t, transcriber)

	table, err := engine.ProcessFolder(context.Background(), dir, "user-1", RunOptions{Workers: 2})
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}

	var spoke, silent *resultRow
	for _, r := range table.All() {
		switch r.Meta.AgentName {
		case "John Smith":
			spoke = &resultRow{r.Releasing, r.LateHello, r.Rebuttal, r.Transcript}
		case "Silent Sam":
			silent = &resultRow{r.Releasing, r.LateHello, r.Rebuttal, r.Transcript}
		}
	}
	if spoke == nil || silent == nil {
		t.Fatalf("missing rows: %v", table.All())
	}

	if spoke.releasing != detect.No || spoke.lateHello != detect.No {
		t.Errorf("speaking agent verdicts = %v/%v, want No/No", spoke.releasing, spoke.lateHello)
	}
	if spoke.rebuttal != detect.Yes {
		t.Errorf("rebuttal = %v, want Yes", spoke.rebuttal)
	}

	if silent.releasing != detect.Yes {
		t.Errorf("silent agent releasing = %v, want Yes", silent.releasing)
	}
	if silent.rebuttal != detect.No {
		t.Errorf("silent agent rebuttal = %v, want discarded No", silent.rebuttal)
	}
	if silent.transcript != "" {
		t.Errorf("silent agent transcript = %q, want empty", silent.transcript)
	}

	if got := table.Flagged(); len(got) != 1 || got[0].Meta.AgentName != "Silent Sam" {
		t.Errorf("Flagged = %v, want only the silent agent", got)
	}
}

type resultRow struct {
	releasing, lateHello, rebuttal detect.Verdict
	transcript                     string
}

func TestProcessFolder_LiteMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStereoWAV(t, filepath.Join(dir, "Agent _ 5551234567.wav"), 1000)

	transcriber := &transcribemock.Provider{Result: &transcribe.Result{Text: "never used"}}
	engine := newTestEngine(t, transcriber)

	table, err := engine.ProcessFolder(context.Background(), dir, "user-1", RunOptions{Lite: true})
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	rows := table.All()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Rebuttal != detect.NotAvailable {
		t.Errorf("lite rebuttal = %v, want N/A", rows[0].Rebuttal)
	}
	if transcriber.CallCount() != 0 {
		t.Errorf("lite mode called the transcriber %d times", transcriber.CallCount())
	}
}

func TestProcessFolder_TranscriptionTimeoutIsSoft(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStereoWAV(t, filepath.Join(dir, "Agent _ 5551234567.wav"), 1000)

	transcriber := &transcribemock.Provider{
		Err: fmt.Errorf("whisper: %w: request timed out", transcribe.ErrTimeout),
	}
	engine := newTestEngine(t, transcriber)

	table, err := engine.ProcessFolder(context.Background(), dir, "user-1", RunOptions{})
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	rows := table.All()
	if len(rows) != 1 {
		t.Fatalf("expected the row to survive a transcription timeout, got %d rows", len(rows))
	}
	if rows[0].Rebuttal != detect.No {
		t.Errorf("rebuttal = %v, want No", rows[0].Rebuttal)
	}
	if rows[0].Note != "timeout" {
		t.Errorf("Note = %q, want %q", rows[0].Note, "timeout")
	}
	if rows[0].Releasing != detect.No {
		t.Errorf("releasing = %v, want No", rows[0].Releasing)
	}
}

func TestProcessFolder_TranscriptionErrorRow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStereoWAV(t, filepath.Join(dir, "Agent _ 5551234567.wav"), 1000)

	transcriber := &transcribemock.Provider{Err: errors.New("server exploded")}
	engine := newTestEngine(t, transcriber)

	table, err := engine.ProcessFolder(context.Background(), dir, "user-1", RunOptions{})
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	rows := table.All()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Rebuttal != detect.Error {
		t.Errorf("rebuttal = %v, want Error", rows[0].Rebuttal)
	}
}

func TestProcessFolder_BadFileIsolated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStereoWAV(t, filepath.Join(dir, "GoodAgent _ 5551234567.wav"), 1000)
	if err := os.WriteFile(filepath.Join(dir, "corrupt.wav"), make([]byte, 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	engine := newTestEngine(t, nil)
	table, err := engine.ProcessFolder(context.Background(), dir, "user-1", RunOptions{})
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if got := table.Errors(); len(got) != 1 || got[0].Err == "" {
		t.Errorf("Errors = %v, want 1 error row", got)
	}
	if got := table.All(); len(got) != 1 || got[0].Meta.AgentName != "Good Agent" {
		t.Errorf("All = %v, want the good file only", got)
	}
}

func TestProcessFolder_Progress(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeStereoWAV(t, filepath.Join(dir, fmt.Sprintf("Agent%c _ 555123456%d.wav", 'A'+i, i)), 1000)
	}

	engine := newTestEngine(t, nil)
	var lastDone, lastTotal int
	_, err := engine.ProcessFolder(context.Background(), dir, "user-1", RunOptions{
		Lite: true,
		Progress: func(done, total int) {
			lastDone, lastTotal = done, total
		},
	})
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	if lastDone != 3 || lastTotal != 3 {
		t.Errorf("final progress = %d/%d, want 3/3", lastDone, lastTotal)
	}
}

func TestProcessFolder_EmptyFolder(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil)
	table, err := engine.ProcessFolder(context.Background(), t.TempDir(), "user-1", RunOptions{})
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected no rows, got %d", table.Len())
	}
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	e := New()
	if got := e.workerCount(RunOptions{Workers: 7}); got != 7 {
		t.Errorf("explicit override = %d, want 7", got)
	}
	free := e.workerCount(RunOptions{Tier: "free"})
	if free > freeTierWorkers {
		t.Errorf("free tier = %d, want <= %d", free, freeTierWorkers)
	}
	paid := e.workerCount(RunOptions{Tier: "paid"})
	if paid > paidTierWorkers {
		t.Errorf("paid tier = %d, want <= %d", paid, paidTierWorkers)
	}
	if paid < free {
		t.Errorf("paid tier %d smaller than free tier %d", paid, free)
	}
}
