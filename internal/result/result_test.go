package result

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/callsift/callsift/internal/callmeta"
	"github.com/callsift/callsift/internal/detect"
	"github.com/callsift/callsift/internal/score"
)

func cleanRow(agent string) *FileResult {
	return &FileResult{
		Meta:      callmeta.Meta{AgentName: agent, PhoneNumber: "5551234567"},
		Releasing: detect.No,
		LateHello: detect.No,
		Rebuttal:  detect.Yes,
	}
}

func TestFlagged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*FileResult)
		want   bool
	}{
		{"clean", func(r *FileResult) {}, false},
		{"releasing", func(r *FileResult) { r.Releasing = detect.Yes }, true},
		{"late hello", func(r *FileResult) { r.LateHello = detect.Yes }, true},
		{"no rebuttal", func(r *FileResult) { r.Rebuttal = detect.No }, true},
		{"rebuttal n/a", func(r *FileResult) { r.Rebuttal = detect.NotAvailable }, false},
		{"errored", func(r *FileResult) { r.Releasing = detect.Yes; r.Err = "decode failed" }, false},
	}
	for _, tt := range tests {
		r := cleanRow("Agent")
		tt.mutate(r)
		if got := r.Flagged(); got != tt.want {
			t.Errorf("%s: Flagged = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTableViews(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Append(cleanRow("Clean Agent"))
	flagged := cleanRow("Flagged Agent")
	flagged.Rebuttal = detect.No
	tbl.Append(flagged)
	broken := cleanRow("Broken Agent")
	broken.Err = "timeout"
	tbl.Append(broken)

	if got := tbl.Len(); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
	if got := tbl.All(); len(got) != 2 {
		t.Errorf("All returned %d rows, want 2 (error rows excluded)", len(got))
	}
	if got := tbl.Flagged(); len(got) != 1 || got[0].Meta.AgentName != "Flagged Agent" {
		t.Errorf("Flagged returned %v", got)
	}
	if got := tbl.Errors(); len(got) != 1 || got[0].Status() != score.StatusError {
		t.Errorf("Errors returned %v", got)
	}
}

func TestWriteCSV_ColumnContract(t *testing.T) {
	t.Parallel()

	r := cleanRow("John Smith")
	r.Meta.Timestamp = "10:30am"
	r.Meta.Disposition = "Callback"
	r.Meta.DialerName = "Alpha"
	r.Transcript = strings.Repeat("hello there ", 20)
	r.Intro = score.Evaluate(score.Input{
		Transcript: "this is john calling about your house",
		AgentName:  "John Smith",
		Releasing:  r.Releasing,
		LateHello:  r.LateHello,
		Rebuttal:   r.Rebuttal,
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*FileResult{r}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}

	wantHeader := []string{
		"Agent Name", "Phone Number", "Timestamp", "Disposition", "Dialer Name",
		"Releasing Detection", "Late Hello Detection", "Rebuttal Detection",
		"Transcription", "Agent Intro", "Owner Name", "Reason for calling",
		"Intro Score", "Status",
	}
	for i, want := range wantHeader {
		if records[0][i] != want {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], want)
		}
	}

	got := records[1]
	if got[0] != "John Smith" || got[7] != "Yes" {
		t.Errorf("row = %v", got)
	}
	if got[8] != r.Transcript {
		t.Error("csv transcript truncated")
	}
	if !strings.HasSuffix(got[12], "%") {
		t.Errorf("Intro Score = %q, want percentage", got[12])
	}
}

func TestRender_TruncatesTranscript(t *testing.T) {
	t.Parallel()

	r := cleanRow("Agent")
	r.Transcript = strings.Repeat("x", 500)

	var buf bytes.Buffer
	if err := Render(&buf, []*FileResult{r}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Agent Name") {
		t.Error("header missing from rendered table")
	}
	if strings.Contains(out, strings.Repeat("x", 200)) {
		t.Error("transcript not truncated in terminal output")
	}
}

func TestStatus_NeedsTrainingRendering(t *testing.T) {
	t.Parallel()

	r := cleanRow("Agent")
	r.Rebuttal = detect.No
	// Only OnTimeHello and AgentSpoke pass: 2/6 = 33% -> Needs Training.
	r.Intro = score.Evaluate(score.Input{
		Transcript: "mumble mumble",
		Releasing:  r.Releasing,
		LateHello:  r.LateHello,
		Rebuttal:   r.Rebuttal,
	})
	if got := r.Status(); got != score.StatusNeedsTraining {
		t.Errorf("Status = %q, want %q", got, score.StatusNeedsTraining)
	}
	if string(score.StatusNeedsTraining) != "Needs Training" {
		t.Errorf("status renders as %q", string(score.StatusNeedsTraining))
	}
}
