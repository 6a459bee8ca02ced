package result

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Columns is the output column contract, shared by the terminal and CSV
// renderers. Order and names are fixed; downstream spreadsheets key on them.
var Columns = []string{
	"Agent Name", "Phone Number", "Timestamp", "Disposition", "Dialer Name",
	"Releasing Detection", "Late Hello Detection", "Rebuttal Detection",
	"Transcription", "Agent Intro", "Owner Name", "Reason for calling",
	"Intro Score", "Status",
}

// terminalTranscriptLimit keeps the terminal table usable; the CSV always
// carries the full transcript.
const terminalTranscriptLimit = 80

// row renders one result as column values. Full transcript when full is set.
func row(r *FileResult, full bool) []string {
	transcript := r.Transcript
	if !full && len(transcript) > terminalTranscriptLimit {
		transcript = transcript[:terminalTranscriptLimit-3] + "..."
	}
	return []string{
		r.Meta.AgentName,
		r.Meta.PhoneNumber,
		r.Meta.Timestamp,
		r.Meta.Disposition,
		r.Meta.DialerName,
		string(r.Releasing),
		string(r.LateHello),
		string(r.Rebuttal),
		transcript,
		string(r.Intro.AgentIntro.Display),
		string(r.Intro.OwnerName.Display),
		string(r.Intro.PropertyRef.Display),
		fmt.Sprintf("%.0f%%", r.Intro.Percent()),
		string(r.Status()),
	}
}

// Render writes the rows as a rounded table, colorized when w is a
// terminal.
func Render(w io.Writer, rows []*FileResult) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if shouldColorize(w) {
		tw.Style().Color.Header = text.Colors{text.Bold}
	}

	header := make(table.Row, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, r := range rows {
		cells := row(r, false)
		tr := make(table.Row, len(cells))
		for i, c := range cells {
			tr[i] = c
		}
		tw.AppendRow(tr)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Transcription", WidthMax: terminalTranscriptLimit, Align: text.AlignLeft},
	})
	tw.Render()
	return nil
}

// WriteCSV writes the rows with the same column contract and the full
// transcript.
func WriteCSV(w io.Writer, rows []*FileResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(row(r, true)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
