package result

import "sync"

// Table accumulates file results for one run. Safe for concurrent Append
// from worker goroutines.
type Table struct {
	mu   sync.Mutex
	rows []*FileResult
}

// NewTable returns an empty result table.
func NewTable() *Table {
	return &Table{}
}

// Append adds one file's outcome.
func (t *Table) Append(r *FileResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, r)
}

// Len returns the number of rows, error rows included.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// All returns every successfully audited row.
func (t *Table) All() []*FileResult {
	return t.filter(func(r *FileResult) bool { return !r.Failed() })
}

// Flagged returns the rows needing supervisor attention.
func (t *Table) Flagged() []*FileResult {
	return t.filter((*FileResult).Flagged)
}

// Errors returns the rows that failed processing.
func (t *Table) Errors() []*FileResult {
	return t.filter((*FileResult).Failed)
}

func (t *Table) filter(keep func(*FileResult) bool) []*FileResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*FileResult, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
