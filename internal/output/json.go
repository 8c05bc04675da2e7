package output

import (
	"encoding/json"
	"os"
)

// JSONHistoryWriter writes history reports as JSON.
type JSONHistoryWriter struct{}

// JSONHistoryReport is the JSON output structure for history queries.
type JSONHistoryReport struct {
	Repo   string      `json:"repo"`
	Events []JSONEvent `json:"events"`
}

// JSONEvent is the JSON output structure for a single change event.
type JSONEvent struct {
	Atom   string `json:"atom"`
	Status string `json:"status"`
	Date   string `json:"date"`
	Commit string `json:"commit"`
}

// Write outputs the history report as JSON.
func (w *JSONHistoryWriter) Write(report *HistoryReport) error {
	out := JSONHistoryReport{Repo: report.RepoID, Events: make([]JSONEvent, 0, len(report.Events))}
	for _, e := range report.Events {
		out.Events = append(out.Events, JSONEvent{
			Atom:   e.Atom,
			Status: e.Status,
			Date:   e.Date,
			Commit: e.Commit,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
