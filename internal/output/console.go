// Package output renders scan scopes and historical change events for
// the terminal or machine consumption.
package output

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Event is one historical package change prepared for reporting.
type Event struct {
	Atom   string
	Status string
	Date   string
	Commit string
}

// HistoryReport groups reported events under their source repository.
type HistoryReport struct {
	RepoID string
	Events []Event
}

// ScopeReport describes the restriction set computed for a scan.
type ScopeReport struct {
	Reference string
	Atoms     []string
	Eclasses  []string
}

// HistoryWriter renders a history report.
type HistoryWriter interface {
	Write(report *HistoryReport) error
}

// NewHistoryWriter selects a writer by format name.
func NewHistoryWriter(format string) (HistoryWriter, error) {
	switch format {
	case "console", "":
		return &ConsoleHistoryWriter{}, nil
	case "json":
		return &JSONHistoryWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// ConsoleHistoryWriter writes history reports to the console.
type ConsoleHistoryWriter struct{}

// Write outputs the events as an aligned table.
func (w *ConsoleHistoryWriter) Write(report *HistoryReport) error {
	color.Green("Package change history (%s)", report.RepoID)
	if len(report.Events) == 0 {
		fmt.Println("no recorded changes")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tStatus\tAtom\tCommit")
	for _, e := range report.Events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date, e.Status, e.Atom, e.Commit)
	}
	return tw.Flush()
}

// WriteScope prints the restriction set a scan will run under.
func WriteScope(report *ScopeReport) {
	color.Green("Scan targets (against %s)", report.Reference)
	for _, a := range report.Atoms {
		fmt.Printf("  pkg:    %s\n", a)
	}
	for _, e := range report.Eclasses {
		fmt.Printf("  eclass: %s\n", e)
	}
}
