// Package render prints the CLI's human-facing progress output: one
// colorized line per completed file, plus a final run summary line.
//
// Color handling mirrors the palette used elsewhere in this codebase's
// TUI surfaces: green for success, amber for warnings and rejected, magenta
// for aborted, red for failed, muted gray for any other status. --no-color
// disables styling outright.
package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/floe-data/floe/types"
)

var (
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	abortColor   = lipgloss.Color("#EC4899")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
)

// FileLine renders one completed file's status line to w.
type FileLine struct {
	out     io.Writer
	noColor bool
}

// NewFileLine builds a FileLine renderer. Pass noColor=true for --no-color
// or when stderr isn't a TTY.
func NewFileLine(out io.Writer, noColor bool) *FileLine {
	return &FileLine{out: out, noColor: noColor}
}

// Print writes one line for a completed file: "<entity> <file> <STATUS>
// rows=N accepted=N rejected=N warnings=N".
func (f *FileLine) Print(entity string, outcome types.FileOutcome) {
	label, style := statusStyle(outcome.Status)
	status := label
	if !f.noColor {
		status = style.Render(label)
	}
	fmt.Fprintf(f.out, "%s  %s  %s  rows=%d accepted=%d rejected=%d warnings=%d\n",
		entity, outcome.FileURI, status, outcome.RowsTotal, outcome.Accepted, outcome.Rejected, outcome.Warnings)
}

// Summary writes the final one-line run summary.
func (f *FileLine) Summary(runID string, status types.RunStatus) {
	label, style := summaryStyle(status)
	rendered := label
	if !f.noColor {
		rendered = style.Render(label)
	}
	fmt.Fprintf(f.out, "run %s: %s\n", runID, rendered)
}

func statusStyle(status types.FileStatus) (string, lipgloss.Style) {
	switch status {
	case types.FileSuccess:
		return "SUCCESS", lipgloss.NewStyle().Foreground(successColor)
	case types.FileRejected:
		return "REJECTED", lipgloss.NewStyle().Foreground(warningColor)
	case types.FileAborted:
		return "ABORTED", lipgloss.NewStyle().Foreground(abortColor)
	case types.FileFailed:
		return "FAILED", lipgloss.NewStyle().Foreground(errorColor)
	default:
		return string(status), lipgloss.NewStyle().Foreground(mutedColor)
	}
}

func summaryStyle(status types.RunStatus) (string, lipgloss.Style) {
	switch status {
	case types.RunSuccess:
		return "SUCCESS", lipgloss.NewStyle().Foreground(successColor).Bold(true)
	case types.RunSuccessWithWarnings:
		return "SUCCESS_WITH_WARNINGS", lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	case types.RunRejected:
		return "REJECTED", lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	case types.RunAborted:
		return "ABORTED", lipgloss.NewStyle().Foreground(abortColor).Bold(true)
	case types.RunFailed:
		return "FAILED", lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	default:
		return string(status), lipgloss.NewStyle().Foreground(mutedColor).Bold(true)
	}
}
