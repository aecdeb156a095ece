// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"taskforge/internal/crystal"
	"taskforge/internal/service"
)

const (
	// Separator is the line printed between result sections.
	Separator = "------------"

	ansiReset = "\x1b[0m"
)

var priorityColors = map[service.Priority]string{
	service.PriorityLow:      "\x1b[32m",   // green
	service.PriorityMedium:   "\x1b[33m",   // yellow
	service.PriorityHigh:     "\x1b[31m",   // red
	service.PriorityUrgent:   "\x1b[35m",   // magenta
	service.PriorityCritical: "\x1b[1;31m", // bold red
}

// Styler decides whether ANSI colour is written.
type Styler struct {
	Color bool
}

// NewStyler enables colour when w is a terminal.
func NewStyler(w io.Writer) Styler {
	f, ok := w.(*os.File)
	if !ok {
		return Styler{}
	}
	fd := f.Fd()
	return Styler{Color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

// PriorityTag renders "[high]", coloured when enabled. Unknown priorities
// render as medium.
func (s Styler) PriorityTag(priority string) string {
	p := service.ParsePriority(priority)
	tag := "[" + p.String() + "]"
	if !s.Color {
		return tag
	}
	return priorityColors[p] + tag + ansiReset
}

// ProjectTitle turns "madness_interactive" into "Madness Interactive".
func ProjectTitle(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return "(none)"
	}
	return cases.Title(language.Und).String(name)
}

// FormatCrystal formats a numbered local crystal.
// Format: "{N:>4}  [priority] {DESC}  ({Project})"
func FormatCrystal(w io.Writer, s Styler, num int, c crystal.Crystal) {
	fmt.Fprintf(w, "%4d  %s %s  (%s)\n", num, s.PriorityTag(c.Priority), normalizeText(c.Description), ProjectTitle(c.Project))
}

// FormatCrystalBrief formats a crystal without numbering, as used for
// search matches.
func FormatCrystalBrief(w io.Writer, s Styler, c crystal.Crystal) {
	fmt.Fprintf(w, "  - %s %s  (%s)\n", s.PriorityTag(c.Priority), normalizeText(c.Description), ProjectTitle(c.Project))
}

// FormatServerTask formats a task returned by the remote service.
// Format: "  * [priority] {DESC}  ({Project}, {status})"
func FormatServerTask(w io.Writer, s Styler, t service.TaskRecord) {
	status := t.Status
	if status == "" {
		status = "pending"
	}
	fmt.Fprintf(w, "  * %s %s  (%s, %s)\n", s.PriorityTag(t.Priority), normalizeText(t.Description), ProjectTitle(t.Project), status)
}

// FormatHeader prints a section header between separators.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, Separator)
}

// normalizeText makes a description printable on one line.
// Empty or whitespace-only text becomes "(untitled)".
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
