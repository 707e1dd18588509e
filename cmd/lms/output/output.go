package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

var out io.Writer = os.Stdout

// SetOutput redirects all printing. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	out = w
}

// Success prints a success message
func Success(format string, args ...any) {
	line(successStyle.Render("✓ "), format, args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	line(warningStyle.Render("⚠ "), format, args...)
}

// Error prints an error message
func Error(format string, args ...any) {
	line(errorStyle.Render("✗ "), format, args...)
}

// Info prints an info message
func Info(format string, args ...any) {
	line(infoStyle.Render("ℹ "), format, args...)
}

// Muted prints a muted message
func Muted(format string, args ...any) {
	_, _ = fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, primaryStyle.Render(title))
	_, _ = fmt.Fprintln(out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// LoanStatusIcon returns a colored icon for a loan status, overdue loans get the warning color.
func LoanStatusIcon(status string, daysOverdue int) string {
	switch {
	case status == "returned":
		return successStyle.Render("✓")
	case daysOverdue > 0:
		return warningStyle.Render("!")
	case status == "borrowed":
		return infoStyle.Render("◉")
	default:
		return mutedStyle.Render("•")
	}
}

func line(icon, format string, args ...any) {
	_, _ = fmt.Fprint(out, icon)
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}
