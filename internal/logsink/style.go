package logsink

import "github.com/charmbracelet/lipgloss"

// Severity is the visual class of an entry.
type Severity string

const (
	SeveritySuccess Severity = "log-success"
	SeverityError   Severity = "log-error"
	SeverityWarning Severity = "log-warning"
	SeverityInfo    Severity = "log-info"
	// SeverityNone is used for statuses the log does not recognize.
	SeverityNone Severity = ""
)

// Classify maps a wire status to its severity class.
func Classify(status string) Severity {
	switch status {
	case "success":
		return SeveritySuccess
	case "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	case "info":
		return SeverityInfo
	default:
		return SeverityNone
	}
}

var severityStyles = map[Severity]lipgloss.Style{
	SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"}),
	SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}),
	SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"}),
	SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "75"}),
}

// StyleFor returns the style for a status; unknown statuses get the default style.
func StyleFor(status string) lipgloss.Style {
	if st, ok := severityStyles[Classify(status)]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
