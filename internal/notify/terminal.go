package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

var icons = map[Severity]string{
	SeverityLoading: "…",
	SeveritySuccess: "✓",
	SeverityInfo:    "i",
	SeverityWarning: "!",
	SeverityError:   "✗",
}

func styleFor(severity Severity) lipgloss.Style {
	switch severity {
	case SeverityLoading:
		return loadingStyle
	case SeveritySuccess:
		return successStyle
	case SeverityWarning:
		return warningStyle
	case SeverityError:
		return errorStyle
	default:
		return infoStyle
	}
}

// Terminal renders notifications as lines on a writer, typically stderr
type Terminal struct {
	mutex  sync.Mutex
	out    io.Writer
	active map[ID]Notification
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:    out,
		active: make(map[ID]Notification),
	}
}

func (t *Terminal) Show(n Notification) ID {
	if n.ID == "" {
		n.ID = NewID()
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.active[n.ID] = n
	fmt.Fprintln(t.out, render(n))
	return n.ID
}

func (t *Terminal) Dismiss(id ID) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	delete(t.active, id)
}

// Active returns the notifications shown and not yet dismissed
func (t *Terminal) Active() []Notification {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	out := make([]Notification, 0, len(t.active))
	for _, n := range t.active {
		out = append(out, n)
	}
	return out
}

func render(n Notification) string {
	icon, ok := icons[n.Severity]
	if !ok {
		icon = icons[SeverityInfo]
	}
	return styleFor(n.Severity).Render(icon + " " + n.Message)
}
