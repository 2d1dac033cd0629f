package page

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	notifyBase   = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	successStyle = notifyBase.Background(lipgloss.Color("#10b981"))
	errorStyle   = notifyBase.Background(lipgloss.Color("#ef4444"))
	infoStyle    = notifyBase.Background(lipgloss.Color("#3b82f6"))
	notifyPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Render("leet2git")
)

// TerminalNotifier prints each notification as a colored banner line.
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

func (n *TerminalNotifier) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "%s %s\n", notifyPrefix, styleFor(level).Render(message))
}

func styleFor(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return successStyle
	case LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}
