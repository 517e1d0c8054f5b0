package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"scandesk/internal/core/scan"
)

// keyMap holds the station's own bindings; they are all modified keys so a
// scanner burst can never trigger them
type keyMap struct {
	Quit      key.Binding
	Manual    key.Binding
	Cancel    key.Binding
	Ownership key.Binding
	Debug     key.Binding
}

var defaultKeys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Manual: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "manual scan"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Ownership: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "cycle owner"),
	),
	Debug: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "debug"),
	),
}

// keyEvents translates one terminal key message into classifier key-downs.
// The terminal may coalesce a fast burst into a single message with many
// runes; each rune becomes its own event stamped with the same time.
// Bracketed pastes are operator input, not keystrokes, and yield nothing.
func keyEvents(msg tea.KeyMsg, target scan.Target, at time.Time) []scan.KeyEvent {
	if msg.Paste {
		return nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return []scan.KeyEvent{{Key: scan.KeyEnter, Alt: msg.Alt, Target: target, At: at}}
	case tea.KeyTab:
		return []scan.KeyEvent{{Key: scan.KeyTab, Alt: msg.Alt, Target: target, At: at}}
	case tea.KeySpace:
		return []scan.KeyEvent{{Key: " ", Alt: msg.Alt, Target: target, At: at}}
	case tea.KeyRunes:
		out := make([]scan.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, scan.KeyEvent{Key: string(r), Alt: msg.Alt, Target: target, At: at})
		}
		return out
	}

	name := msg.String()
	return []scan.KeyEvent{{
		Key:    name,
		Ctrl:   strings.HasPrefix(strings.TrimPrefix(name, "alt+"), "ctrl+"),
		Alt:    msg.Alt,
		Target: target,
		At:     at,
	}}
}
