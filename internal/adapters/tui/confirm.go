// Package tui holds the interactive pieces of the command line
// frontend: the live-mode confirmation prompt and the run summary
// rendering.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"zotsync/internal/ports"
)

// ConfirmKeyMap defines key bindings for the confirmation prompt
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc", "ctrl+c"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// confirmModel is a one-question y/n prompt.
type confirmModel struct {
	question  string
	keys      ConfirmKeyMap
	confirmed bool
	answered  bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.confirmed = true
		m.answered = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	var b strings.Builder
	b.WriteString(warningStyle.Render(m.question))
	b.WriteString(" ")
	b.WriteString(helpKeyStyle.Render("y"))
	b.WriteString(helpDescStyle.Render(" to confirm, "))
	b.WriteString(helpKeyStyle.Render("n"))
	b.WriteString(helpDescStyle.Render(" to cancel"))
	b.WriteString("\n")
	return b.String()
}

// Confirm asks a single y/n question on the terminal.
type Confirm struct {
	Question string
}

var _ ports.Confirmer = (*Confirm)(nil)

// NewLiveConfirm builds the prompt shown before a live run mutates the
// remote library.
func NewLiveConfirm() *Confirm {
	return &Confirm{Question: "Live mode will create items in your Zotero library. Continue?"}
}

// ConfirmLive runs the prompt and reports the answer. Any answer other
// than an explicit confirm counts as a refusal.
func (c *Confirm) ConfirmLive() (bool, error) {
	m := confirmModel{question: c.Question, keys: DefaultConfirmKeys}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, fmt.Errorf("failed to run confirmation prompt: %w", err)
	}
	res, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return res.confirmed, nil
}
