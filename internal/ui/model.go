// Package ui holds the short-lived notification line shown under a screen.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tubecli/tube/style"
)

// NotificationLifetime is how long a notification stays visible.
const NotificationLifetime = 3 * time.Second

// Model holds the current notification.
type Model struct {
	notification string
	seq          int
}

// NotificationMsg shows Text.
type NotificationMsg struct {
	Text string
}

// ClearNotificationMsg hides the notification it was scheduled for.
type ClearNotificationMsg struct {
	seq int
}

// Notify returns a command that shows text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg{Text: text}
	}
}

func clearAfter(seq int) tea.Cmd {
	return tea.Tick(NotificationLifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{seq: seq}
	})
}

// Update applies notification messages. Newer notifications are not cleared
// by the timer of an older one.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.seq++
		m.notification = msg.Text
		return clearAfter(m.seq)
	case ClearNotificationMsg:
		if msg.seq == m.seq {
			m.notification = ""
		}
	}
	return nil
}

// Current returns the visible notification, if any.
func (m *Model) Current() string {
	return m.notification
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.notification == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
