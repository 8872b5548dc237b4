package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atharva-labs/atharva-cli/internal/model"
)

func (m Model) View() string {
	switch m.screen {
	case screenLogin:
		return m.viewLogin()
	case screenSessions:
		return m.viewSessions()
	case screenWriter:
		return m.viewWriter()
	}
	return ""
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.th.Title.Render("Atharva Writer") + "\n\n")
	if m.notice != "" {
		b.WriteString(m.th.Muted.Render(m.notice) + "\n\n")
	}
	b.WriteString(m.th.Label.Render("Username") + "\n" + m.username.View() + "\n")
	b.WriteString(m.th.Label.Render("Password") + "\n" + m.password.View() + "\n\n")
	if m.loggingIn {
		b.WriteString(m.spin.View() + " logging in...\n")
	}
	if m.errMsg != "" {
		b.WriteString(m.th.Alert.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n" + m.th.Muted.Render("enter: log in • tab: switch field • ctrl+c: quit"))
	return b.String()
}

func (m Model) viewSessions() string {
	var b strings.Builder
	b.WriteString(m.th.Title.Render("My Sessions") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " loading sessions...\n")
	case len(m.sessions) == 0:
		b.WriteString(m.th.Muted.Render("No sessions yet. Press n to create one.") + "\n")
	default:
		for i, s := range m.sessions {
			line := fmt.Sprintf("%s  %s", s.Title, m.th.Muted.Render("created "+s.CreatedAt.Format("2006-01-02")))
			if i == m.cursor {
				line = m.th.Active.Render("> ") + line
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
	}

	if m.creating {
		b.WriteString("\n" + m.th.Label.Render("New session title") + "\n" + m.title.View() + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + m.th.Accent.Render(m.notice))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + m.th.Alert.Render(m.errMsg))
	}
	b.WriteString("\n\n" + m.th.Muted.Render("enter: open • n: new • d: delete • r: reload • q: quit"))
	return b.String()
}

func (m Model) viewWriter() string {
	var b strings.Builder
	b.WriteString(m.viewOptionBar() + "\n")
	b.WriteString(m.stream.View() + "\n")
	if m.submitting {
		b.WriteString(m.spin.View() + " AI Writer is thinking...\n")
	}
	if m.errMsg != "" {
		b.WriteString(m.th.Alert.Render(m.errMsg) + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(m.th.Muted.Render("enter: send • ctrl+j: newline • tab: mode • ctrl+t: tone • ctrl+g: genre/level • ctrl+y: language • esc: back"))
	return b.String()
}

func (m Model) viewOptionBar() string {
	opts := m.ws.Options()
	parts := []string{
		m.th.Label.Render("Mode ") + m.th.Active.Render(string(opts.Mode)),
		m.th.Label.Render("Tone ") + opts.Tone,
		m.th.Label.Render("Lang ") + opts.Language,
	}
	if opts.Mode == model.ModeGenerate {
		parts = append(parts,
			m.th.Label.Render("Genre ")+opts.Genre,
			m.th.Label.Render("Words ")+fmt.Sprint(opts.TargetWords),
		)
	} else {
		parts = append(parts, m.th.Label.Render("Intensity ")+opts.Level)
	}
	return strings.Join(parts, m.th.Muted.Render("  │  "))
}

// renderStream formats the paragraph stream with score meters. Absent scores
// render as 0.00 and a missing emotion as Neutral, never an error.
func renderStream(th theme, paragraphs []model.Paragraph, width int) string {
	if width < 20 {
		width = 20
	}
	if len(paragraphs) == 0 {
		return th.Muted.Render("What are we creating today? Start writing below.")
	}
	blocks := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		scores := fmt.Sprintf("%s %s %s  %s %s %s  %s %s",
			th.Label.Render("drift"),
			meter(p.DriftRatio(), 10, th.Drift),
			th.Drift.Render(p.DriftDisplay()),
			th.Label.Render("consistency"),
			meter(p.ConsistencyRatio(), 10, th.Consist),
			th.Consist.Render(p.ConsistencyDisplay()),
			th.Label.Render("emotion"),
			th.Emotion.Render(p.EmotionDisplay()),
		)
		content := lipgloss.NewStyle().Width(width - 4).Render(p.Content)
		blocks = append(blocks, th.Card.Render(content+"\n\n"+scores))
	}
	return strings.Join(blocks, "\n")
}
