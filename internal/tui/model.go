package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/summarizer"
)

// Model is the Bubble Tea model for the interactive query screen.
type Model struct {
	analyzer domain.Analyzer
	describe func() string
	input    textinput.Model
	viewport viewport.Model
	analysis *domain.Analysis
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model. describe is called on every render so a hot
// reload shows up in the summary line.
func New(analyzer domain.Analyzer, describe func() string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if describe == nil {
		describe = func() string { return "" }
	}
	return Model{analyzer: analyzer, describe: describe, input: ti, viewport: vp, status: "Loaded. Type to analyze."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				a, err := m.analyzer.Analyze(context.Background(), q)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.analysis = nil
				} else {
					m.status = fmt.Sprintf("%d results for %q", len(a.Results), q)
					m.analysis = &a
					m.cursor = 0
				}
				m.viewport.SetContent(m.renderCurrent())
				m.viewport.GotoTop()
				return m, nil
			}
		case "down":
			if n := m.resultCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if n := m.resultCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("GhostTrace")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.describe())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) resultCount() int {
	if m.analysis == nil {
		return 0
	}
	return len(m.analysis.Results)
}

func (m Model) renderCurrent() string {
	if m.analysis == nil {
		return "No results yet."
	}
	verdict := renderVerdict(m.analysis.Verdict)
	if len(m.analysis.Results) == 0 {
		return verdict + "\n\nNo documents retrieved."
	}
	r := m.analysis.Results[m.cursor]
	md := r.Document.Metadata
	title := fmt.Sprintf("Result %d/%d  distance=%.3f", m.cursor+1, len(m.analysis.Results), r.Distance)
	meta := fmt.Sprintf("%s  version=%s  type=%s", md.FileName, md.Version, md.DocType)
	if md.Deprecated {
		meta += "  " + deprecatedStyle.Render("DEPRECATED")
	}
	body := highlightBestSentence(r.Document.Text, m.analysis.Query)
	return verdict + "\n\n" + title + "\n" + mutedStyle.Render(meta) + "\n\n" + body
}

func renderVerdict(v domain.RiskVerdict) string {
	var b strings.Builder
	b.WriteString(levelStyle(v.Level).Render(fmt.Sprintf("%s RISK", v.Level)))
	fmt.Fprintf(&b, "  score %d/100", v.Score)
	if len(v.Flags) > 0 {
		b.WriteString("\nFlags: " + strings.Join(v.Flags, ", "))
	}
	for _, r := range v.Reasons {
		b.WriteString("\n  - " + r)
	}
	if len(v.Actions) > 0 {
		b.WriteString("\nActions: " + strings.Join(v.Actions, "; "))
	}
	return b.String()
}

func levelStyle(l domain.RiskLevel) lipgloss.Style {
	color := "10"
	switch l {
	case domain.RiskHigh:
		color = "9"
	case domain.RiskMedium:
		color = "11"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

var (
	resultBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	deprecatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func highlightBestSentence(text, query string) string {
	sentences := summarizer.Sentences(text)
	if len(sentences) == 0 {
		return text
	}
	if strings.TrimSpace(query) == "" {
		return strings.Join(sentences, " ")
	}
	best := summarizer.Rank(sentences, query)[0]
	sentences[best] = highlightStyle.Render(sentences[best])
	return strings.Join(sentences, " ")
}
