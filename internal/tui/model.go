package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"perfume/internal/domain"
)

// Mode selects the search strategy.
type Mode int

const (
	// ModeExact lists perfumes matching every attribute.
	ModeExact Mode = iota
	// ModeRanked ranks perfumes by weighted similarity.
	ModeRanked
)

func (m Mode) String() string {
	if m == ModeRanked {
		return "Recommended search"
	}
	return "Simple search"
}

// Messages shown to the user.
const (
	msgNoExactMatch = "No perfume matches your criteria exactly. Try adjusting your choices!"
	msgNoRanked     = "No recommendation available with these criteria. Try adjusting the weights!"
)

// RecommenderPort is the TUI-facing subset of the recommender.
type RecommenderPort interface {
	Rank(query domain.Query, weights domain.QueryWeights) []domain.Recommendation
	FilterExact(query domain.Query) []domain.PerfumeRecord
	Options(a domain.Attribute) []string
}

// Settings configures the weight sliders and result limits.
type Settings struct {
	MinWeight     int
	MaxWeight     int
	DefaultWeight int
	ExactLimit    int // -1 = no limit
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  RecommenderPort
	settings Settings
	options  [domain.AttributeCount][]string
	selected [domain.AttributeCount]int
	weights  domain.QueryWeights
	mode     Mode
	focus    int
	viewport viewport.Model
	results  []string
	summary  string
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New(service RecommenderPort, settings Settings, summary string) Model {
	m := Model{
		service:  service,
		settings: settings,
		weights:  domain.UniformWeights(settings.DefaultWeight),
		viewport: viewport.New(0, 0),
		summary:  summary,
		status:   "Loaded. ←/→ to choose, Enter to search, Tab to switch mode.",
	}
	for _, a := range domain.Attributes() {
		m.options[a] = service.Options(a)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, fh := formBoxStyle.GetFrameSize()
		reserved := 2 + 1 + fh + m.fieldCount() + 1 // header+summary, status, form, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == ModeExact {
				m.mode = ModeRanked
			} else {
				m.mode = ModeExact
			}
			if m.focus >= m.fieldCount() {
				m.focus = m.fieldCount() - 1
			}
			m.results = nil
			m.status = m.mode.String()
		case "up", "k":
			m.focus = (m.focus - 1 + m.fieldCount()) % m.fieldCount()
		case "down", "j":
			m.focus = (m.focus + 1) % m.fieldCount()
		case "left", "h":
			m.step(-1)
		case "right", "l":
			m.step(1)
		case "enter":
			m.search()
		}
		m.viewport.SetContent(m.renderResults())
	}
	return m, nil
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Perfume Finder · " + m.mode.String())
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	form := formBoxStyle.Render(m.renderForm())
	results := resultBoxStyle.Render(m.viewport.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + form + "\n" + results + "\n" + status
}

// Query returns the currently selected attribute values.
func (m Model) Query() domain.Query {
	var v [domain.AttributeCount]string
	for _, a := range domain.Attributes() {
		if opts := m.options[a]; len(opts) > 0 {
			v[a] = opts[m.selected[a]]
		}
	}
	return domain.Query{Personality: v[domain.Personality], Occasion: v[domain.Occasion], Notes: v[domain.Notes], Intensity: v[domain.Intensity]}
}

// Weights returns the current slider values.
func (m Model) Weights() domain.QueryWeights { return m.weights }

// Mode returns the active search mode.
func (m Model) Mode() Mode { return m.mode }

// Results returns the rendered result lines of the last search.
func (m Model) Results() []string { return m.results }

// Status returns the status line.
func (m Model) Status() string { return m.status }

func (m Model) fieldCount() int {
	if m.mode == ModeRanked {
		return 2 * domain.AttributeCount
	}
	return domain.AttributeCount
}

// step moves the focused selector by delta.
func (m *Model) step(delta int) {
	if m.focus < domain.AttributeCount {
		a := domain.Attribute(m.focus)
		n := len(m.options[a])
		if n == 0 {
			return
		}
		m.selected[a] = (m.selected[a] + delta + n) % n
		return
	}
	a := domain.Attribute(m.focus - domain.AttributeCount)
	w := m.weights[a] + delta
	if w < m.settings.MinWeight {
		w = m.settings.MinWeight
	}
	if w > m.settings.MaxWeight {
		w = m.settings.MaxWeight
	}
	m.weights[a] = w
}

func (m *Model) search() {
	q := m.Query()
	m.results = nil
	if m.mode == ModeExact {
		recs := m.service.FilterExact(q)
		if len(recs) == 0 {
			m.status = msgNoExactMatch
			return
		}
		if n := m.settings.ExactLimit; n >= 0 && len(recs) > n {
			recs = recs[:n]
		}
		for _, r := range recs {
			m.results = append(m.results, "- "+r.Name)
		}
		m.status = "We recommend these perfumes:"
		return
	}
	if err := m.weights.Validate(m.settings.MinWeight, m.settings.MaxWeight); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	recs := m.service.Rank(q, m.weights)
	if len(recs) == 0 {
		m.status = msgNoRanked
		return
	}
	for _, r := range recs {
		m.results = append(m.results, fmt.Sprintf("- %s (score: %.2f)", r.Name, r.Score))
	}
	m.status = fmt.Sprintf("Top %d recommended perfumes:", len(recs))
}

func (m Model) renderForm() string {
	var b strings.Builder
	for i := 0; i < m.fieldCount(); i++ {
		var label, value string
		if i < domain.AttributeCount {
			a := domain.Attribute(i)
			label = a.Label()
			value = "(none)"
			if opts := m.options[a]; len(opts) > 0 {
				value = opts[m.selected[a]]
			}
		} else {
			a := domain.Attribute(i - domain.AttributeCount)
			label = "Importance of " + strings.ToLower(a.Label())
			value = slider(m.weights[a], m.settings.MinWeight, m.settings.MaxWeight)
		}
		line := fmt.Sprintf("%-28s ‹ %s ›", label, value)
		if i == m.focus {
			line = focusStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	return strings.Join(m.results, "\n")
}

func slider(v, lo, hi int) string {
	var b strings.Builder
	for i := lo; i <= hi; i++ {
		if i == v {
			b.WriteString(fmt.Sprintf("[%d]", i))
		} else {
			b.WriteString(fmt.Sprintf(" %d ", i))
		}
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	formBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
