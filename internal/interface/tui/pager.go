package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type keymap struct {
	Home,
	End,
	Search,
	NextMatch,
	PrevMatch,
	Abort,
	Quit,
	ConfirmSearch,
	CancelSearch key.Binding
}

// FullHelp implements help.KeyMap.
func (k keymap) FullHelp() [][]key.Binding {
	return nil
}

// ShortHelp implements help.KeyMap.
func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↓↑", "navigate"),
		),
		k.Quit,
		k.Search,
		k.NextMatch,
		k.PrevMatch,
	}
}

func defaultKeymap() keymap {
	return keymap{
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("p", "N"),
			key.WithHelp("N", "previous match"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		Abort: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "abort"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("esc", "quit"),
		),
		ConfirmSearch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		CancelSearch: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d", "esc"),
			key.WithHelp("ctrl+c", "cancel"),
		),
	}
}

// pagerSearch holds the state of an in-pager search. Matching is case
// insensitive on the text with styling stripped.
type pagerSearch struct {
	active  bool
	input   textinput.Model
	query   string
	matches []int // line numbers, ascending
	current int
}

func newPagerSearch() pagerSearch {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 200
	return pagerSearch{input: ti, current: -1}
}

func (s *pagerSearch) begin() {
	s.active = true
	s.input.SetValue("")
	s.input.Focus()
}

func (s *pagerSearch) done() {
	s.active = false
	s.input.Blur()
}

// execute finds every line of lines containing the input.
func (s *pagerSearch) execute(lines []string) {
	s.query = s.input.Value()
	s.matches = s.matches[:0]
	s.current = -1
	needle := strings.ToLower(s.query)
	for i, line := range lines {
		if strings.Contains(strings.ToLower(ansi.Strip(line)), needle) {
			s.matches = append(s.matches, i)
		}
	}
	s.done()
}

func (s *pagerSearch) next() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	s.current = (s.current + 1) % len(s.matches)
	return s.matches[s.current], true
}

func (s *pagerSearch) prev() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	s.current--
	if s.current < 0 {
		s.current = len(s.matches) - 1
	}
	return s.matches[s.current], true
}

type pagerModel struct {
	lines    []string // wrapped content, one entry per screen line
	content  string
	viewport viewport.Model
	help     help.Model
	search   pagerSearch
	keymap   keymap
}

func newPager(content string, width, height int) pagerModel {
	m := pagerModel{
		content:  content,
		viewport: viewport.New(width, height),
		help:     help.New(),
		search:   newPagerSearch(),
		keymap:   defaultKeymap(),
	}
	m.processText(tea.WindowSizeMsg{Width: width, Height: height})
	return m
}

func (m pagerModel) Init() tea.Cmd { return nil }

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.processText(msg)
	case tea.KeyMsg:
		return m.keyHandler(msg)
	}

	m.keymap.PrevMatch.SetEnabled(m.search.query != "")
	m.keymap.NextMatch.SetEnabled(m.search.query != "")

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *pagerModel) helpView() string {
	return m.help.View(m.keymap)
}

// processText wraps content to the window and rebuilds the viewport.
func (m *pagerModel) processText(msg tea.WindowSizeMsg) {
	m.viewport.Height = msg.Height - lipgloss.Height(m.helpView())
	m.viewport.Width = msg.Width

	m.lines = m.lines[:0]
	for _, line := range strings.Split(m.content, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		if m.viewport.Width > 0 && ansi.StringWidth(line) > m.viewport.Width {
			wrapped := ansi.Hardwrap(line, m.viewport.Width, true)
			m.lines = append(m.lines, strings.Split(wrapped, "\n")...)
			continue
		}
		m.lines = append(m.lines, line)
	}
	m.viewport.SetContent(m.highlighted())
}

// highlighted returns the lines with search matches marked.
func (m *pagerModel) highlighted() string {
	if len(m.search.matches) == 0 {
		return strings.Join(m.lines, "\n")
	}
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	for i, n := range m.search.matches {
		plain := ansi.Strip(m.lines[n])
		if i == m.search.current {
			out[n] = matchHighlightStyle.Render(plain)
		} else {
			out[n] = matchStyle.Render(plain)
		}
	}
	return strings.Join(out, "\n")
}

func (m *pagerModel) jumpTo(line int) {
	m.viewport.SetContent(m.highlighted())
	offset := line - m.viewport.Height/2
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
}

func (m pagerModel) keyHandler(msg tea.KeyMsg) (pagerModel, tea.Cmd) {
	km := m.keymap
	var cmd tea.Cmd
	if m.search.active {
		switch {
		case key.Matches(msg, km.ConfirmSearch):
			if m.search.input.Value() == "" {
				m.search.done()
				break
			}
			m.search.execute(m.lines)
			if line, ok := m.search.next(); ok {
				m.jumpTo(line)
			} else {
				m.viewport.SetContent(m.highlighted())
			}
		case key.Matches(msg, km.CancelSearch):
			m.search.done()
		default:
			m.search.input, cmd = m.search.input.Update(msg)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, km.Home):
		m.viewport.GotoTop()
	case key.Matches(msg, km.End):
		m.viewport.GotoBottom()
	case key.Matches(msg, km.Search):
		m.search.begin()
		return m, textinput.Blink
	case key.Matches(msg, km.PrevMatch):
		if line, ok := m.search.prev(); ok {
			m.jumpTo(line)
		}
	case key.Matches(msg, km.NextMatch):
		if line, ok := m.search.next(); ok {
			m.jumpTo(line)
		}
	case key.Matches(msg, km.Quit):
		return m, tea.Quit
	case key.Matches(msg, km.Abort):
		return m, tea.Interrupt
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m pagerModel) View() string {
	if m.search.active {
		return m.viewport.View() + "\n " + m.search.input.View()
	}
	status := ""
	if m.search.query != "" {
		status = metaStyle.Render(fmt.Sprintf(" %d/%d matches for %q", m.search.current+1, len(m.search.matches), m.search.query))
	}
	return m.viewport.View() + "\n" + m.helpView() + status
}

// Page shows content in a full-screen pager until the user quits.
func Page(content string) error {
	p := tea.NewProgram(newPager(content, 80, 24), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("pager failed: %w", err)
	}
	return nil
}
