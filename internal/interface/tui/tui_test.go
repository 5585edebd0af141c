package tui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/render"
	"github.com/neilberkman/ccshare/internal/core/state"
)

func testPage() *render.Page {
	exit := 1
	st := state.Reconstruct([]models.ShareData{
		models.Session{Data: models.SessionInfo{ID: "ses", Title: "Fix login", Directory: "/src/app"}},
		models.Message{Data: models.MessageInfo{ID: "m1", SessionID: "ses", Role: models.RoleUser, Time: models.MessageTime{Created: 100}}},
		models.Message{Data: models.MessageInfo{ID: "m2", SessionID: "ses", Role: models.RoleAssistant, ModelID: "sonnet", Time: models.MessageTime{Created: 200}}},
		models.Message{Data: models.MessageInfo{ID: "m3", SessionID: "ses", Role: models.RoleAssistant, ModelID: "sonnet", Time: models.MessageTime{Created: 300}}},
		models.Part{Data: models.PartInfo{ID: "p1", SessionID: "ses", MessageID: "m1", Type: models.PartText, Text: "please fix the login"}},
		models.Part{Data: models.PartInfo{ID: "p2", SessionID: "ses", MessageID: "m2", Type: models.PartReasoning, Text: "one\ntwo\nthree\nfour\nfive\nsix"}},
		models.Part{Data: models.PartInfo{
			ID: "p3", SessionID: "ses", MessageID: "m2", Type: models.PartTool, Tool: "bash",
			State: &models.ToolState{
				Status:   "completed",
				Input:    json.RawMessage(`{"command":"go test ./...","description":"run tests"}`),
				Output:   "FAIL",
				Metadata: &models.ToolMetadata{Exit: &exit},
			},
		}},
		models.SessionDiff{Data: []models.FileDiff{{File: "login.go", Before: "a\nb\n", After: "a\nc\n"}}},
	})
	return render.BuildPage(&models.Share{ID: "abc", UpdatedAt: time.Now()}, st)
}

func TestTranscript(t *testing.T) {
	out := ansi.Strip(Transcript(testPage(), 80))

	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "/src/app")
	assert.Contains(t, out, "USER")
	assert.Contains(t, out, "please fix the login")
	assert.Contains(t, out, "Reasoning")
	assert.Contains(t, out, "… 4 more lines")
	assert.NotContains(t, out, "six")
	assert.Contains(t, out, "$ go test ./...  # run tests")
	assert.Contains(t, out, "exit 1")
	assert.Contains(t, out, "FAIL")
	// m3 has no content
	assert.Contains(t, out, "sonnet")
	assert.Contains(t, out, "login.go +1 -1")
	assert.Contains(t, out, "- b")
	assert.Contains(t, out, "+ c")

	assert.Less(t, strings.Index(out, "please fix"), strings.Index(out, "go test"))
}

func TestTranscriptEmpty(t *testing.T) {
	page := render.BuildPage(&models.Share{ID: "abc"}, state.New())
	out := ansi.Strip(Transcript(page, 0))
	assert.Contains(t, out, "Shared session")
	assert.Contains(t, out, "This share has no messages yet.")
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m pagerModel, msg tea.Msg) (pagerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(pagerModel)
	require.True(t, ok)
	return pm, cmd
}

func TestPagerSearch(t *testing.T) {
	m := newPager("alpha\nbeta\nGamma BETA\ndelta", 40, 10)

	m, _ = update(t, m, keyRunes("/"))
	require.True(t, m.search.active)
	m, _ = update(t, m, keyRunes("beta"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.search.active)
	assert.Equal(t, "beta", m.search.query)
	assert.Equal(t, []int{1, 2}, m.search.matches)
	assert.Equal(t, 0, m.search.current)

	m, _ = update(t, m, keyRunes("n"))
	assert.Equal(t, 1, m.search.current)
	m, _ = update(t, m, keyRunes("n"))
	assert.Equal(t, 0, m.search.current)
	m, _ = update(t, m, keyRunes("N"))
	assert.Equal(t, 1, m.search.current)

	assert.Contains(t, ansi.Strip(m.View()), `2/2 matches for "beta"`)
}

func TestPagerSearchCancel(t *testing.T) {
	m := newPager("alpha", 40, 10)
	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.search.active)
	assert.Empty(t, m.search.query)
}

func TestPagerQuit(t *testing.T) {
	m := newPager("alpha", 40, 10)
	_, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPagerWrapsLongLines(t *testing.T) {
	m := newPager(strings.Repeat("x", 25), 10, 10)
	assert.Len(t, m.lines, 3)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Len(t, m.lines, 1)
}
