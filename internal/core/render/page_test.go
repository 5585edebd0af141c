package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/state"
)

func TestDiffLines(t *testing.T) {
	lines := DiffLines("a\nb\nc\n", "a\nB\nc\nd\n")

	var got []string
	for _, l := range lines {
		got = append(got, l.Type.Marker()+l.Content)
	}
	assert.Equal(t, []string{" a", "-b", "+B", " c", "+d"}, got)
}

func TestDiffViewCounts(t *testing.T) {
	v := DiffView(models.FileDiff{File: "x.go", Before: "", After: "one\ntwo\n"})
	assert.Equal(t, 2, v.Additions)
	assert.Equal(t, 0, v.Deletions)

	v = DiffView(models.FileDiff{File: "x.go", Before: "a", After: "b", Additions: 7, Deletions: 3})
	assert.Equal(t, 7, v.Additions, "reported counts are kept")
}

func TestBuildPage(t *testing.T) {
	st := state.Reconstruct([]models.ShareData{
		models.Session{Data: models.SessionInfo{ID: "ses", Title: "Refactor <parser>", Directory: "/src/app", Version: "0.4.1"}},
		models.Message{Data: models.MessageInfo{ID: "m2", SessionID: "ses", Role: models.RoleAssistant, ModelID: "claude",
			Time: models.MessageTime{Created: 200}, Tokens: &models.TokenUsage{Input: 10, Output: 5}, Cost: 0.5}},
		models.Message{Data: models.MessageInfo{ID: "m1", SessionID: "ses", Role: models.RoleUser, Content: "please refactor",
			Time: models.MessageTime{Created: 100}}},
		models.Message{Data: models.MessageInfo{ID: "sub", SessionID: "child", Role: models.RoleAssistant}},
		models.Part{Data: models.PartInfo{ID: "p1", MessageID: "m2", Type: models.PartText, Text: "done"}},
		models.SessionDiff{Data: []models.FileDiff{{File: "parser.go", Before: "old\n", After: "new\n"}}},
		models.Model{Data: models.ModelInfo{ProviderID: "anthropic", ModelID: "claude", Name: "Claude"}},
	})
	share := &models.Share{ID: "share-1", UpdatedAt: time.Now()}

	p := BuildPage(share, st)
	assert.Equal(t, "Refactor <parser>", p.Title)
	require.Len(t, p.Messages, 2, "only the primary thread is shown")
	assert.Equal(t, "m1", p.Messages[0].ID)
	assert.Equal(t, Verbatim, p.Messages[0].Content.Outcome)
	assert.Equal(t, PartsRendered, p.Messages[1].Content.Outcome)
	assert.Equal(t, int64(10), p.Totals.Tokens.Input)
	assert.Equal(t, 1, p.Totals.Additions)
	assert.Equal(t, 1, p.Totals.Deletions)

	out, err := HTML(p, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Refactor &lt;parser&gt;")
	assert.Contains(t, out, "please refactor")
	assert.Contains(t, out, `<code class="removed">- old</code>`)
	assert.Contains(t, out, `<code class="added">+ new</code>`)
	assert.Contains(t, out, "Claude")
	assert.Contains(t, out, "share-1")
}

func TestBuildPageEmptyState(t *testing.T) {
	p := BuildPage(&models.Share{ID: "s"}, state.New())
	assert.Equal(t, "Shared session", p.Title)

	out, err := HTML(p, "")
	require.NoError(t, err)
	assert.Contains(t, out, "This share has no messages yet.")
	assert.Contains(t, out, "updated never")
}

func TestHTMLCustomTemplate(t *testing.T) {
	p := BuildPage(&models.Share{ID: "abc"}, state.New())
	out, err := HTML(p, "{{share_id}}:{{title}}")
	require.NoError(t, err)
	assert.Equal(t, "abc:Shared session", out)
}

func TestNotFoundHTML(t *testing.T) {
	assert.True(t, strings.Contains(NotFoundHTML(), "Share not found"))
}
