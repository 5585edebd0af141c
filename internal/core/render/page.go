package render

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/state"
)

//go:embed templates/share.html
var DefaultPageTemplate string

//go:embed templates/not_found.html
var notFoundPage string

// Page is the view model for one share.
type Page struct {
	ShareID   string
	Title     string
	Directory string
	Version   string
	Updated   time.Time
	Messages  []MessageView
	Models    []models.ModelInfo
	Diffs     []FileView
	Totals    Totals
}

// MessageView is one message of the primary thread with its content
// resolved.
type MessageView struct {
	ID      string
	Role    models.Role
	ModelID string
	Created time.Time
	Content Content
}

// Totals sums usage over the thread.
type Totals struct {
	Tokens    models.TokenUsage
	Cost      float64
	Additions int
	Deletions int
}

// BuildPage resolves the primary thread of st for display.
func BuildPage(share *models.Share, st *state.State) *Page {
	p := &Page{
		ShareID: share.ID,
		Title:   "Shared session",
		Updated: share.UpdatedAt,
		Models:  st.Models,
	}
	if s := st.Session; s != nil {
		if s.Title != "" {
			p.Title = s.Title
		}
		p.Directory = s.Directory
		p.Version = s.Version
		if s.Time.Updated > 0 {
			p.Updated = time.UnixMilli(s.Time.Updated)
		}
	}

	for _, m := range st.Thread() {
		view := MessageView{
			ID:      m.ID,
			Role:    m.Role.Normalize(),
			ModelID: m.ModelID,
			Content: Message(m, st.Parts[m.ID]),
		}
		if m.Time.Created > 0 {
			view.Created = time.UnixMilli(m.Time.Created)
		}
		p.Messages = append(p.Messages, view)

		if m.Tokens != nil {
			p.Totals.Tokens.Input += m.Tokens.Input
			p.Totals.Tokens.Output += m.Tokens.Output
			p.Totals.Tokens.Reasoning += m.Tokens.Reasoning
			p.Totals.Tokens.Cache.Read += m.Tokens.Cache.Read
			p.Totals.Tokens.Cache.Write += m.Tokens.Cache.Write
		}
		p.Totals.Cost += m.Cost
	}

	for _, d := range st.Diff {
		v := DiffView(d)
		p.Totals.Additions += v.Additions
		p.Totals.Deletions += v.Deletions
		p.Diffs = append(p.Diffs, v)
	}
	return p
}

func (p *Page) templateData() map[string]any {
	messages := make([]map[string]any, 0, len(p.Messages))
	for _, m := range p.Messages {
		created := ""
		if !m.Created.IsZero() {
			created = humanize.Time(m.Created)
		}
		messages = append(messages, map[string]any{
			"id":      m.ID,
			"role":    string(m.Role),
			"model":   m.ModelID,
			"created": created,
			"body":    m.Content.HTML(),
		})
	}

	modelList := make([]map[string]any, 0, len(p.Models))
	for _, m := range p.Models {
		label := m.Name
		if label == "" {
			label = m.Key()
		}
		modelList = append(modelList, map[string]any{"label": label})
	}

	diffs := make([]map[string]any, 0, len(p.Diffs))
	for _, d := range p.Diffs {
		lines := make([]map[string]any, 0, len(d.Lines))
		for _, l := range d.Lines {
			lines = append(lines, map[string]any{
				"class":   l.Type.Class(),
				"marker":  l.Type.Marker(),
				"content": l.Content,
			})
		}
		diffs = append(diffs, map[string]any{
			"file":      d.File,
			"additions": d.Additions,
			"deletions": d.Deletions,
			"lines":     lines,
		})
	}

	updated := "never"
	if !p.Updated.IsZero() {
		updated = humanize.Time(p.Updated)
	}

	return map[string]any{
		"share_id":   p.ShareID,
		"title":      p.Title,
		"directory":  p.Directory,
		"version":    p.Version,
		"updated":    updated,
		"messages":   messages,
		"has_models": len(modelList) > 0,
		"models":     modelList,
		"has_diffs":  len(diffs) > 0,
		"diffs":      diffs,
		"totals":     p.TotalsLine(),
	}
}

// TotalsLine summarizes usage and changes in one line.
func (p *Page) TotalsLine() string {
	return fmt.Sprintf("%s messages · %s · %d files, +%s -%s",
		humanize.Comma(int64(len(p.Messages))),
		UsageSummary(p.Totals.Tokens, p.Totals.Cost),
		len(p.Diffs),
		humanize.Comma(int64(p.Totals.Additions)),
		humanize.Comma(int64(p.Totals.Deletions)),
	)
}

// HTML renders the page with tmpl, or the built-in template when tmpl is
// empty.
func HTML(p *Page, tmpl string) (string, error) {
	if tmpl == "" {
		tmpl = DefaultPageTemplate
	}
	out, err := mustache.Render(tmpl, p.templateData())
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return out, nil
}

// NotFoundHTML is shown for missing and unreadable shares.
func NotFoundHTML() string {
	return notFoundPage
}
