package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/neilberkman/ccshare/internal/core/render"
)

// MarkdownExporter writes a readable transcript of the primary thread.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	page := render.BuildPage(doc.Share, doc.State)

	_, _ = fmt.Fprintf(w, "# %s\n\n", page.Title)
	if page.Directory != "" {
		_, _ = fmt.Fprintf(w, "**Directory:** %s  \n", page.Directory)
	}
	if !page.Updated.IsZero() {
		_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", page.Updated.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Share:** %s  \n", page.ShareID)
	_, _ = fmt.Fprintf(w, "**Totals:** %s\n\n", page.TotalsLine())

	for i, m := range page.Messages {
		_, _ = fmt.Fprintf(w, "## %s", m.Role)
		if m.ModelID != "" {
			_, _ = fmt.Fprintf(w, " (%s)", m.ModelID)
		}
		_, _ = fmt.Fprint(w, "\n\n")
		for _, b := range m.Content.Blocks {
			writeBlock(w, b)
		}
		if i < len(page.Messages)-1 {
			_, _ = fmt.Fprint(w, "---\n\n")
		}
	}

	if len(page.Diffs) > 0 {
		_, _ = fmt.Fprint(w, "## Changes\n\n")
		for _, d := range page.Diffs {
			_, _ = fmt.Fprintf(w, "### %s (+%d -%d)\n\n```diff\n", d.File, d.Additions, d.Deletions)
			for _, l := range d.Lines {
				_, _ = fmt.Fprintf(w, "%s%s\n", l.Type.Marker(), l.Content)
			}
			_, _ = fmt.Fprint(w, "```\n\n")
		}
	}
	return nil
}

func writeBlock(w io.Writer, b render.Block) {
	switch b.Kind {
	case render.BlockText:
		for _, p := range b.Paragraphs {
			_, _ = fmt.Fprintf(w, "%s\n\n", p)
		}
	case render.BlockVerbatim:
		_, _ = fmt.Fprintf(w, "%s\n\n", b.Text)
	case render.BlockPlaceholder, render.BlockStepStart:
		_, _ = fmt.Fprintf(w, "_%s_\n\n", b.Text)
	case render.BlockStepFinish:
		if b.Usage != "" {
			_, _ = fmt.Fprintf(w, "_%s. %s_\n\n", b.Text, b.Usage)
		} else {
			_, _ = fmt.Fprintf(w, "_%s_\n\n", b.Text)
		}
	case render.BlockReasoning:
		_, _ = fmt.Fprintf(w, "> **%s**\n", b.Label)
		for _, line := range strings.Split(b.Text, "\n") {
			_, _ = fmt.Fprintf(w, "> %s\n", line)
		}
		_, _ = fmt.Fprint(w, "\n")
	case render.BlockTool:
		writeTool(w, b.Tool)
	default:
		_, _ = fmt.Fprintf(w, "**%s**\n\n%s\n\n", b.Label, fence(b.Text, ""))
	}
}

func writeTool(w io.Writer, tc *render.ToolCall) {
	if tc == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "**%s** · %s", tc.Title, tc.Status)
	if tc.Exit != nil {
		_, _ = fmt.Fprintf(w, " · exit %d", *tc.Exit)
	}
	if tc.Duration > 0 {
		_, _ = fmt.Fprintf(w, " · %s", tc.Duration)
	}
	_, _ = fmt.Fprint(w, "\n\n")

	switch {
	case tc.Command != "":
		if tc.Description != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", tc.Description)
		}
		_, _ = fmt.Fprintf(w, "%s\n\n", fence("$ "+tc.Command, "sh"))
	case tc.Input != "":
		_, _ = fmt.Fprintf(w, "%s\n\n", fence(tc.Input, ""))
	}
	if tc.Output != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", fence(tc.Output, ""))
	}
}

// fence wraps text in a code fence longer than any backtick run inside it.
func fence(text, lang string) string {
	ticks := "```"
	for strings.Contains(text, ticks) {
		ticks += "`"
	}
	return ticks + lang + "\n" + text + "\n" + ticks
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}
