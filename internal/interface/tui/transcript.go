// Package tui renders shares for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/render"
)

// collapsedReasoningLines is how much of a collapsed reasoning block the
// terminal shows.
const collapsedReasoningLines = 2

// Transcript renders page for a terminal of the given width. A width of
// zero or less disables wrapping.
func Transcript(page *render.Page, width int) string {
	var b strings.Builder
	wrap := lipgloss.NewStyle()
	rule := ""
	if width > 0 {
		wrap = wrap.Width(width)
		rule = ruleStyle.Render(strings.Repeat("─", width))
	} else {
		rule = ruleStyle.Render(strings.Repeat("─", 40))
	}

	b.WriteString(titleStyle.Render(page.Title))
	b.WriteString("\n")
	var meta []string
	if page.Directory != "" {
		meta = append(meta, page.Directory)
	}
	if page.Version != "" {
		meta = append(meta, "v"+page.Version)
	}
	if !page.Updated.IsZero() {
		meta = append(meta, "updated "+humanize.Time(page.Updated))
	}
	if len(meta) > 0 {
		b.WriteString(metaStyle.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
	}
	b.WriteString(rule + "\n\n")

	if len(page.Messages) == 0 {
		b.WriteString(placeholderStyle.Render("This share has no messages yet."))
		b.WriteString("\n\n")
	}

	for _, m := range page.Messages {
		b.WriteString(messageHeader(m))
		b.WriteString("\n")
		for _, blk := range m.Content.Blocks {
			out := block(blk, wrap)
			if out == "" {
				continue
			}
			b.WriteString(out)
			b.WriteString("\n")
		}
		b.WriteString("\n" + rule + "\n\n")
	}

	for _, d := range page.Diffs {
		b.WriteString(diffFileStyle.Render(d.File))
		b.WriteString(metaStyle.Render(fmt.Sprintf(" +%d -%d", d.Additions, d.Deletions)))
		b.WriteString("\n")
		for _, l := range d.Lines {
			line := l.Type.Marker() + " " + l.Content
			switch l.Type {
			case render.LineAdded:
				line = diffAddedStyle.Render(line)
			case render.LineRemoved:
				line = diffRemovedStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(metaStyle.Render(page.TotalsLine()))
	b.WriteString("\n")
	return b.String()
}

func messageHeader(m render.MessageView) string {
	label := strings.ToUpper(string(m.Role))
	style := assistantStyle
	if m.Role == models.RoleUser {
		style = userStyle
	}
	header := "▸ " + style.Render(label)
	if m.ModelID != "" {
		header += " " + metaStyle.Render(m.ModelID)
	}
	if !m.Created.IsZero() {
		header += " " + metaStyle.Render(humanize.Time(m.Created))
	}
	return header
}

func block(b render.Block, wrap lipgloss.Style) string {
	switch b.Kind {
	case render.BlockVerbatim:
		return wrap.Render(b.Text)
	case render.BlockPlaceholder:
		return placeholderStyle.Render(b.Text)
	case render.BlockText:
		return wrap.Render(strings.Join(b.Paragraphs, "\n\n"))
	case render.BlockReasoning:
		text := b.Text
		if b.Collapsed {
			lines := strings.Split(text, "\n")
			text = strings.Join(lines[:collapsedReasoningLines], "\n") +
				fmt.Sprintf("\n… %d more lines", len(lines)-collapsedReasoningLines)
		}
		return metaStyle.Render(b.Label) + "\n" + reasoningStyle.Render(text)
	case render.BlockTool:
		return tool(b.Tool)
	case render.BlockStepStart:
		return stepStyle.Render("· " + b.Text)
	case render.BlockStepFinish:
		out := stepStyle.Render("· " + b.Text)
		if b.Usage != "" {
			out += "\n" + metaStyle.Render("  "+b.Usage)
		}
		return out
	default:
		return metaStyle.Render("["+b.Label+"]") + "\n" + wrap.Render(b.Text)
	}
}

func tool(tc *render.ToolCall) string {
	var b strings.Builder
	b.WriteString(toolTitleStyle.Render("⚙ " + tc.Title))
	b.WriteString(metaStyle.Render(" " + tc.Status))
	if tc.Exit != nil {
		label := fmt.Sprintf(" exit %d", *tc.Exit)
		if *tc.Exit == 0 {
			b.WriteString(exitSuccessStyle.Render(label))
		} else {
			b.WriteString(exitFailureStyle.Render(label))
		}
	}
	if tc.Duration > 0 {
		b.WriteString(metaStyle.Render(" " + tc.Duration.String()))
	}

	var body []string
	switch {
	case tc.Command != "":
		cmd := "$ " + tc.Command
		if tc.Description != "" {
			cmd += "  # " + tc.Description
		}
		body = append(body, cmd)
	case tc.Input != "":
		body = append(body, tc.Input)
	}

	output := tc.Output
	if tc.Truncated {
		output = tc.Preview + "\n…"
	}
	if output != "" {
		if tc.IsError {
			output = toolErrorStyle.Render(output)
		}
		body = append(body, output)
	}
	if len(body) > 0 {
		b.WriteString("\n")
		b.WriteString(toolBodyStyle.Render(strings.Join(body, "\n")))
	}
	return b.String()
}
