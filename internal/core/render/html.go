package render

import (
	"fmt"
	"html"
	"strings"
)

// HTML renders the block as a markup fragment. User text is always escaped.
func (b Block) HTML() string {
	var sb strings.Builder
	switch b.Kind {
	case BlockVerbatim:
		fmt.Fprintf(&sb, `<div class="part part-verbatim">%s</div>`, escapeLines(b.Text))

	case BlockPlaceholder:
		fmt.Fprintf(&sb, `<div class="part part-placeholder"><em>%s</em></div>`, html.EscapeString(b.Text))

	case BlockText:
		sb.WriteString(`<div class="part part-text">`)
		for _, p := range b.Paragraphs {
			fmt.Fprintf(&sb, "<p>%s</p>", escapeLines(p))
		}
		sb.WriteString(`</div>`)

	case BlockReasoning:
		open := " open"
		if b.Collapsed {
			open = ""
		}
		fmt.Fprintf(&sb, `<details class="part part-reasoning"%s><summary>%s</summary><pre>%s</pre></details>`,
			open, html.EscapeString(b.Label), html.EscapeString(b.Text))

	case BlockTool:
		writeTool(&sb, b.Tool)

	case BlockStepStart:
		fmt.Fprintf(&sb, `<div class="part part-step">%s</div>`, html.EscapeString(b.Text))

	case BlockStepFinish:
		fmt.Fprintf(&sb, `<div class="part part-step">%s`, html.EscapeString(b.Text))
		if b.Usage != "" {
			fmt.Fprintf(&sb, ` <span class="usage">%s</span>`, html.EscapeString(b.Usage))
		}
		sb.WriteString(`</div>`)

	default:
		fmt.Fprintf(&sb, `<div class="part part-other"><span class="label">%s</span><pre>%s</pre></div>`,
			html.EscapeString(b.Label), html.EscapeString(b.Text))
	}
	return sb.String()
}

func writeTool(sb *strings.Builder, tc *ToolCall) {
	if tc == nil {
		return
	}
	fmt.Fprintf(sb, `<div class="part part-tool status-%s">`, html.EscapeString(tc.Status))
	fmt.Fprintf(sb, `<div class="tool-header"><span class="tool-title">%s</span> <span class="tool-status">%s</span></div>`,
		html.EscapeString(tc.Title), html.EscapeString(tc.Status))

	switch {
	case tc.Command != "":
		if tc.Description != "" {
			fmt.Fprintf(sb, `<div class="tool-description">%s</div>`, html.EscapeString(tc.Description))
		}
		fmt.Fprintf(sb, `<pre class="tool-input shell">$ %s</pre>`, html.EscapeString(tc.Command))
	case tc.Input != "":
		fmt.Fprintf(sb, `<pre class="tool-input">%s</pre>`, html.EscapeString(tc.Input))
	}

	if tc.Output != "" {
		class := "tool-output"
		if tc.IsError {
			class += " error"
		}
		if tc.Truncated {
			fmt.Fprintf(sb, `<details class="%s"><summary><pre>%s</pre></summary><pre>%s</pre></details>`,
				class, html.EscapeString(tc.Preview), html.EscapeString(tc.Output))
		} else {
			fmt.Fprintf(sb, `<pre class="%s">%s</pre>`, class, html.EscapeString(tc.Output))
		}
	}

	if tc.Exit != nil || tc.Duration > 0 {
		sb.WriteString(`<div class="tool-meta">`)
		if tc.Exit != nil {
			class := "exit-success"
			if *tc.Exit != 0 {
				class = "exit-failure"
			}
			fmt.Fprintf(sb, `<span class="%s">exit %d</span>`, class, *tc.Exit)
		}
		if tc.Duration > 0 {
			fmt.Fprintf(sb, ` <span class="duration">%s</span>`, tc.Duration)
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
}

func escapeLines(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

// HTML renders every block of the content in order.
func (c Content) HTML() string {
	var sb strings.Builder
	for _, b := range c.Blocks {
		sb.WriteString(b.HTML())
	}
	return sb.String()
}
