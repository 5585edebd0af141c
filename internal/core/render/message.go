// Package render turns reconstructed share state into displayable content.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/neilberkman/ccshare/internal/core/models"
)

const (
	reasoningOpenLines = 5
	outputPreviewLines = 10
)

// Outcome records which path produced a message's content.
type Outcome int

const (
	Placeholder Outcome = iota
	Verbatim
	PartsRendered
)

func (o Outcome) String() string {
	switch o {
	case Verbatim:
		return "verbatim"
	case PartsRendered:
		return "parts"
	default:
		return "placeholder"
	}
}

// BlockKind identifies how a block is laid out.
type BlockKind string

const (
	BlockVerbatim    BlockKind = "verbatim"
	BlockPlaceholder BlockKind = "placeholder"
	BlockText        BlockKind = "text"
	BlockReasoning   BlockKind = "reasoning"
	BlockTool        BlockKind = "tool"
	BlockStepStart   BlockKind = "step-start"
	BlockStepFinish  BlockKind = "step-finish"
	BlockOther       BlockKind = "other"
)

// Block is one unit of rendered message content. All string fields hold
// raw user text; markup is added by HTML and by terminal renderers.
type Block struct {
	Kind       BlockKind
	Label      string
	Text       string
	Paragraphs []string
	Collapsed  bool
	Usage      string
	Tool       *ToolCall
}

// ToolCall is the resolved view of a tool part.
type ToolCall struct {
	Title       string
	Status      string
	Command     string // set when the input has a command field
	Description string
	Input       string
	Output      string
	Preview     string // first lines of Output when Truncated
	Truncated   bool
	IsError     bool
	Exit        *int
	Duration    time.Duration // zero when start or end is missing
}

// Content is the rendered stream for one message.
type Content struct {
	Outcome Outcome
	Blocks  []Block
}

// Message resolves the content for msg. Inline content wins over parts and
// a message with neither gets a placeholder.
func Message(msg models.MessageInfo, parts []models.PartInfo) Content {
	if msg.Content != "" {
		return Content{
			Outcome: Verbatim,
			Blocks:  []Block{{Kind: BlockVerbatim, Text: msg.Content}},
		}
	}
	if len(parts) == 0 {
		return Content{
			Outcome: Placeholder,
			Blocks:  []Block{{Kind: BlockPlaceholder, Text: placeholderText(msg)}},
		}
	}

	sorted := SortParts(parts)
	blocks := make([]Block, 0, len(sorted))
	for _, p := range sorted {
		if b, ok := partBlock(p); ok {
			blocks = append(blocks, b)
		}
	}
	return Content{Outcome: PartsRendered, Blocks: blocks}
}

func placeholderText(msg models.MessageInfo) string {
	model := msg.ModelID
	if model == "" {
		model = "unknown"
	}
	finish := msg.Finish
	if finish == "" {
		finish = "unknown"
	}
	return fmt.Sprintf("No content for %s message (model: %s, finish: %s)", msg.Role.Normalize(), model, finish)
}

// SortParts returns parts in display order without modifying the input.
// Two parts that both carry a start time are ordered by it, otherwise by
// type priority. Ties keep input order.
func SortParts(parts []models.PartInfo) []models.PartInfo {
	out := make([]models.PartInfo, len(parts))
	copy(out, parts)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StartTime(), out[j].StartTime()
		if a > 0 && b > 0 {
			return a < b
		}
		return typePriority(out[i].Type) < typePriority(out[j].Type)
	})
	return out
}

func typePriority(t models.PartType) int {
	switch t {
	case models.PartStepStart:
		return 0
	case models.PartReasoning:
		return 1
	case models.PartText:
		return 2
	case models.PartTool, models.PartToolCall:
		return 3
	case models.PartStepFinish:
		return 4
	default:
		return 99
	}
}

func partBlock(p models.PartInfo) (Block, bool) {
	switch p.Type {
	case models.PartText:
		paras := paragraphs(p.Text)
		if len(paras) == 0 {
			return Block{}, false
		}
		return Block{Kind: BlockText, Text: p.Text, Paragraphs: paras}, true

	case models.PartReasoning:
		text := strings.TrimSpace(p.Text)
		if text == "" {
			return Block{}, false
		}
		return Block{
			Kind:      BlockReasoning,
			Label:     "Reasoning",
			Text:      text,
			Collapsed: lineCount(text) > reasoningOpenLines,
		}, true

	case models.PartTool, models.PartToolCall:
		return Block{Kind: BlockTool, Tool: toolCall(p)}, true

	case models.PartStepStart:
		return Block{Kind: BlockStepStart, Text: "Step started"}, true

	case models.PartStepFinish:
		b := Block{Kind: BlockStepFinish, Text: "Step finished"}
		if p.Tokens != nil {
			b.Usage = UsageSummary(*p.Tokens, p.Cost)
		}
		return b, true

	default:
		if strings.TrimSpace(p.Text) == "" {
			return Block{}, false
		}
		return Block{Kind: BlockOther, Label: string(p.Type), Text: p.Text}, true
	}
}

// UsageSummary formats token counts and cost for display.
func UsageSummary(t models.TokenUsage, cost float64) string {
	return fmt.Sprintf("Tokens: %s in · %s out · %s reasoning · cache %s read / %s write · cost $%.6f",
		humanize.Comma(t.Input),
		humanize.Comma(t.Output),
		humanize.Comma(t.Reasoning),
		humanize.Comma(t.Cache.Read),
		humanize.Comma(t.Cache.Write),
		cost,
	)
}

func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func toolCall(p models.PartInfo) *ToolCall {
	tc := &ToolCall{Title: "Unknown Tool", Status: "pending"}
	st := p.State
	if st == nil {
		st = &models.ToolState{}
	}

	for _, title := range []string{st.Title, p.Tool, p.ToolName} {
		if title != "" {
			tc.Title = title
			break
		}
	}
	if st.Status != "" {
		tc.Status = st.Status
	}

	input := st.Input
	if isAbsent(input) {
		input = p.Args
	}
	if !isAbsent(input) {
		tc.Command, tc.Description, tc.Input = formatInput(input)
	}

	switch {
	case st.Output != "":
		tc.Output = st.Output
	case st.Error != "":
		tc.Output = st.Error
		tc.IsError = true
	default:
		tc.Output = p.Result
	}
	if lineCount(tc.Output) > outputPreviewLines {
		lines := strings.Split(tc.Output, "\n")
		tc.Preview = strings.Join(lines[:outputPreviewLines], "\n")
		tc.Truncated = true
	}

	if st.Metadata != nil {
		tc.Exit = st.Metadata.Exit
		if tc.Description == "" {
			tc.Description = st.Metadata.Description
		}
	}
	tc.Duration = duration(st.Time)
	if tc.Duration == 0 {
		tc.Duration = duration(p.Time)
	}
	return tc
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// formatInput returns the command and description for shell-like inputs,
// otherwise the input as display text.
func formatInput(raw json.RawMessage) (command, description, text string) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return "", "", s
	}

	var shell struct {
		Command     *string `json:"command"`
		Description string  `json:"description"`
	}
	if err := json.Unmarshal(raw, &shell); err == nil && shell.Command != nil {
		return *shell.Command, shell.Description, ""
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", "", string(raw)
	}
	return "", "", buf.String()
}

func duration(t *models.PartTime) time.Duration {
	if t == nil || t.Start <= 0 || t.End < t.Start {
		return 0
	}
	return time.Duration(t.End-t.Start) * time.Millisecond
}
