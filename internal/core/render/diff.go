package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// LineType classifies one line of a file diff.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Class is the CSS class used for the line type.
func (t LineType) Class() string {
	switch t {
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "context"
	}
}

// Marker is the unified diff prefix for the line type.
func (t LineType) Marker() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// DiffLine is one classified line.
type DiffLine struct {
	Type    LineType
	Content string
}

// FileView is a FileDiff with its lines classified.
type FileView struct {
	File      string
	Additions int
	Deletions int
	Lines     []DiffLine
}

var dmp = diffmatchpatch.New()

// DiffLines computes a line level diff between before and after.
func DiffLines(before, after string) []DiffLine {
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []DiffLine
	for _, d := range diffs {
		typ := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = LineAdded
		case diffmatchpatch.DiffDelete:
			typ = LineRemoved
		}
		if d.Text == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, DiffLine{Type: typ, Content: line})
		}
	}
	return out
}

// DiffView classifies every line of a file diff. Counts reported by the
// agent are kept; missing ones are derived from the lines.
func DiffView(d models.FileDiff) FileView {
	v := FileView{
		File:      d.File,
		Additions: d.Additions,
		Deletions: d.Deletions,
		Lines:     DiffLines(d.Before, d.After),
	}
	if v.Additions == 0 && v.Deletions == 0 {
		for _, l := range v.Lines {
			switch l.Type {
			case LineAdded:
				v.Additions++
			case LineRemoved:
				v.Deletions++
			}
		}
	}
	return v
}
