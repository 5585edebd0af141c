package models

import "encoding/json"

// Role is the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleUnknown   Role = "unknown"
)

// Normalize maps anything other than user/assistant to RoleUnknown.
func (r Role) Normalize() Role {
	switch r {
	case RoleUser, RoleAssistant:
		return r
	default:
		return RoleUnknown
	}
}

// PartType represents the kind of content a part carries
type PartType string

const (
	PartText       PartType = "text"
	PartReasoning  PartType = "reasoning"
	PartTool       PartType = "tool"
	PartToolCall   PartType = "tool-call"
	PartStepStart  PartType = "step-start"
	PartStepFinish PartType = "step-finish"
)

// Known reports whether t is one of the part types with dedicated rendering.
// Everything else is treated as "other" but stored verbatim.
func (t PartType) Known() bool {
	switch t {
	case PartText, PartReasoning, PartTool, PartToolCall, PartStepStart, PartStepFinish:
		return true
	}
	return false
}

// MessageInfo is the payload of a message event.
type MessageInfo struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"sessionID"`
	Role       Role        `json:"role"`
	ModelID    string      `json:"modelID,omitempty"`
	ProviderID string      `json:"providerID,omitempty"`
	Content    string      `json:"content,omitempty"` // inline content, overrides parts when set
	Finish     string      `json:"finish,omitempty"`
	Time       MessageTime `json:"time"`
	Tokens     *TokenUsage `json:"tokens,omitempty"`
	Cost       float64     `json:"cost,omitempty"`
}

// MessageTime holds unix millisecond timestamps.
type MessageTime struct {
	Created   int64 `json:"created"`
	Completed int64 `json:"completed,omitempty"`
}

func (m *MessageInfo) Validate() error {
	if m.ID == "" {
		return &fieldError{field: "id", err: errMissing}
	}
	if m.SessionID == "" {
		return &fieldError{field: "sessionID", err: errMissing}
	}
	return nil
}

// TokenUsage tracks API token usage
type TokenUsage struct {
	Input     int64      `json:"input"`
	Output    int64      `json:"output"`
	Reasoning int64      `json:"reasoning"`
	Cache     CacheUsage `json:"cache"`
}

// CacheUsage tracks prompt cache reads and writes.
type CacheUsage struct {
	Read  int64 `json:"read"`
	Write int64 `json:"write"`
}

// PartInfo is the payload of a part event. Which fields are populated
// depends on Type.
type PartInfo struct {
	ID        string   `json:"id"`
	MessageID string   `json:"messageID"`
	SessionID string   `json:"sessionID,omitempty"`
	Type      PartType `json:"type"`
	Text      string   `json:"text,omitempty"`

	Tool     string          `json:"tool,omitempty"`
	ToolName string          `json:"toolName,omitempty"` // legacy tool-call parts
	CallID   string          `json:"callID,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`   // legacy tool-call input
	Result   string          `json:"result,omitempty"` // legacy tool-call output
	State    *ToolState      `json:"state,omitempty"`

	Tokens *TokenUsage `json:"tokens,omitempty"`
	Cost   float64     `json:"cost,omitempty"`
	Time   *PartTime   `json:"time,omitempty"`
}

// PartTime holds unix millisecond timestamps. Zero means absent.
type PartTime struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// ToolState is the execution state of a tool part.
type ToolState struct {
	Status   string          `json:"status,omitempty"`
	Title    string          `json:"title,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Output   string          `json:"output,omitempty"`
	Error    string          `json:"error,omitempty"`
	Metadata *ToolMetadata   `json:"metadata,omitempty"`
	Time     *PartTime       `json:"time,omitempty"`
}

// ToolMetadata carries tool specific details we know how to display.
type ToolMetadata struct {
	Exit        *int   `json:"exit,omitempty"`
	Description string `json:"description,omitempty"`
}

func (p *PartInfo) Validate() error {
	if p.ID == "" {
		return &fieldError{field: "id", err: errMissing}
	}
	if p.MessageID == "" {
		return &fieldError{field: "messageID", err: errMissing}
	}
	if p.Type == "" {
		return &fieldError{field: "type", err: errMissing}
	}
	return nil
}

// canonicalize puts the raw tool input in the form encoding produces, so a
// decoded part encodes and decodes back to an identical value.
func (p *PartInfo) canonicalize() {
	p.Args = canonicalJSON(p.Args)
	if p.State != nil {
		p.State.Input = canonicalJSON(p.State.Input)
	}
}

// StartTime returns the part start time, falling back to the tool state
// time. Zero means the part carries no start time.
func (p *PartInfo) StartTime() int64 {
	if p.Time != nil && p.Time.Start > 0 {
		return p.Time.Start
	}
	if p.State != nil && p.State.Time != nil {
		return p.State.Time.Start
	}
	return 0
}
