package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDecodeEventRoundTrip(t *testing.T) {
	exit := 1
	events := []ShareData{
		Session{Data: SessionInfo{ID: "ses_1", Title: "fix the build", Time: SessionTime{Created: 1000, Updated: 2000}}},
		Message{Data: MessageInfo{ID: "msg_1", SessionID: "ses_1", Role: RoleAssistant, ModelID: "claude", Time: MessageTime{Created: 1100},
			Tokens: &TokenUsage{Input: 10, Output: 20, Cache: CacheUsage{Read: 3}}, Cost: 0.25}},
		Part{Data: PartInfo{ID: "prt_1", MessageID: "msg_1", Type: PartTool, Tool: "bash",
			State: &ToolState{Status: "completed", Input: json.RawMessage(`{"command":"ls"}`), Output: "a\nb",
				Metadata: &ToolMetadata{Exit: &exit}, Time: &PartTime{Start: 5, End: 9}}}},
		SessionDiff{Data: []FileDiff{{File: "main.go", Before: "a", After: "b", Additions: 1, Deletions: 1}}},
		Model{Data: ModelInfo{ProviderID: "anthropic", ModelID: "claude", Name: "Claude"}},
	}

	for _, want := range events {
		t.Run(string(want.Kind()), func(t *testing.T) {
			raw, err := Encode(want)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := DecodeEvent(raw)
			if err != nil {
				t.Fatalf("DecodeEvent(%s) error = %v", raw, err)
			}
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeEventCanonicalizesToolInput(t *testing.T) {
	raw := []byte(`{"type":"part","data":{"id":"p","messageID":"m","type":"tool",
		"args": { "path" : "a<b" },
		"state":{"status":"completed","input": {
			"command": "ls -la",
			"description": "list & show"
		}}}}`)

	e, err := DecodeEvent(raw)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	p := e.(Part)
	if got, want := string(p.Data.Args), `{"path":"a\u003cb"}`; got != want {
		t.Errorf("Args = %s, want %s", got, want)
	}
	if got, want := string(p.Data.State.Input), `{"command":"ls -la","description":"list \u0026 show"}`; got != want {
		t.Errorf("State.Input = %s, want %s", got, want)
	}

	// A part built in memory with loose JSON settles after one decode.
	loose := Part{Data: PartInfo{ID: "q", MessageID: "m", Type: PartTool,
		Args:  json.RawMessage("[ 1,\n 2 ]"),
		State: &ToolState{Input: json.RawMessage(`{ "command" : "make" }`)}}}
	for _, in := range []ShareData{p, loose} {
		enc, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		once, err := DecodeEvent(enc)
		if err != nil {
			t.Fatalf("DecodeEvent() error = %v", err)
		}
		enc2, err := Encode(once)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		twice, err := DecodeEvent(enc2)
		if err != nil {
			t.Fatalf("DecodeEvent() error = %v", err)
		}
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("round trip of decoded part mismatch (-once +twice):\n%s", diff)
		}
		if string(enc) != string(enc2) {
			t.Errorf("encoding changed: %s then %s", enc, enc2)
		}
	}
}

func TestSessionDiffEncodesEmptyList(t *testing.T) {
	raw, err := Encode(SessionDiff{})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"type":"session_diff","data":[]}` {
		t.Errorf("Encode() = %s", raw)
	}
}

func TestDecodeEventIgnoresUnknownFields(t *testing.T) {
	e, err := DecodeEvent([]byte(`{"type":"session","data":{"id":"ses_1","shiny":true},"extra":1}`))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	s, ok := e.(Session)
	if !ok || s.Data.ID != "ses_1" {
		t.Errorf("DecodeEvent() = %#v", e)
	}
}

func TestDecodeEventKeepsUnknownPartType(t *testing.T) {
	e, err := DecodeEvent([]byte(`{"type":"part","data":{"id":"p","messageID":"m","type":"snapshot","text":"x"}}`))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	p := e.(Part)
	if p.Data.Type != "snapshot" || p.Data.Type.Known() {
		t.Errorf("part type = %q, known = %v", p.Data.Type, p.Data.Type.Known())
	}
}

func TestDecodeEventErrors(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
		wantErr   error
	}{
		{name: "unknown discriminant", raw: `{"type":"snapshot","data":{}}`, wantField: "type", wantErr: ErrUnknownDiscriminant},
		{name: "unknown discriminant without data", raw: `{"type":"snapshot"}`, wantField: "type", wantErr: ErrUnknownDiscriminant},
		{name: "missing type", raw: `{"data":{"id":"x"}}`, wantField: "type", wantErr: errMissing},
		{name: "missing data", raw: `{"type":"session"}`, wantField: "data", wantErr: errMissing},
		{name: "null data", raw: `{"type":"message","data":null}`, wantField: "data", wantErr: errMissing},
		{name: "session without id", raw: `{"type":"session","data":{"title":"t"}}`, wantField: "data.id", wantErr: errMissing},
		{name: "message without session", raw: `{"type":"message","data":{"id":"m"}}`, wantField: "data.sessionID", wantErr: errMissing},
		{name: "part without message", raw: `{"type":"part","data":{"id":"p","type":"text"}}`, wantField: "data.messageID", wantErr: errMissing},
		{name: "part without type", raw: `{"type":"part","data":{"id":"p","messageID":"m"}}`, wantField: "data.type", wantErr: errMissing},
		{name: "diff entry without file", raw: `{"type":"session_diff","data":[{"file":"a"},{"before":"x"}]}`, wantField: "data[1].file", wantErr: errMissing},
		{name: "model without provider", raw: `{"type":"model","data":{"modelID":"m"}}`, wantField: "data.providerID", wantErr: errMissing},
		{name: "diff given an object", raw: `{"type":"session_diff","data":{"file":"a"}}`, wantField: "data"},
		{name: "message given a list", raw: `{"type":"message","data":[1,2]}`, wantField: "data"},
		{name: "wrong field type", raw: `{"type":"message","data":{"id":"m","sessionID":"s","cost":"lots"}}`, wantField: "data.cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.raw))
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeEvent() error = %v, want *DecodeError", err)
			}
			if de.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (err: %v)", de.Field, tt.wantField, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if de.Index != -1 {
				t.Errorf("Index = %d, want -1", de.Index)
			}
		})
	}
}

func TestDecodeEventsReportsIndex(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"type":"session","data":{"id":"s"}}`),
		json.RawMessage(`{"type":"model","data":{"providerID":"p","modelID":"m"}}`),
		json.RawMessage(`{"type":"bogus","data":{}}`),
	}
	got, err := DecodeEvents(raws)
	if got != nil {
		t.Errorf("DecodeEvents() returned %d events on failure", len(got))
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Index != 2 {
		t.Fatalf("DecodeEvents() error = %v, want index 2", err)
	}
}

func TestEventsJSON(t *testing.T) {
	var es Events
	in := `[{"type":"session","data":{"id":"s"}},{"type":"session_diff","data":[]}]`
	if err := json.Unmarshal([]byte(in), &es); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(es) != 2 || es[0].Kind() != KindSession || es[1].Kind() != KindSessionDiff {
		t.Fatalf("Unmarshal() = %#v", es)
	}

	out, err := json.Marshal(Events(nil))
	if err != nil || string(out) != "[]" {
		t.Errorf("Marshal(nil) = %s, %v", out, err)
	}

	if err := json.Unmarshal([]byte(`{"type":"session"}`), &es); err == nil {
		t.Error("Unmarshal() of an object should fail")
	}
}

func TestRoleNormalize(t *testing.T) {
	for in, want := range map[Role]Role{"user": RoleUser, "assistant": RoleAssistant, "system": RoleUnknown, "": RoleUnknown} {
		if got := in.Normalize(); got != want {
			t.Errorf("Role(%q).Normalize() = %q, want %q", in, got, want)
		}
	}
}

func TestPartStartTime(t *testing.T) {
	p := PartInfo{State: &ToolState{Time: &PartTime{Start: 7}}}
	if got := p.StartTime(); got != 7 {
		t.Errorf("StartTime() = %d, want fallback 7", got)
	}
	p.Time = &PartTime{Start: 3}
	if got := p.StartTime(); got != 3 {
		t.Errorf("StartTime() = %d, want 3", got)
	}
}
