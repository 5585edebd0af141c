package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the discriminant of a ShareData event on the wire.
type Kind string

const (
	KindSession     Kind = "session"
	KindMessage     Kind = "message"
	KindPart        Kind = "part"
	KindSessionDiff Kind = "session_diff"
	KindModel       Kind = "model"
)

// ShareData is one event of a share log. The set of implementations is
// closed: Session, Message, Part, SessionDiff and Model. Consumers switch
// on the concrete type and call Unreachable in the default branch.
type ShareData interface {
	Kind() Kind
	isShareData()
}

// Session replaces the session metadata.
type Session struct{ Data SessionInfo }

// Message upserts one message by id.
type Message struct{ Data MessageInfo }

// Part upserts one message part by id.
type Part struct{ Data PartInfo }

// SessionDiff replaces the whole diff set.
type SessionDiff struct{ Data []FileDiff }

// Model adds a model to the model set.
type Model struct{ Data ModelInfo }

func (Session) Kind() Kind     { return KindSession }
func (Message) Kind() Kind     { return KindMessage }
func (Part) Kind() Kind        { return KindPart }
func (SessionDiff) Kind() Kind { return KindSessionDiff }
func (Model) Kind() Kind       { return KindModel }

func (Session) isShareData()     {}
func (Message) isShareData()     {}
func (Part) isShareData()        {}
func (SessionDiff) isShareData() {}
func (Model) isShareData()       {}

// Unreachable panics for a ShareData implementation a switch did not handle.
func Unreachable(e ShareData) {
	panic(fmt.Sprintf("models: unhandled share data variant %T", e))
}

type envelope struct {
	Type Kind `json:"type"`
	Data any  `json:"data"`
}

func (e Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Type: KindSession, Data: e.Data})
}

func (e Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Type: KindMessage, Data: e.Data})
}

func (e Part) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Type: KindPart, Data: e.Data})
}

func (e SessionDiff) MarshalJSON() ([]byte, error) {
	diffs := e.Data
	if diffs == nil {
		diffs = []FileDiff{}
	}
	return json.Marshal(envelope{Type: KindSessionDiff, Data: diffs})
}

func (e Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Type: KindModel, Data: e.Data})
}

// Encode serializes one event to its wire form.
func Encode(e ShareData) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent decodes exactly one event. Unknown discriminants, missing
// data and payloads of the wrong shape fail with *DecodeError.
func DecodeEvent(raw []byte) (ShareData, error) {
	var env struct {
		Type *string         `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Index: -1, Err: err}
	}
	if env.Type == nil {
		return nil, &DecodeError{Index: -1, Field: "type", Err: errMissing}
	}
	kind := Kind(*env.Type)
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		if !kind.valid() {
			return nil, &DecodeError{Index: -1, Field: "type", Discriminant: string(kind), Err: ErrUnknownDiscriminant}
		}
		return nil, &DecodeError{Index: -1, Field: "data", Discriminant: string(kind), Err: errMissing}
	}

	var (
		out ShareData
		err error
	)
	switch kind {
	case KindSession:
		var v SessionInfo
		if err = decodePayload(data, &v); err == nil {
			err = v.Validate()
		}
		out = Session{Data: v}
	case KindMessage:
		var v MessageInfo
		if err = decodePayload(data, &v); err == nil {
			err = v.Validate()
		}
		out = Message{Data: v}
	case KindPart:
		var v PartInfo
		if err = decodePayload(data, &v); err == nil {
			err = v.Validate()
		}
		v.canonicalize()
		out = Part{Data: v}
	case KindSessionDiff:
		var v []FileDiff
		if err = decodePayload(data, &v); err == nil {
			for i := range v {
				if v[i].File == "" {
					err = &fieldError{field: fmt.Sprintf("[%d].file", i), err: errMissing}
					break
				}
			}
		}
		out = SessionDiff{Data: v}
	case KindModel:
		var v ModelInfo
		if err = decodePayload(data, &v); err == nil {
			err = v.Validate()
		}
		out = Model{Data: v}
	default:
		return nil, &DecodeError{Index: -1, Field: "type", Discriminant: string(kind), Err: ErrUnknownDiscriminant}
	}
	if err != nil {
		return nil, newPayloadError(kind, err)
	}
	return out, nil
}

// DecodeEvents decodes a batch. The first failure aborts the whole batch
// and reports the index of the offending element.
func DecodeEvents(raws []json.RawMessage) ([]ShareData, error) {
	out := make([]ShareData, 0, len(raws))
	for i, raw := range raws {
		e, err := DecodeEvent(raw)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Index = i
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Events is a list of events with a JSON array codec.
type Events []ShareData

func (es *Events) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return &DecodeError{Index: -1, Err: err}
	}
	decoded, err := DecodeEvents(raws)
	if err != nil {
		return err
	}
	*es = decoded
	return nil
}

func (es Events) MarshalJSON() ([]byte, error) {
	if es == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ShareData(es))
}

func (k Kind) valid() bool {
	switch k {
	case KindSession, KindMessage, KindPart, KindSessionDiff, KindModel:
		return true
	}
	return false
}

func decodePayload(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// canonicalJSON rewrites raw JSON the way json.Marshal emits a
// json.RawMessage: compact, with <, > and & escaped inside strings.
func canonicalJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return raw
	}
	var out bytes.Buffer
	json.HTMLEscape(&out, compact.Bytes())
	return json.RawMessage(out.Bytes())
}
