package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDiscriminant is wrapped by DecodeError when the event type is
// not one of the known kinds.
var ErrUnknownDiscriminant = errors.New("unknown event type")

var errMissing = errors.New("is required")

// DecodeError represents a malformed event
type DecodeError struct {
	Index        int    // position in the batch, -1 for a single event
	Field        string // offending field, e.g. "type" or "data.messageID"
	Discriminant string // event type as received, if any
	Err          error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode error")
	if e.Index >= 0 {
		fmt.Fprintf(&b, " [event %d]", e.Index)
	}
	if e.Discriminant != "" {
		fmt.Fprintf(&b, " type %q", e.Discriminant)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// fieldError is a validation failure on one payload field.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string {
	return e.field + " " + e.err.Error()
}

func (e *fieldError) Unwrap() error {
	return e.err
}

func newPayloadError(kind Kind, err error) *DecodeError {
	de := &DecodeError{Index: -1, Field: "data", Discriminant: string(kind), Err: err}

	var fe *fieldError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fe):
		de.Field = joinField("data", fe.field)
		de.Err = fe.err
	case errors.As(err, &te):
		if te.Field != "" {
			de.Field = joinField("data", te.Field)
		}
	}
	return de
}

func joinField(prefix, field string) string {
	if strings.HasPrefix(field, "[") {
		return prefix + field
	}
	return prefix + "." + field
}
