package export

import (
	"encoding/json"
	"io"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// JSONExporter writes the share's events as one indented JSON array, the
// same shape the data endpoint serves.
type JSONExporter struct{}

func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models.Events(doc.State.Events()))
}

func (e *JSONExporter) Extension() string {
	return "json"
}

// JSONLExporter writes one event per line. The output can be fed back to
// the sync command.
type JSONLExporter struct{}

func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, ev := range doc.State.Events() {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}

func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
