package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// YAMLExporter writes the event list as YAML using the wire field names.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(doc *Document, w io.Writer) error {
	// Round trip through JSON so keys match the wire format.
	raw, err := json.Marshal(models.Events(doc.State.Events()))
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	var generic []any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(map[string]any{
		"share":  doc.Share.ID,
		"events": generic,
	})
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
