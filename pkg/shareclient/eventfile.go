package shareclient

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// ReadEventsFile reads events from path. See ReadEvents.
func ReadEventsFile(path string) (events []models.ShareData, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()
	return ReadEvents(file)
}

// ReadEvents decodes either a JSON array of events or one event per line
// (JSONL). Blank lines are skipped. The first bad event fails the whole
// read.
func ReadEvents(r io.Reader) ([]models.ShareData, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	if first == '[' {
		var raws []json.RawMessage
		if err := json.NewDecoder(br).Decode(&raws); err != nil {
			return nil, fmt.Errorf("failed to parse event array: %w", err)
		}
		return models.DecodeEvents(raws)
	}

	// Configure scanner with larger buffer for long lines (10MB max)
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	var raws []json.RawMessage
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		raws = append(raws, append(json.RawMessage(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading events: %w", err)
	}
	return models.DecodeEvents(raws)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
