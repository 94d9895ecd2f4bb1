// Package cards reads the items offered for review: a JSON or YAML card list,
// or a directory of markdown notes.
package cards

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matze/zk-spaced/internal/spacedrep"
)

// Format selects how a card list is encoded.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown input format: %q", s)
	}
}

// cardData is one entry of a card list.
type cardData struct {
	Filename   string `json:"filename"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

func (c cardData) id() string {
	if c.Filename != "" {
		return c.Filename
	}
	return c.Identifier
}

// Decode reads a card list from r. source names the input in errors.
// Every failure is a *MalformedError.
func Decode(r io.Reader, source string, format Format) ([]spacedrep.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &MalformedError{Source: source, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &MalformedError{Source: source, Err: errors.New("no cards on input, perhaps no note is tagged?")}
	}

	if format == FormatYAML {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, &MalformedError{Source: source, Err: err}
		}
	}

	items, err := decodeJSON(data)
	if err != nil {
		return nil, &MalformedError{Source: source, Err: err}
	}
	return items, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share the
// same validation path.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yaml is not representable as json: %w", err)
	}
	return out, nil
}

func decodeJSON(data []byte) ([]spacedrep.Item, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var list []cardData
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}

	items := make([]spacedrep.Item, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		id := c.id()
		if seen[id] {
			return nil, fmt.Errorf("duplicate card identifier %q", id)
		}
		seen[id] = true
		items = append(items, spacedrep.Item{ID: id, Title: c.Title, Body: c.Body})
	}
	return items, nil
}
