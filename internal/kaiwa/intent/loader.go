package intent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed intents.schema.json
var schemaJSON string

// documentSchema validates the structural shape of an intents document
// before it is decoded into Go types.
var documentSchema = jsonschema.MustCompileString("intents.schema.json", schemaJSON)

// document is the wire shape of an intents file.
type document struct {
	Intents []Intent `json:"intents"`
}

// Parse decodes and validates an intents JSON document. It is the canonical
// entry point for loading intent catalogs: the document is checked against
// the embedded JSON Schema, then the unique-tag invariant is enforced.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("intent: parse document: %w", err)
	}
	if err := documentSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("intent: validate document: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("intent: decode document: %w", err)
	}
	return NewCatalog(doc.Intents)
}

// LoadFile reads the intents file at path and parses it. A missing,
// unreadable, or invalid file degrades to an empty catalog (logged at error
// level) so the surrounding pipeline keeps functioning and resolves every
// message to the fallback intent.
func LoadFile(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("intent: read intents file failed, continuing with empty catalog",
			"path", path, "err", err)
		return Empty()
	}
	catalog, err := Parse(data)
	if err != nil {
		logger.Error("intent: intents file invalid, continuing with empty catalog",
			"path", path, "err", err)
		return Empty()
	}
	logger.Info("intent: catalog loaded", "path", path, "intents", catalog.Len())
	return catalog
}
