package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchemaMismatch is wrapped by Validate when a reply breaks the draft contract.
var ErrSchemaMismatch = errors.New("reply does not match draft schema")

// DraftValidator checks model replies against the draft schema. Compiled
// schemas are kept per category set, so a long batch compiles each set once.
type DraftValidator struct {
	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
}

func NewDraftValidator() *DraftValidator {
	return &DraftValidator{schemas: make(map[string]*jsonschema.Schema)}
}

// Validate decodes data and validates it against the draft schema whose
// category enum is categories.
func (v *DraftValidator) Validate(categories []string, data []byte) error {
	schema, err := v.schema(categories)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	return nil
}

func (v *DraftValidator) schema(categories []string) (*jsonschema.Schema, error) {
	key := strings.Join(categories, "\x1f")

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.schemas[key]; ok {
		return s, nil
	}
	s, err := compileDraftSchema(categories)
	if err != nil {
		return nil, err
	}
	v.schemas[key] = s
	return s, nil
}

func compileDraftSchema(categories []string) (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildDraftJSONSchema(categories))
	if err != nil {
		return nil, fmt.Errorf("marshal draft schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("draft.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add draft schema: %w", err)
	}
	s, err := compiler.Compile("draft.json")
	if err != nil {
		return nil, fmt.Errorf("compile draft schema: %w", err)
	}
	return s, nil
}
