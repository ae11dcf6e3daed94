package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// DraftValidator checks form drafts and moderation payloads before any
// request is issued. Failures are *tuvibe.ValidationError.
type DraftValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewDraftValidator builds a validator backed by jsonschema v5.
func NewDraftValidator() *DraftValidator {
	return &DraftValidator{compiled: make(map[string]*jsonschema.Schema)}
}

const nonBlank = `\S`

var draftSchemas = map[string]map[string]any{
	"market_draft": {
		"type":     "object",
		"required": []any{"title", "price"},
		"properties": map[string]any{
			"title":           map[string]any{"type": "string", "pattern": nonBlank},
			"description":     map[string]any{"type": "string"},
			"price":           map[string]any{"type": "number", "minimum": 0},
			"whatsapp_number": map[string]any{"type": "string", "pattern": `^$|^\+?[0-9 ()-]{6,20}$`},
			"is_featured":     map[string]any{"type": "boolean"},
			"tag":             map[string]any{"enum": enumValues(tuvibe.MarketTags, true)},
		},
	},
	"music_draft": {
		"type":     "object",
		"required": []any{"title", "artist"},
		"properties": map[string]any{
			"title":     map[string]any{"type": "string", "pattern": nonBlank},
			"artist":    map[string]any{"type": "string", "pattern": nonBlank},
			"audio_url": map[string]any{"type": "string"},
			"duration":  map[string]any{"type": "integer", "minimum": 0},
			"order":     map[string]any{"type": "integer", "minimum": 0},
			"is_active": map[string]any{"type": "boolean"},
		},
	},
	"report_update": {
		"type":     "object",
		"required": []any{"status", "priority"},
		"properties": map[string]any{
			"status":      map[string]any{"enum": enumValues(tuvibe.ReportStatuses, false)},
			"priority":    map[string]any{"enum": enumValues(tuvibe.ReportPriorities, false)},
			"admin_notes": map[string]any{"type": "string"},
		},
	},
	"story_rejection": {
		"type":     "object",
		"required": []any{"reason"},
		"properties": map[string]any{
			"reason": map[string]any{"type": "string", "pattern": nonBlank},
			"notes":  map[string]any{"type": "string"},
		},
	},
}

var fieldMessages = map[string]string{
	"market_draft/title":     "Title is required",
	"market_draft/price":     "Price must be zero or more",
	"market_draft/tag":       "Unknown marketplace tag",
	"music_draft/title":      "Title is required",
	"music_draft/artist":     "Artist is required",
	"report_update/status":   "Please select a valid status",
	"report_update/priority": "Please select a valid priority",
	"story_rejection/reason": "Please provide a rejection reason",
}

// ValidateMarket checks a marketplace draft.
func (v *DraftValidator) ValidateMarket(d tuvibe.MarketDraft) error {
	return v.validate("market_draft", d)
}

// ValidateMusic checks a music draft; an audio file or URL is required.
func (v *DraftValidator) ValidateMusic(d tuvibe.MusicDraft) error {
	if err := v.validate("music_draft", d); err != nil {
		return err
	}
	if !d.HasAudio() {
		return &tuvibe.ValidationError{Field: "audio", Message: "Audio file or URL is required"}
	}
	return nil
}

// ValidateReportUpdate checks status and priority against the fixed sets.
func (v *DraftValidator) ValidateReportUpdate(u tuvibe.ReportUpdate) error {
	return v.validate("report_update", u)
}

// ValidateRejection requires a non-blank reason.
func (v *DraftValidator) ValidateRejection(r tuvibe.StoryRejection) error {
	return v.validate("story_rejection", r)
}

func (v *DraftValidator) validate(code string, draft any) error {
	schema, err := v.schemaFor(code)
	if err != nil {
		return err
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("admin: marshal %s: %w", code, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("admin: normalize %s: %w", code, err)
	}
	if err := schema.Validate(payload); err != nil {
		return toValidationError(code, err)
	}
	return nil
}

func (v *DraftValidator) schemaFor(code string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	def, ok := draftSchemas[code]
	if !ok {
		return nil, fmt.Errorf("admin: no schema %s", code)
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("admin: marshal schema %s: %w", code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("admin: load schema %s: %w", code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("admin: compile schema %s: %w", code, err)
	}
	v.mu.Lock()
	v.compiled[code] = compiled
	v.mu.Unlock()
	return compiled, nil
}

func toValidationError(code string, err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &tuvibe.ValidationError{Message: err.Error()}
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		field = missingProperty(leaf.Message)
	}
	if msg, ok := fieldMessages[code+"/"+field]; ok {
		return &tuvibe.ValidationError{Field: field, Message: msg}
	}
	return &tuvibe.ValidationError{Field: field, Message: leaf.Message}
}

// missingProperty extracts the name from "missing properties: 'title'".
func missingProperty(msg string) string {
	start := strings.Index(msg, "'")
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], "'")
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

func enumValues(values []string, allowEmpty bool) []any {
	out := make([]any, 0, len(values)+1)
	if allowEmpty {
		out = append(out, "")
	}
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
