package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentDraft is the typed reply of a generation request
type DocumentDraft struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	DocumentType string   `json:"document_type"`
	Content      string   `json:"content"`
	Language     string   `json:"language"`
	Keywords     []string `json:"keywords,omitempty"`
}

// ConversationTurn is the typed reply of one guided conversation step
type ConversationTurn struct {
	Reply string         `json:"reply"`
	Ready bool           `json:"ready"`
	Draft *DocumentDraft `json:"draft,omitempty"`
}

// Analysis is the typed reply of a document analysis request
type Analysis struct {
	Summary  string   `json:"summary"`
	Risks    []string `json:"risks,omitempty"`
	Missing  []string `json:"missing_clauses,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// ParseDraft decodes a generation reply into a DocumentDraft
func ParseDraft(raw string) (*DocumentDraft, error) {
	var draft DocumentDraft
	if err := decodeJSONReply(raw, &draft); err != nil {
		return nil, err
	}
	if draft.Content == "" {
		return nil, fmt.Errorf("draft reply has no content")
	}
	if draft.Title == "" {
		draft.Title = "Documento generado"
	}
	return &draft, nil
}

// ParseConversationTurn decodes a guided conversation reply
func ParseConversationTurn(raw string) (*ConversationTurn, error) {
	var turn ConversationTurn
	if err := decodeJSONReply(raw, &turn); err != nil {
		return nil, err
	}
	if turn.Ready && (turn.Draft == nil || turn.Draft.Content == "") {
		return nil, fmt.Errorf("conversation reply is ready but carries no draft")
	}
	return &turn, nil
}

// ParseAnalysis decodes an analysis reply
func ParseAnalysis(raw string) (*Analysis, error) {
	var analysis Analysis
	if err := decodeJSONReply(raw, &analysis); err != nil {
		return nil, err
	}
	if analysis.Summary == "" {
		return nil, fmt.Errorf("analysis reply has no summary")
	}
	return &analysis, nil
}

// decodeJSONReply parses a model reply into dest. Models occasionally wrap
// JSON in markdown code fences even in JSON mode, so fences are stripped
// before decoding.
func decodeJSONReply(raw string, dest interface{}) error {
	trimmed := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(trimmed, "```json"); ok {
		trimmed = after
	} else if after, ok := strings.CutPrefix(trimmed, "```"); ok {
		trimmed = after
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)

	if trimmed == "" {
		return fmt.Errorf("empty model reply")
	}
	if err := json.Unmarshal([]byte(trimmed), dest); err != nil {
		return fmt.Errorf("failed to decode model reply: %w", err)
	}
	return nil
}
