// Package services holds the orchestration layer: content generation,
// synthesis dispatch, and the reconciliation sweep. Services talk to
// external systems through narrow interfaces so tests can swap fakes in.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/platform/openai"
)

// Oracle is the text-generation contract the services consume. Callers
// send exactly one system and one user message and require the response
// to be a bare JSON document.
type Oracle interface {
	Completion(ctx context.Context, messages []openai.Message) (string, error)
}

// OracleFormatError reports a response that is not the JSON document the
// prompt demands. The whole generation request aborts; nothing partial is
// persisted.
type OracleFormatError struct {
	Cause error
}

func (e *OracleFormatError) Error() string {
	return fmt.Sprintf("oracle response is not valid structured data: %v", e.Cause)
}

func (e *OracleFormatError) Unwrap() error {
	return e.Cause
}

type cardSuggestion struct {
	Hiragana string `json:"hiragana"`
	Meaning  string `json:"meaning"`
	Type     string `json:"type"`
}

func parseCardSuggestions(raw string) ([]cardSuggestion, error) {
	var out []cardSuggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, &OracleFormatError{Cause: err}
	}
	if len(out) == 0 {
		return nil, &OracleFormatError{Cause: fmt.Errorf("empty suggestion list")}
	}
	for i, s := range out {
		if strings.TrimSpace(s.Hiragana) == "" {
			return nil, &OracleFormatError{Cause: fmt.Errorf("suggestion %d missing hiragana", i)}
		}
	}
	return out, nil
}

func parseScriptLines(raw string) ([]types.ScriptLine, error) {
	var out []types.ScriptLine
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, &OracleFormatError{Cause: err}
	}
	if len(out) == 0 {
		return nil, &OracleFormatError{Cause: fmt.Errorf("empty script")}
	}
	for i, line := range out {
		if strings.TrimSpace(line.Text) == "" {
			return nil, &OracleFormatError{Cause: fmt.Errorf("line %d missing text", i)}
		}
		if strings.TrimSpace(line.LanguageCode) == "" {
			return nil, &OracleFormatError{Cause: fmt.Errorf("line %d missing languageCode", i)}
		}
	}
	return out, nil
}
