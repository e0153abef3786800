// Package extract converts scanned parcel documents into structured
// field sets via a generative extraction service.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mos-jef/title-crm/internal/apperr"
)

// Fields is the structured result of reading one tax/assessment card.
// Every field the document does not contain is an empty string, never
// omitted.
type Fields struct {
	APNRaw           string `json:"apnRaw"`
	APN              string `json:"apn"`
	AssessedOwner    string `json:"assessedOwner"`
	LegalOwner       string `json:"legalOwner"`
	County           string `json:"county"`
	State            string `json:"state"`
	Acres            string `json:"acres"`
	BriefLegal       string `json:"briefLegal"`
	LegalDescription string `json:"legalDescription"`
	MapParcelNo      string `json:"mapParcelNo"`
	Address          string `json:"address"`
}

// Identifier returns the best raw identifier the extraction produced:
// the as-printed form when present, otherwise the canonical form.
func (f Fields) Identifier() string {
	if f.APNRaw != "" {
		return f.APNRaw
	}
	return f.APN
}

// Extractor reads one document and returns its field set. Implementations
// are stateless and safe to call repeatedly; retry policy belongs to the
// caller.
type Extractor interface {
	Extract(ctx context.Context, doc []byte) (Fields, error)
}

// Parse decodes a model response into Fields. Markdown code fences
// around the JSON object are stripped first; anything that still fails
// to decode is an extraction failure.
func Parse(raw string) (Fields, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var f Fields
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return Fields{}, &apperr.ExtractionError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return f, nil
}
