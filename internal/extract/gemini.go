package extract

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mos-jef/title-crm/internal/apperr"
)

const taxCardPrompt = `You are reading a county tax or assessment card for a real-property parcel.

Extract the following fields and respond with ONLY a single JSON object with exactly these keys:

{
  "apnRaw": "the assessor's parcel number exactly as printed on the card",
  "apn": "the same parcel number reduced to digits and letters only (no spaces, hyphens, or periods)",
  "assessedOwner": "the assessed owner name",
  "legalOwner": "the legal owner name",
  "county": "the county name",
  "state": "the two-letter state code",
  "acres": "the acreage as a plain numeric string",
  "briefLegal": "the brief legal description",
  "legalDescription": "the full legal description",
  "mapParcelNo": "the map or parcel number",
  "address": "the property address"
}

Use an empty string for any field the card does not contain. Do not add keys, comments, or any text outside the JSON object.`

// Gemini implements Extractor against the Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates an extraction client for the given model name.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("extract: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("extract: create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	return &Gemini{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Extract sends one PDF to the model and parses the structured reply.
func (g *Gemini) Extract(ctx context.Context, doc []byte) (Fields, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: doc},
		genai.Text(taxCardPrompt),
	)
	if err != nil {
		return Fields{}, &apperr.ExtractionError{Err: err}
	}
	if len(resp.Candidates) == 0 {
		return Fields{}, &apperr.ExtractionError{Err: fmt.Errorf("no candidates returned")}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Fields{}, &apperr.ExtractionError{Err: fmt.Errorf("empty content returned")}
	}
	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return Fields{}, &apperr.ExtractionError{Err: fmt.Errorf("unexpected response part %T", candidate.Content.Parts[0])}
	}
	return Parse(string(txt))
}
