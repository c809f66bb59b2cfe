package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client implements Gateway on top of the Gemini API.
type Client struct {
	genai *genai.Client
	model string
	log   zerolog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient builds a Gemini-backed gateway. When apiKey is empty the
// SDK falls back to its environment-based credential lookup.
func NewClient(ctx context.Context, apiKey, model string, log zerolog.Logger) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if apiKey != "" {
		cc.APIKey = apiKey
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		genai: client,
		model: model,
		log:   log,
	}, nil
}

// categorizeSchema constrains the model to the exact response shape
// Categorize decodes.
var categorizeSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":        {Type: genai.TypeString},
			"category":  {Type: genai.TypeString},
			"isAnomaly": {Type: genai.TypeBoolean},
		},
		Required: []string{"id", "category", "isAnomaly"},
	},
}

// Categorize sends the whole batch in one request and decodes the
// model's JSON reply. Responses that do not decode are logged and
// treated as empty, never as an error.
func (c *Client) Categorize(ctx context.Context, txs []domain.Transaction) ([]domain.CategoryUpdate, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildCategorizePrompt(txs)}},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   categorizeSchema,
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("categorize transactions: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		c.log.Warn().Msg("Model returned an empty categorization response")
		return nil, nil
	}

	var updates []domain.CategoryUpdate
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &updates); err != nil {
		c.log.Warn().Err(err).Str("response", rawText).Msg("Categorization response is not valid JSON")
		return nil, nil
	}

	c.log.Info().Int("requested", len(txs)).Int("returned", len(updates)).Msg("Categorization response parsed")
	return updates, nil
}

// Insights asks for a short plain-text spending summary. An empty
// reply comes back as "" with a nil error; the caller decides what to
// show for that.
func (c *Client) Insights(ctx context.Context, txs []domain.Transaction) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildInsightsPrompt(truncateForInsights(txs))}},
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate insights: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}

// cleanModelJSON strips the Markdown wrapping models sometimes add
// despite instructions, keeping just the JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Drop a leading ``` or ```json fence line.
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}

	// And the closing fence.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	// If there is still prose around the array, keep only the span
	// from the first '[' to the last ']'.
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start != -1 && end > start {
		s = strings.TrimSpace(s[start : end+1])
	}

	return s
}
