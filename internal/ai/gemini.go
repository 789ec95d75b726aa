// Package ai wraps the Google Generative Language REST API for the three
// assisted features: CSV enrichment, image-based component identification
// and the inventory chatbot. Every feature degrades gracefully when no API
// key is configured or a call fails.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lab-inventory-api-server/config"
	"lab-inventory-api-server/internal/ingest"

	"github.com/rs/zerolog/log"
)

const apiBase = "https://generativelanguage.googleapis.com/v1beta/models"

type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
}

func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// --- Wire types for generateContent ---

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []struct {
		Parts []part `json:"parts"`
	} `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	var req generateRequest
	req.Contents = make([]struct {
		Parts []part `json:"parts"`
	}, 1)
	req.Contents[0].Parts = parts

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", apiBase, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// stripCodeFence removes a ```json ... ``` wrapper the model likes to add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// --- CSV enrichment ---

const enrichPrompt = `You are enriching a lab's electronics component inventory entries.

Here are components extracted from a CSV file:
%s

For each component fill in missing data:
1. Category: if missing, empty or "Other", pick the best fit from exactly these values: Microcontroller, SBC, Sensor, Actuator, Display, Power, Communication, Other.
2. Tags: add 2-4 short lowercase tags describing the component.
Keep every other field unchanged. Reply with ONLY the JSON array, same order and same fields as the input.`

// EnrichComponents asks the model to fill in missing categories and tags.
// On any failure the input drafts are returned unchanged.
func (c *Client) EnrichComponents(ctx context.Context, drafts []ingest.ComponentDraft) []ingest.ComponentDraft {
	if !c.Enabled() || len(drafts) == 0 {
		return drafts
	}

	input, err := json.Marshal(drafts)
	if err != nil {
		return drafts
	}
	text, err := c.generate(ctx, []part{{Text: fmt.Sprintf(enrichPrompt, input)}})
	if err != nil {
		log.Warn().Err(err).Msg("csv enrichment failed, using extracted data as-is")
		return drafts
	}

	var enriched []ingest.ComponentDraft
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &enriched); err != nil || len(enriched) != len(drafts) {
		log.Warn().Err(err).Msg("unusable enrichment reply, using extracted data as-is")
		return drafts
	}
	return enriched
}

// --- Image identification ---

// Candidate is one ranked guess at what a scanned component is.
type Candidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

const identifyPrompt = `Identify the electronics component in this photo.

The lab's catalog contains these component names:
%s

Reply with ONLY a JSON array of up to 3 candidates, best match first, each
shaped like {"name": "...", "confidence": 0.0-1.0, "reason": "..."}. Prefer
names from the catalog when they plausibly match; otherwise use the generic
component name.`

// IdentifyComponent sends a photo plus the catalog's names and returns
// ranked candidate matches.
func (c *Client) IdentifyComponent(ctx context.Context, image []byte, mimeType string, catalogNames []string) ([]Candidate, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("image identification is not configured")
	}

	parts := []part{
		{Text: fmt.Sprintf(identifyPrompt, strings.Join(catalogNames, "\n"))},
		{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	}
	text, err := c.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &candidates); err != nil {
		return nil, fmt.Errorf("unusable identification reply: %w", err)
	}
	return candidates, nil
}

// --- Chatbot ---

const chatPrompt = `You are the lab inventory assistant. Answer the question
using only the inventory context below. Be brief and concrete; if the context
does not contain the answer, say so.

Inventory context:
%s

Question: %s`

// Chat answers an inventory question with catalog and ledger context
// embedded in the prompt.
func (c *Client) Chat(ctx context.Context, question, inventoryContext string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("chatbot is not configured")
	}
	return c.generate(ctx, []part{{Text: fmt.Sprintf(chatPrompt, inventoryContext, question)}})
}
