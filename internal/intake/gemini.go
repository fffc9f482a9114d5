package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// GeminiExtractor calls the generativelanguage REST endpoint directly; the
// request/response shapes are small enough that an SDK buys nothing.
type GeminiExtractor struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeminiExtractor(apiKey string) *GeminiExtractor {
	return &GeminiExtractor{
		apiKey:  apiKey,
		baseURL: defaultGeminiURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// NewGeminiExtractorWithBase exists for tests.
func NewGeminiExtractorWithBase(apiKey, baseURL string, client *http.Client) *GeminiExtractor {
	return &GeminiExtractor{apiKey: apiKey, baseURL: baseURL, client: client}
}

func extractionPrompt(text string) string {
	return fmt.Sprintf(`
Extract reservation details from this text into a specific JSON format.
Current Year: %d.

Input: %q

CRITICAL PRICING & AGE RULES:
1. "Casal" = 2 adults.
2. AGE 8+ (>=8 years old) counts as 1 ADULT.
3. AGE 5-7 (5, 6, 7 years old) counts as "children_5_7".
4. AGE 0-4 (<5 years old) is FREE (do not count in pricing fields).

Keywords:
- "Pago", "sinal", "adiantou", "entrada" = 'advance_payment'.
- "Valor", "total" = 'total_price'.

Output JSON ARRAY:
[{
  "chalet_id": number | null,
  "guest_name": string,
  "contact_info": string (Phone/Email),
  "checkin_date": "YYYY-MM-DD",
  "checkout_date": "YYYY-MM-DD" (or null if not specified),
  "total_price": number,
  "advance_payment": number,
  "arrival_time": "HH:MM" (default "14:00"),
  "adults": number (Count of everyone >= 8 years old. Default 2 for "Casal"),
  "children_5_7": number (Count of everyone aged 5 to 7),
  "notes": string
}]`, time.Now().Year(), text)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiExtractor) Extract(ctx context.Context, text string) ([]Parsed, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: extractionPrompt(text)}}}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?key=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini call: status %d: %s", resp.StatusCode, body)
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, nil
	}

	return ParseModelOutput(gr.Candidates[0].Content.Parts[0].Text)
}

// ParseModelOutput decodes the model's JSON, tolerating markdown fences and
// a truncated trailing bracket, which this model produces now and then.
func ParseModelOutput(raw string) ([]Parsed, error) {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, nil
	}
	if strings.HasPrefix(clean, "[") && !strings.HasSuffix(clean, "]") {
		clean += "]"
	}

	var items []Parsed
	if err := json.Unmarshal([]byte(clean), &items); err == nil {
		return items, nil
	}

	// Single object instead of an array.
	var one Parsed
	if err := json.Unmarshal([]byte(clean), &one); err == nil {
		return []Parsed{one}, nil
	}

	// Truncated array: cut at the last complete object.
	if idx := strings.LastIndex(clean, "}"); idx >= 0 {
		if err := json.Unmarshal([]byte(clean[:idx+1]+"]"), &items); err == nil {
			return items, nil
		}
	}
	return nil, fmt.Errorf("unparseable model output: %.80s", clean)
}
