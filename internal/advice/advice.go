// Package advice generates coaching feedback for a parsed CV using Gemini.
package advice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/shahramhal/ai-career-coach/internal/prompts"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

const defaultModel = "gemini-2.5-flash"

// Advice is the structured coaching feedback returned for a CV.
type Advice struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	SuggestedSkills []string `json:"suggested_skills"`
}

// Coach generates CV feedback through the Gemini API.
type Coach struct {
	client *genai.Client
	model  string
}

// NewCoach creates a coach backed by Gemini.
func NewCoach(ctx context.Context, apiKey string) (*Coach, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Coach{client: client, model: defaultModel}, nil
}

// Close releases resources held by the coach.
func (c *Coach) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Advise reviews a parsed CV and its screening report and returns coaching
// feedback. The model is asked for JSON and the response is parsed strictly.
func (c *Coach) Advise(ctx context.Context, cv *types.ParsedCV, report *types.ATSReport) (*Advice, error) {
	prompt, err := BuildPrompt(cv, report)
	if err != nil {
		return nil, err
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate advice: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}
	return ParseAdvice(text)
}

// BuildPrompt renders the coaching prompt for a CV and its report. The raw
// text is stripped from the CV payload to keep the prompt compact.
func BuildPrompt(cv *types.ParsedCV, report *types.ATSReport) (string, error) {
	template, err := prompts.Get("coaching.json", "cv_advice")
	if err != nil {
		return "", err
	}

	trimmed := *cv
	trimmed.RawText = ""
	cvJSON, err := json.Marshal(&trimmed)
	if err != nil {
		return "", fmt.Errorf("failed to encode cv: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	return prompts.Format(template, map[string]string{
		"CV":     string(cvJSON),
		"Report": string(reportJSON),
	}), nil
}

// ParseAdvice decodes a model response into Advice, tolerating markdown
// code fences the model sometimes adds despite the JSON MIME type.
func ParseAdvice(text string) (*Advice, error) {
	var advice Advice
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &advice); err != nil {
		return nil, fmt.Errorf("failed to parse advice response: %w", err)
	}
	if advice.Summary == "" {
		return nil, fmt.Errorf("advice response missing summary")
	}
	return &advice, nil
}

// extractText flattens the text parts of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
