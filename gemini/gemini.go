package gemini

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"response_mime_type,omitempty"`
	ResponseSchema   map[string]any `json:"response_schema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	Contents          []content         `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent API over plain HTTP.
type Client struct {
	apiKey string
	// model handles structured JSON requests, textModel free-text ones.
	model     string
	textModel string
	http      *http.Client
}

func NewClient(apiKey, model, textModel string) *Client {
	if textModel == "" {
		textModel = model
	}
	return &Client{
		apiKey:    apiKey,
		model:     model,
		textModel: textModel,
		http:      &http.Client{},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// GenerateJSON sends a system instruction plus user content and requests a
// JSON reply conforming to schema.
func (c *Client) GenerateJSON(system, user string, schema map[string]any) (string, error) {
	reqBody := geminiRequest{
		SystemInstruction: &content{
			Role:  "system",
			Parts: []part{{Text: system}},
		},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: user}},
			},
		},
	}
	return c.generateContent(c.model, reqBody)
}

// GenerateText returns free-form text for a prompt using the lighter model.
func (c *Client) GenerateText(prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
	}
	return c.generateContent(c.textModel, reqBody)
}

// imagePrompt builds the full image analysis instruction around the raw
// report description supplied by the caller.
func imagePrompt(context string) string {
	prompt := "Analyze this emergency-related image and describe what you see. " +
		"Focus on identifying potential hazards, damage, injuries, or emergency situations. " +
		"Provide specific details that would be useful for emergency responders."
	if context != "" {
		prompt += "\n\nContext provided: " + context
	}
	return prompt
}

// DescribeImage analyzes an emergency image with optional description context.
func (c *Client) DescribeImage(imageData []byte, context string) (string, error) {
	parts := []part{
		{
			InlineData: &inlineData{
				MimeType: "image/jpeg",
				Data:     base64.StdEncoding.EncodeToString(imageData),
			},
		},
		{Text: imagePrompt(context)},
	}

	reqBody := geminiRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: parts,
			},
		},
	}
	return c.generateContent(c.model, reqBody)
}

func (c *Client) generateContent(model string, body geminiRequest) (string, error) {
	// try v1beta first, then v1
	endpoints := []string{
		fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, c.apiKey),
		fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:generateContent?key=%s", model, c.apiKey),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, ep := range endpoints {
		req, err := http.NewRequest("POST", ep, bytes.NewBuffer(data))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to send request: %w", err)
			continue
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
			// retry next endpoint if available
			continue
		}
		var gr geminiResponse
		if err := json.Unmarshal(bodyBytes, &gr); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}
		if len(gr.Candidates) == 0 {
			lastErr = fmt.Errorf("no candidates in response")
			continue
		}
		// find first text part
		for _, p := range gr.Candidates[0].Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
		lastErr = fmt.Errorf("no text part in response")
	}
	return "", lastErr
}
