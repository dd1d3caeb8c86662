package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient はGemini APIを叩くGenerator実装
type GeminiClient struct {
	client      *resty.Client
	apiKey      string
	model       string
	instruction string
	baseURL     string
}

func NewGeminiClient(apiKey, model, instruction string) *GeminiClient {
	return &GeminiClient{
		client:      resty.New(),
		apiKey:      apiKey,
		model:       model,
		instruction: instruction,
		baseURL:     defaultGeminiBaseURL,
	}
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is not set")
	}

	requestBody := map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]string{{"text": g.instruction}},
		},
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": prompt}},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      cfg.Temperature,
			"topP":             cfg.TopP,
			"topK":             cfg.TopK,
			"maxOutputTokens":  cfg.MaxOutputTokens,
			"responseMimeType": cfg.ResponseMIMEType,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", g.apiKey).
		SetBody(requestBody).
		Post(url)

	if err != nil {
		return "", err
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("failed to generate content, status: %d", resp.StatusCode())
	}

	var result geminiResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %v", err)
	}

	if len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
		text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("no content in response")
}
