package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeminiClient(baseURL string) *GeminiClient {
	return &GeminiClient{
		client:      resty.New(),
		apiKey:      "test-key",
		model:       "gemini-2.0-flash-exp",
		instruction: PrenatalSystemInstruction,
		baseURL:     baseURL,
	}
}

func geminiCandidateBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]}}]}`
}

func TestGeminiGenerate(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiCandidateBody("Rest when you can.")))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	text, err := client.Generate(context.Background(), "Patient Data: ...", DefaultGenerationConfig())
	require.NoError(t, err)
	assert.Equal(t, "Rest when you can.", text)

	// 生成オプションが固定値でリクエストに載ること
	genCfg, ok := captured["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 0.4, genCfg["temperature"], 1e-6)
	assert.InDelta(t, 0.8, genCfg["topP"], 1e-6)
	assert.EqualValues(t, 40, genCfg["topK"])
	assert.EqualValues(t, 8192, genCfg["maxOutputTokens"])
	assert.Equal(t, "text/plain", genCfg["responseMimeType"])

	// システムプロンプトも毎回同梱される
	instr, ok := captured["system_instruction"].(map[string]interface{})
	require.True(t, ok)
	parts := instr["parts"].([]interface{})
	require.Len(t, parts, 1)
	assert.Equal(t, PrenatalSystemInstruction, parts[0].(map[string]interface{})["text"])
}

func TestGeminiGenerateTrimsWhitespace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiCandidateBody("  padded  ")))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	text, err := client.Generate(context.Background(), "p", DefaultGenerationConfig())
	require.NoError(t, err)
	assert.Equal(t, "padded", text)
}

func TestGeminiGenerateNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.Generate(context.Background(), "p", DefaultGenerationConfig())
	assert.Error(t, err)
}

func TestGeminiGenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.Generate(context.Background(), "p", DefaultGenerationConfig())
	assert.EqualError(t, err, "no content in response")
}

func TestGeminiGenerateMissingAPIKey(t *testing.T) {
	client := newTestGeminiClient("http://localhost:0")
	client.apiKey = ""

	_, err := client.Generate(context.Background(), "p", DefaultGenerationConfig())
	assert.EqualError(t, err, "GEMINI_API_KEY is not set")
}
