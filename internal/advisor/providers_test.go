package advisor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	aiplatform "google.golang.org/api/aiplatform/v1"

	"arthasync/internal/core"
)

func TestOpenAIGenerator(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Save 10% of income."},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	gen, err := NewGenerator(context.Background(), Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		Model:    "local-model",
		BaseURL:  srv.URL + "/v1/",
	})
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), Request{SystemPersona: Persona, Prompt: "hello", Language: core.LangEnglish})
	require.NoError(t, err)
	assert.Equal(t, "Save 10% of income.", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "local-model", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "hello", gotBody.Messages[1].Content)
}

func TestOpenAIGeneratorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen, err := newOpenAIGenerator(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestOpenAIGeneratorNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	gen, err := newOpenAIGenerator(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGeminiGenerator(t *testing.T) {
	var gotKey, gotPath string
	var gotBody aiplatform.GoogleCloudAiplatformV1GenerateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Track "},{"text":"every taka."}]}}]}`)
	}))
	defer srv.Close()

	gen, err := NewGenerator(context.Background(), Config{
		Provider:   ProviderGemini,
		APIKey:     "gem-key",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), Request{SystemPersona: Persona, Prompt: "summary", Language: core.LangEnglish})
	require.NoError(t, err)
	assert.Equal(t, "Track every taka.", text)
	assert.Equal(t, "gem-key", gotKey)
	assert.True(t, strings.HasSuffix(gotPath, "/v1/publishers/google/models/gemini-2.5-flash:generateContent"), gotPath)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "summary", gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.SystemInstruction)
	assert.Equal(t, Persona, gotBody.SystemInstruction.Parts[0].Text)
}

func TestResponseText(t *testing.T) {
	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&aiplatform.GoogleCloudAiplatformV1GenerateContentResponse{}))
	assert.Empty(t, responseText(&aiplatform.GoogleCloudAiplatformV1GenerateContentResponse{
		Candidates: []*aiplatform.GoogleCloudAiplatformV1Candidate{{Content: nil}},
	}))
	assert.Equal(t, "a b", responseText(&aiplatform.GoogleCloudAiplatformV1GenerateContentResponse{
		Candidates: []*aiplatform.GoogleCloudAiplatformV1Candidate{{Content: &aiplatform.GoogleCloudAiplatformV1Content{
			Parts: []*aiplatform.GoogleCloudAiplatformV1Part{{Text: "a "}, nil, {Text: "b"}},
		}}},
	}))
}

func TestGeminiModelPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "publishers/google/models/gemini-2.5-flash"},
		{"gemini-2.0-flash", "publishers/google/models/gemini-2.0-flash"},
		{"models/gemini-2.0-flash", "publishers/google/models/gemini-2.0-flash"},
		{"projects/p/locations/us-central1/publishers/google/models/g", "projects/p/locations/us-central1/publishers/google/models/g"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, geminiModelPath(tt.in), tt.in)
	}
}
