package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	aiplatform "google.golang.org/api/aiplatform/v1"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiGenerator calls Gemini through the Vertex AI generateContent
// endpoint. With only an API key the publisher model path is used directly.
type geminiGenerator struct {
	models *aiplatform.ProjectsLocationsPublishersModelsService
	model  string
}

func newGeminiGenerator(ctx context.Context, cfg Config) (*geminiGenerator, error) {
	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		// WithHTTPClient disables option-based auth, so the key goes in a header.
		opts = append(opts, option.WithHTTPClient(withAPIKey(cfg.HTTPClient, cfg.APIKey)))
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	svc, err := aiplatform.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini service: %w", err)
	}

	return &geminiGenerator{models: svc.Projects.Locations.Publishers.Models, model: geminiModelPath(cfg.Model)}, nil
}

// geminiModelPath expands a bare model id to publishers/google/models/<id>.
// Full resource names (projects/... or publishers/...) are kept.
func geminiModelPath(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	if strings.HasPrefix(model, "projects/") || strings.HasPrefix(model, "publishers/") {
		return model
	}
	return "publishers/google/models/" + strings.TrimPrefix(model, "models/")
}

func (g *geminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	body := &aiplatform.GoogleCloudAiplatformV1GenerateContentRequest{
		Contents: []*aiplatform.GoogleCloudAiplatformV1Content{{
			Role:  "user",
			Parts: []*aiplatform.GoogleCloudAiplatformV1Part{{Text: req.Prompt}},
		}},
	}
	if req.SystemPersona != "" {
		body.SystemInstruction = &aiplatform.GoogleCloudAiplatformV1Content{
			Parts: []*aiplatform.GoogleCloudAiplatformV1Part{{Text: req.SystemPersona}},
		}
	}

	resp, err := g.models.GenerateContent(g.model, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *aiplatform.GoogleCloudAiplatformV1GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil {
			continue
		}
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("x-goog-api-key", t.key)
	return t.base.RoundTrip(r)
}

func withAPIKey(c *http.Client, key string) *http.Client {
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c
	clone.Transport = &apiKeyTransport{key: key, base: base}
	return &clone
}
