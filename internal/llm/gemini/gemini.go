// Package gemini is a generation provider backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/chalkboard/internal/generation"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type Provider struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

var _ generation.Provider = (*Provider)(nil)

func New(ctx context.Context, opts Options, log *logger.Logger) (*Provider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini: missing api key")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	cfg := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(opts.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{client: client, model: model, log: log.With("component", "gemini")}, nil
}

func (p *Provider) Name() string { return "gemini" }

// Generate asks for a JSON reply. The schema travels in the system prompt.
func (p *Provider) Generate(ctx context.Context, req generation.Request) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("gemini: empty response")
	}
	p.log.Debug("generate complete", "model", p.model, "chars", len(text))
	return []byte(text), nil
}
