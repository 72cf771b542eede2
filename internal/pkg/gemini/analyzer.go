// Package gemini wraps the hosted multimodal model that analyzes PCB photos.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/ds124wfegd/electrorescue/internal/entity"
	genai "github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Analyzer is the boundary to the external analysis service.
type Analyzer interface {
	AnalyzePCBImage(ctx context.Context, base64Data, mimeType string) (*entity.AnalysisResult, error)
}

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

type geminiAnalyzer struct {
	client *genai.Client
	model  string
	temp   float32
}

// NewAnalyzer returns the Gemini-backed analyzer. Without an API key it
// returns an analyzer that fails every call with ErrAnalyzerUnavailable.
func NewAnalyzer(ctx context.Context, cfg Config) (Analyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logrus.Warn("Gemini API key is not set, analysis requests will fail")
		return &unavailableAnalyzer{}, nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	logrus.WithField("model", cfg.Model).Info("Gemini analyzer configured")
	return &geminiAnalyzer{client: client, model: cfg.Model, temp: cfg.Temperature}, nil
}

func (g *geminiAnalyzer) AnalyzePCBImage(ctx context.Context, base64Data, mimeType string) (*entity.AnalysisResult, error) {
	raw, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return nil, entity.ErrInvalidImageFormat
	}

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = resultSchema
	if g.temp > 0 {
		model.SetTemperature(g.temp)
	}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: raw},
		genai.Text(analysisPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return nil, fmt.Errorf("gemini: request blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, errors.New("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return ParseResult(sb.String())
}

func (g *geminiAnalyzer) Close() error {
	return g.client.Close()
}

type unavailableAnalyzer struct{}

func (u *unavailableAnalyzer) AnalyzePCBImage(ctx context.Context, base64Data, mimeType string) (*entity.AnalysisResult, error) {
	return nil, entity.ErrAnalyzerUnavailable
}
