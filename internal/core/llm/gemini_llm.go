package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/NexSupply/internal/core"
	"github.com/markdave123-py/NexSupply/internal/models"
	"github.com/markdave123-py/NexSupply/internal/platform/logger"
)

// ErrNoAPIKey is returned by NewGeminiLLM when GEMINI_API_KEY is empty.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY not set")

type GeminiLLM struct {
	client    *genai.Client
	modelName string
	extractor core.TextExtractor
	log       *logger.Logger
}

// NewGeminiLLM opens a Gemini client. extractor may be nil, in which case
// documents are sent without a text rendering.
func NewGeminiLLM(ctx context.Context, apiKey, modelName string, extractor core.TextExtractor, log *logger.Logger) (*GeminiLLM, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GeminiLLM{client: cl, modelName: modelName, extractor: extractor, log: log.With("client", "Gemini")}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Analyze sends the query and any attachment to the model and decodes its
// JSON answer. Model-side failures come back as an unsuccessful response;
// only a cancelled or expired context is returned as an error.
func (g *GeminiLLM) Analyze(ctx context.Context, in models.AnalysisInput) (*models.AnalysisResponse, error) {
	mode := in.Mode
	if mode == "" {
		mode = models.ModeGeneral
	}

	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(mode))},
	}
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.4)

	parts := g.parts(ctx, in)
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("gemini generate: %w", ctxErr)
		}
		return &models.AnalysisResponse{
			Success:      false,
			Mode:         mode,
			Error:        "The AI service returned an error",
			ErrorDetails: err.Error(),
		}, nil
	}

	text := responseText(resp)
	if text == "" {
		return &models.AnalysisResponse{
			Success:      false,
			Mode:         mode,
			Error:        "The AI service returned an empty answer",
			ErrorDetails: blockReason(resp),
		}, nil
	}

	data, err := DecodeJSON(text)
	if err != nil {
		return &models.AnalysisResponse{
			Success:      false,
			Mode:         mode,
			Error:        "Failed to parse AI response",
			ErrorDetails: err.Error(),
		}, nil
	}
	return &models.AnalysisResponse{Success: true, Data: data, Mode: mode}, nil
}

// parts builds the user turn: the prompt text, then the attachment. Images
// go inline; PDFs go as a blob; other documents only as extracted text.
func (g *GeminiLLM) parts(ctx context.Context, in models.AnalysisInput) []genai.Part {
	prompt := userPrompt(in)
	if len(in.FileBytes) == 0 {
		return []genai.Part{genai.Text(prompt)}
	}

	mt := strings.ToLower(in.FileMIMEType)
	var attachment genai.Part
	switch {
	case strings.HasPrefix(mt, "image/"):
		attachment = genai.ImageData(strings.TrimPrefix(mt, "image/"), in.FileBytes)
	case mt == "application/pdf":
		attachment = genai.Blob{MIMEType: mt, Data: in.FileBytes}
	}

	if g.extractor != nil && !strings.HasPrefix(mt, "image/") {
		text, err := g.extractor.ExtractText(ctx, in.FileBytes, mt)
		if err != nil {
			g.log.Warn("attachment text extraction failed", "file", in.FileName, "mime", mt, "error", err.Error())
		} else if text != "" {
			prompt += "\n\nAttached document (" + in.FileName + ") text:\n" + text
		}
	}

	out := []genai.Part{genai.Text(prompt)}
	if attachment != nil {
		out = append(out, attachment)
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "prompt blocked: " + resp.PromptFeedback.BlockReason.String()
	}
	if resp != nil && len(resp.Candidates) > 0 {
		return "finish reason: " + resp.Candidates[0].FinishReason.String()
	}
	return "no candidates"
}

// DecodeJSON parses a model answer into a JSON object, tolerating markdown
// code fences around it.
func DecodeJSON(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
		s = s[i : j+1]
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode model json: %w", err)
	}
	if out == nil {
		return nil, errors.New("decode model json: not an object")
	}
	return out, nil
}

var _ core.Analyzer = (*GeminiLLM)(nil)
