package vision

import (
	"context"
	"fmt"
	"log"

	"github.com/google/generative-ai-go/genai"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
	"google.golang.org/api/option"
)

const geminiTarget = "gemini"

// contentGenerator is the slice of *genai.GenerativeModel the connection test needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiVisionService implements repository.ConnectionTester against the Gemini API.
type GeminiVisionService struct {
	client    *genai.Client
	model     contentGenerator
	modelName string
	prompt    string
}

var _ repository.ConnectionTester = (*GeminiVisionService)(nil)

// GeminiOptions configures the Gemini vision service.
type GeminiOptions struct {
	APIKey string
	Model  string
	Prompt string
}

func NewGeminiVisionService(ctx context.Context, opts GeminiOptions) (*GeminiVisionService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key must not be empty")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model must not be empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(0)

	return &GeminiVisionService{
		client:    client,
		model:     model,
		modelName: opts.Model,
		prompt:    opts.Prompt,
	}, nil
}

// TestConnection sends one short prompt and reports whether the model answered.
func (s *GeminiVisionService) TestConnection(ctx context.Context) (repository.ConnectionResult, error) {
	log.Printf("[Gemini] ☁️ Testing connection to %s...", s.modelName)

	prompt := s.prompt
	if prompt == "" {
		prompt = "Reply with OK."
	}

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		reason, transportErr := classifyGeminiError(geminiTarget, err)
		if transportErr != nil {
			log.Printf("[Gemini] ⛔ Transport failure: %v", transportErr)
			return repository.ConnectionResult{}, transportErr
		}
		log.Printf("[Gemini] ❌ API reported failure: %s", reason)
		return repository.Failed(reason), nil
	}

	cand, err := checkResponse(resp)
	if err != nil {
		log.Printf("[Gemini] ❌ Unusable response: %v", err)
		return repository.Failed(err.Error()), nil
	}

	log.Printf("[Gemini] ☁️ Response received (finish reason: %s).", cand.FinishReason)
	return repository.Succeeded(s.modelName), nil
}

// checkResponse fails only when the API answered without any candidate.
// A candidate with no text, for example one cut off at the output limit, still proves the model is reachable.
func checkResponse(resp *genai.GenerateContentResponse) (*genai.Candidate, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return nil, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("no candidates returned from gemini")
	}
	return resp.Candidates[0], nil
}

func (s *GeminiVisionService) Name() string {
	return "Gemini Vision (" + s.modelName + ")"
}

func (s *GeminiVisionService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
