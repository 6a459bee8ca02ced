// Package anyllm provides a Classifier backed by
// github.com/mozilla-ai/any-llm-go, a unified multi-provider interface that
// supports OpenAI, Anthropic, Gemini, Ollama, DeepSeek, Mistral, Groq, and more.
//
// Usage:
//
//	c, err := anyllm.New("ollama", "llama3.1:8b")
//	c, err := anyllm.NewOpenAI("gpt-4o-mini", anyllmlib.WithAPIKey("sk-..."))
package anyllm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/callsift/callsift/pkg/provider/classify"
)

// Ensure Classifier implements the classify.Classifier interface.
var _ classify.Classifier = (*Classifier)(nil)

// systemPrompt instructs the model to judge rebuttal attempts and answer in
// strict JSON so the response can be machine-parsed.
const systemPrompt = `You are a quality-assurance reviewer for outbound real-estate sales calls.
You are given the transcript of the AGENT side of a call where the property
owner declined or objected. Decide whether the agent made ANY rebuttal
attempt: asking about other properties, proposing a future follow-up or
callback, making a purchase offer, or otherwise pushing back on the refusal
instead of simply accepting it and closing the call.

Respond with ONLY a JSON object, no prose around it:
{"rebuttal": true|false, "confidence": 0.0-1.0, "reasoning": "<one sentence>"}`

// Classifier implements classify.Classifier by wrapping
// github.com/mozilla-ai/any-llm-go.
type Classifier struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a Classifier backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama", "deepseek",
// "mistral", "groq", "llamacpp", "llamafile".
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey,
// anyllmlib.WithBaseURL). If no API key option is provided, the provider falls
// back to the relevant environment variable (OPENAI_API_KEY, etc.).
func New(providerName string, model string, opts ...anyllmlib.Option) (*Classifier, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}

	return &Classifier{backend: backend, model: model}, nil
}

// NewOpenAI creates a Classifier backed by OpenAI.
// Without options, it reads the OPENAI_API_KEY environment variable.
func NewOpenAI(model string, opts ...anyllmlib.Option) (*Classifier, error) {
	return New("openai", model, opts...)
}

// NewOllama creates a Classifier backed by Ollama (local inference).
// Without options, it connects to http://localhost:11434.
func NewOllama(model string, opts ...anyllmlib.Option) (*Classifier, error) {
	return New("ollama", model, opts...)
}

// NewLlamaCpp creates a Classifier backed by a running llama.cpp server.
// Without options, it connects to http://127.0.0.1:8080/v1.
func NewLlamaCpp(model string, opts ...anyllmlib.Option) (*Classifier, error) {
	return New("llamacpp", model, opts...)
}

// createBackend creates the underlying any-llm-go provider for the given provider name.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// ClassifyRebuttal implements classify.Classifier.
func (c *Classifier) ClassifyRebuttal(ctx context.Context, transcript string) (*classify.Verdict, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return &classify.Verdict{Rebuttal: false, Confidence: 1, Reasoning: "empty transcript"}, nil
	}

	temperature := 0.0
	resp, err := c.backend.Completion(ctx, anyllmlib.CompletionParams{
		Model:       c.model,
		Temperature: &temperature,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: anyllmlib.RoleUser, Content: transcript},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("anyllm: empty choices in response")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.ContentString())
	if err != nil {
		return nil, fmt.Errorf("anyllm: %w", err)
	}
	return verdict, nil
}

// verdictPayload matches the JSON object the system prompt requests.
type verdictPayload struct {
	Rebuttal   bool    `json:"rebuttal"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// parseVerdict extracts the JSON verdict from a model response. Models
// sometimes wrap the object in markdown fences or add prose, so it parses the
// first {...} span rather than the raw content.
func parseVerdict(content string) (*classify.Verdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response %q", content)
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if payload.Confidence < 0 {
		payload.Confidence = 0
	}
	if payload.Confidence > 1 {
		payload.Confidence = 1
	}
	return &classify.Verdict{
		Rebuttal:   payload.Rebuttal,
		Confidence: payload.Confidence,
		Reasoning:  payload.Reasoning,
	}, nil
}
