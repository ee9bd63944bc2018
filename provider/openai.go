package provider

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/parley-hq/parley/core"
)

const (
	defaultModel      = "gpt-4o"
	defaultMaxRetries = 4

	embeddingModel     = openai.EmbeddingModelTextEmbedding3Large
	transcriptionModel = openai.AudioModelWhisper1
)

// OpenAI implements Provider using the official OpenAI Go SDK. It supports
// any OpenAI-compatible endpoint via WithBaseURL.
type OpenAI struct {
	client openai.Client
	model  string
}

// OpenAIOption configures an OpenAI provider.
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	model      string
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
}

// WithModel sets the default chat model name (default: "gpt-4o").
func WithModel(model string) OpenAIOption {
	return func(c *openaiConfig) { c.model = model }
}

// WithAPIKey sets the API key. If empty, the SDK falls back to OPENAI_API_KEY.
func WithAPIKey(key string) OpenAIOption {
	return func(c *openaiConfig) { c.apiKey = key }
}

// WithBaseURL sets a custom base URL, enabling Ollama, vLLM, Azure, or other
// OpenAI-compatible endpoints.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openaiConfig) { c.baseURL = url }
}

// WithTimeout sets the per-request timeout for API calls (default: 2 minutes).
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openaiConfig) { c.timeout = d }
}

// WithMaxRetries bounds the SDK's transport-level retries (default: 4).
// Retries only cover transient failures such as timeouts and 5xx responses;
// validation errors are never retried.
func WithMaxRetries(n int) OpenAIOption {
	return func(c *openaiConfig) { c.maxRetries = n }
}

// NewOpenAI creates an OpenAI provider with the given options.
func NewOpenAI(opts ...OpenAIOption) *OpenAI {
	cfg := openaiConfig{model: defaultModel, maxRetries: defaultMaxRetries}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.apiKey))
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &OpenAI{
		client: openai.NewClient(clientOpts...),
		model:  cfg.model,
	}
}

// Complete dispatches a blocking chat completion and returns the generated
// text. Provider failures are wrapped as ErrUpstream.
func (p *OpenAI) Complete(ctx context.Context, messages []core.Message, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	completion, err := p.client.Chat.Completions.New(ctx, p.params(messages, cfg), requestTags(messages, cfg)...)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", ErrUpstream, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrUpstream)
	}
	return completion.Choices[0].Message.Content, nil
}

// CompleteStream opens a streaming chat completion. Validation failures are
// reported before any network traffic; transport failures surface through
// the stream's Err method.
func (p *OpenAI) CompleteStream(ctx context.Context, messages []core.Message, cfg Config) (ChunkStream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(messages, cfg), requestTags(messages, cfg)...)
	return &openaiChunkStream{stream: stream}, nil
}

// Embed returns the embedding vector for text using text-embedding-3-large.
func (p *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: embedding text must not be empty", ErrEmptyInput)
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %v", ErrUpstream, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrUpstream)
	}
	return resp.Data[0].Embedding, nil
}

// Transcribe converts the audio file at audioPath to text using whisper-1.
// A missing file surfaces as an fs.ErrNotExist-wrapped error; any other
// provider failure is wrapped as ErrTranscription.
func (p *OpenAI) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		Model: transcriptionModel,
		File:  f,
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	return resp.Text, nil
}

// params translates a conversation into a chat completion request.
func (p *OpenAI) params(messages []core.Message, cfg Config) openai.ChatCompletionNewParams {
	model := cfg.Model
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model:            model,
		Messages:         toOpenAIMessages(messages),
		Temperature:      openai.Float(cfg.Temperature),
		TopP:             openai.Float(cfg.TopP),
		PresencePenalty:  openai.Float(cfg.PresencePenalty),
		FrequencyPenalty: openai.Float(cfg.FrequencyPenalty),
	}

	if n := len(messages); n > 0 && messages[n-1].UserID != "" {
		params.User = openai.String(messages[n-1].UserID)
	}
	return params
}

// requestTags attaches the session id and sampling profile name as request
// headers so upstream observability tooling can correlate calls.
func requestTags(messages []core.Message, cfg Config) []option.RequestOption {
	var tags []option.RequestOption
	if len(messages) > 0 && messages[0].SessionID != "" {
		tags = append(tags, option.WithHeader("X-Session-ID", messages[0].SessionID))
	}
	if cfg.Name != "" {
		tags = append(tags, option.WithHeader("X-Completion-Config", cfg.Name))
	}
	return tags
}

// toOpenAIMessages converts domain messages to the SDK union type.
func toOpenAIMessages(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case core.RoleSystem:
			out[i] = openai.SystemMessage(m.Content)
		case core.RoleAssistant:
			out[i] = openai.AssistantMessage(m.Content)
		default:
			out[i] = openai.UserMessage(m.Content)
		}
	}
	return out
}

// openaiChunkStream adapts the SDK's SSE stream to ChunkStream, skipping
// empty deltas and payloads without choices.
type openaiChunkStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	text   string
}

func (s *openaiChunkStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			s.text = delta
			return true
		}
	}
	return false
}

func (s *openaiChunkStream) Text() string {
	return s.text
}

func (s *openaiChunkStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

func (s *openaiChunkStream) Close() error {
	return s.stream.Close()
}
