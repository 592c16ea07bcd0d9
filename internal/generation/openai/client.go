// Package openai implements generation.Client over the OpenAI HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/generation"
)

type Client struct {
	httpClient         *resty.Client
	model              string
	visionModel        string
	transcriptionModel string
	maxRetryAttempts   uint
	limiter            *rate.Limiter
}

var _ generation.Client = (*Client)(nil)

type Config struct {
	BaseURL            string
	Model              string
	VisionModel        string
	TranscriptionModel string
	MaxRetryAttempts   uint
	// RequestsPerMinute caps outgoing requests; zero disables the limit.
	RequestsPerMinute int
}

func NewClient(cfg Config) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(2 * time.Minute)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		httpClient:         client,
		model:              cfg.Model,
		visionModel:        cfg.VisionModel,
		transcriptionModel: cfg.TranscriptionModel,
		maxRetryAttempts:   cfg.MaxRetryAttempts,
		limiter:            limiter,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

// Message content is either a string or a list of ContentPart.
type Message struct {
	Role    Role `json:"role"`
	Content any  `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type TranscriptionResponse struct {
	Text string `json:"text"`
}

const (
	summaryPrompt = `You write study summaries. Summarize the text the user provides in clear, concise prose a student can review quickly. Keep every key fact and definition. Reply with the summary only.`

	flashcardsPrompt = `You write study flashcards. Create flashcards that cover the key facts of the text the user provides.
Reply with a JSON object and nothing else, in exactly this shape:
{"flashcards": [{"front": "question or term", "back": "answer or definition"}]}`

	mcqsPrompt = `You write multiple choice quizzes. Create questions that test understanding of the text the user provides.
Every question has exactly four options and exactly one correct option.
Reply with a JSON object and nothing else, in exactly this shape:
{"questions": [{"questionText": "question", "options": ["A", "B", "C", "D"], "correctOptionIndex": 0}]}
correctOptionIndex is the zero-based index of the correct option.`

	imageTextPrompt = `Extract all readable text from this image. Preserve the reading order and paragraphs. Reply with the extracted text only.`
)

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Retry on JSON parsing errors as they might be due to incomplete responses
	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") || strings.Contains(errStr, "connection reset") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// withRetry runs fn until it succeeds, fails with a non-retryable error or runs out of attempts.
func withRetry[T any](ctx context.Context, client *Client, op string, fn func() (T, error)) (T, error) {
	var result T
	if err := retry.Do(
		func() error {
			if client.limiter != nil {
				if err := client.limiter.Wait(ctx); err != nil {
					return retry.Unrecoverable(fmt.Errorf("limiter.Wait() > %w", err))
				}
			}
			response, err := fn()
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Debug("retrying openai request", "operation", op, "error", err)
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		var zero T
		return zero, apperror.NewRemote(op, err)
	}
	return result, nil
}

func requireInput(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.NewValidation(field, "%s cannot be empty.", field)
	}
	return nil
}

func requireAPIKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return apperror.NewValidation("apiKey", "An API key is required. Add your OpenAI API key in Settings.")
	}
	return nil
}

func (client *Client) chat(ctx context.Context, apiKey string, body ChatCompletionRequest) (string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("empty response body or choices: %s", response.String())
	}
	content := responseBody.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"model", body.Model,
		"usage", responseBody.Usage,
	)
	return content, nil
}

func (client *Client) textRequest(systemPrompt, text string, jsonResponse bool) ChatCompletionRequest {
	body := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.3,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: text},
		},
	}
	if jsonResponse {
		body.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	return body
}

func (client *Client) GenerateSummary(ctx context.Context, text, apiKey string) (string, error) {
	if err := requireInput("Input text", text); err != nil {
		return "", err
	}
	if err := requireAPIKey(apiKey); err != nil {
		return "", err
	}

	body := client.textRequest(summaryPrompt, text, false)
	return withRetry(ctx, client, "generate summary", func() (string, error) {
		content, err := client.chat(ctx, apiKey, body)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(content), nil
	})
}

func (client *Client) GenerateFlashcards(ctx context.Context, text, apiKey string) ([]entry.Flashcard, error) {
	if err := requireInput("Input text", text); err != nil {
		return nil, err
	}
	if err := requireAPIKey(apiKey); err != nil {
		return nil, err
	}

	body := client.textRequest(flashcardsPrompt, text, true)
	return withRetry(ctx, client, "generate flashcards", func() ([]entry.Flashcard, error) {
		content, err := client.chat(ctx, apiKey, body)
		if err != nil {
			return nil, err
		}
		cards, err := generation.ParseFlashcards(content)
		if err != nil {
			slog.Default().Error("Failed to parse OpenAI flashcards response", "error", err)
			return nil, err
		}
		return cards, nil
	})
}

func (client *Client) GenerateMcqs(ctx context.Context, text, apiKey string) ([]entry.MultipleChoiceQuestion, error) {
	if err := requireInput("Input text", text); err != nil {
		return nil, err
	}
	if err := requireAPIKey(apiKey); err != nil {
		return nil, err
	}

	body := client.textRequest(mcqsPrompt, text, true)
	return withRetry(ctx, client, "generate questions", func() ([]entry.MultipleChoiceQuestion, error) {
		content, err := client.chat(ctx, apiKey, body)
		if err != nil {
			return nil, err
		}
		questions, err := generation.ParseMcqs(content)
		if err != nil {
			slog.Default().Error("Failed to parse OpenAI questions response", "error", err)
			return nil, err
		}
		return questions, nil
	})
}

func (client *Client) GetTextFromImage(ctx context.Context, image []byte, apiKey string) (string, error) {
	if len(image) == 0 {
		return "", apperror.NewValidation("image", "Image cannot be empty.")
	}
	if err := requireAPIKey(apiKey); err != nil {
		return "", err
	}

	dataURL := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
	body := ChatCompletionRequest{
		Model: client.visionModel,
		Messages: []Message{
			{
				Role: RoleUser,
				Content: []ContentPart{
					{Type: "text", Text: imageTextPrompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
				},
			},
		},
	}
	return withRetry(ctx, client, "extract text from image", func() (string, error) {
		content, err := client.chat(ctx, apiKey, body)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(content), nil
	})
}

func (client *Client) TranscribeAudio(ctx context.Context, audio []byte, mimeType, apiKey string) (string, error) {
	if len(audio) == 0 {
		return "", apperror.NewValidation("audio", "Audio cannot be empty.")
	}
	if err := requireAPIKey(apiKey); err != nil {
		return "", err
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(audio)
	}

	return withRetry(ctx, client, "transcribe audio", func() (string, error) {
		response, err := client.httpClient.R().
			SetContext(ctx).
			SetAuthToken(apiKey).
			SetMultipartField("file", "audio"+audioExtension(mimeType), mimeType, bytes.NewReader(audio)).
			SetMultipartFormData(map[string]string{"model": client.transcriptionModel}).
			SetResult(&TranscriptionResponse{}).
			Post("/audio/transcriptions")
		if err != nil {
			return "", fmt.Errorf("httpClient.Post > %w", err)
		}
		if response.IsError() {
			return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
		}
		transcript := strings.TrimSpace(response.Result().(*TranscriptionResponse).Text)
		if transcript == "" {
			return "", fmt.Errorf("empty transcription: %s", response.String())
		}
		return transcript, nil
	})
}

func audioExtension(mimeType string) string {
	switch strings.SplitN(mimeType, ";", 2)[0] {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	case "audio/flac":
		return ".flac"
	}
	return ".mp3"
}
