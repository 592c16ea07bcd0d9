package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/entry"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		httpClient:         resty.New().SetBaseURL(serverURL),
		model:              "gpt-4o-mini",
		visionModel:        "gpt-4o",
		transcriptionModel: "whisper-1",
		maxRetryAttempts:   1,
		limiter:            rate.NewLimiter(rate.Inf, 1),
	}
}

func writeChatResponse(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	mockResponse := ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "gpt-4o-mini",
		Choices: []Choice{
			{
				Index:        0,
				Message:      ChoiceMessage{Role: RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
		Usage: Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	require.NoError(t, json.NewEncoder(w).Encode(mockResponse))
}

func TestClient_GenerateSummary(t *testing.T) {
	tests := []struct {
		name              string
		text              string
		apiKey            string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantHits          int32
		want              string
		wantValidation    bool
		wantErrorString   string
	}{
		{
			name:   "Success",
			text:   "Cells are the basic unit of life.",
			apiKey: "sk-test",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

				var reqBody struct {
					Model    string `json:"model"`
					Messages []struct {
						Role    Role   `json:"role"`
						Content string `json:"content"`
					} `json:"messages"`
					ResponseFormat *ResponseFormat `json:"response_format"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				require.Len(t, reqBody.Messages, 2)
				assert.Equal(t, RoleSystem, reqBody.Messages[0].Role)
				assert.Equal(t, "Cells are the basic unit of life.", reqBody.Messages[1].Content)
				assert.Nil(t, reqBody.ResponseFormat)

				writeChatResponse(t, w, "  Cells are units of life.  ")
			},
			wantHits: 1,
			want:     "Cells are units of life.",
		},
		{
			name:   "Blank API key - no HTTP request",
			text:   "text",
			apiKey: " ",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				t.Error("HTTP request should not be made without an API key")
			},
			wantValidation: true,
		},
		{
			name:   "Blank text - no HTTP request",
			text:   "",
			apiKey: "sk-test",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				t.Error("HTTP request should not be made for blank text")
			},
			wantValidation: true,
		},
		{
			name:   "HTTP 500 error is retried",
			text:   "text",
			apiKey: "sk-test",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error": {"message": "Internal server error"}}`))
			},
			wantHits:        2,
			wantErrorString: "response error 500",
		},
		{
			name:   "HTTP 401 error is not retried",
			text:   "text",
			apiKey: "sk-bad",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided"}}`))
			},
			wantHits:        1,
			wantErrorString: "Incorrect API key provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			got, err := newTestClient(server.URL).GenerateSummary(context.Background(), tt.text, tt.apiKey)
			assert.Equal(t, tt.wantHits, hits.Load())

			if tt.wantValidation {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
				return
			}
			if tt.wantErrorString != "" {
				require.Error(t, err)
				assert.True(t, apperror.IsRemote(err))
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_GenerateFlashcards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		require.NotNil(t, reqBody.ResponseFormat)
		assert.Equal(t, "json_object", reqBody.ResponseFormat.Type)

		writeChatResponse(t, w, "```json\n{\"flashcards\":[{\"front\":\"Capital of France\",\"back\":\"Paris\"}]}\n```")
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).GenerateFlashcards(context.Background(), "Paris is the capital of France.", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, []entry.Flashcard{{Front: "Capital of France", Back: "Paris"}}, got)
}

func TestClient_GenerateMcqs(t *testing.T) {
	tests := []struct {
		name            string
		responses       []string
		want            []entry.MultipleChoiceQuestion
		wantErrorString string
	}{
		{
			name:      "Success",
			responses: []string{`{"questions":[{"questionText":"2+2?","options":["1","2","3","4"],"correctOptionIndex":3}]}`},
			want: []entry.MultipleChoiceQuestion{
				{QuestionText: "2+2?", Options: []string{"1", "2", "3", "4"}, CorrectOptionIndex: 3},
			},
		},
		{
			name: "Invalid JSON is retried",
			responses: []string{
				`{"questions": [`,
				`{"questions":[{"questionText":"2+2?","options":["1","2","3","4"],"correctOptionIndex":3}]}`,
			},
			want: []entry.MultipleChoiceQuestion{
				{QuestionText: "2+2?", Options: []string{"1", "2", "3", "4"}, CorrectOptionIndex: 3},
			},
		},
		{
			name:            "Schema violation is not retried",
			responses:       []string{`{"questions":[{"questionText":"2+2?","options":["1","2"],"correctOptionIndex":1}]}`},
			wantErrorString: "options must contain 4 items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(hits.Add(1)) - 1
				require.Less(t, n, len(tt.responses), "unexpected extra request")
				writeChatResponse(t, w, tt.responses[n])
			}))
			defer server.Close()

			got, err := newTestClient(server.URL).GenerateMcqs(context.Background(), "Arithmetic.", "sk-test")
			assert.Equal(t, int32(len(tt.responses)), hits.Load())
			if tt.wantErrorString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_GetTextFromImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []ContentPart `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o", reqBody.Model)
		require.Len(t, reqBody.Messages, 1)
		require.Len(t, reqBody.Messages[0].Content, 2)
		assert.Equal(t, "image_url", reqBody.Messages[0].Content[1].Type)
		assert.True(t, strings.HasPrefix(reqBody.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,"))

		writeChatResponse(t, w, "Text on the whiteboard")
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).GetTextFromImage(context.Background(), png, "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "Text on the whiteboard", got)
}

func TestClient_TranscribeAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "audio.m4a", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-audio", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" spoken words "}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).TranscribeAudio(context.Background(), []byte("fake-audio"), "audio/mp4", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "spoken words", got)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  string
		want bool
	}{
		{name: "server error", err: "response error 503: unavailable", want: true},
		{name: "rate limited", err: "response error 429: slow down", want: true},
		{name: "truncated JSON", err: "json.Unmarshal({) > unexpected end of JSON input", want: true},
		{name: "unauthorized", err: "response error 401: bad key", want: false},
		{name: "schema violation", err: "invalid questions > options must contain 4 items", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(assertError(tt.err)))
		})
	}
	assert.False(t, isRetryableError(nil))
}

type assertError string

func (e assertError) Error() string { return string(e) }
