package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ncheta/ncheta/internal/auth"
	"github.com/ncheta/ncheta/internal/datasync"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/export"
	mock_generation "github.com/ncheta/ncheta/internal/mocks/generation"
	"github.com/ncheta/ncheta/internal/repository"
	"github.com/ncheta/ncheta/internal/session"
	"github.com/ncheta/ncheta/internal/settings"
	"github.com/ncheta/ncheta/internal/store"
	"github.com/ncheta/ncheta/internal/subscription"
	"github.com/ncheta/ncheta/internal/testutil"
)

type testEnv struct {
	router     *gin.Engine
	store      *store.SQLiteStore
	generation *mock_generation.MockClient
	settings   *settings.FileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	db := testutil.OpenTestDB(t)
	local, err := store.NewSQLiteStore(ctx, db)
	require.NoError(t, err)

	authService, err := auth.NewService(ctx,
		auth.NewUserRepository(db),
		auth.NewTokenIssuer([]byte("test-secret"), time.Hour),
		auth.Options{BcryptCost: bcrypt.MinCost},
	)
	require.NoError(t, err)

	settingsStore, err := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.yml"))
	require.NoError(t, err)

	repo := repository.New(local, nil, authService)
	manager := subscription.NewManager(nil, authService, "premium")
	generationClient := mock_generation.NewMockClient(gomock.NewController(t))

	handler := NewHandler(ctx, Dependencies{
		Repository:      repo,
		Generation:      generationClient,
		Settings:        settingsStore,
		Auth:            authService,
		Paywall:         manager,
		Premium:         manager,
		Exporter:        export.NewWriter(repo, "", t.TempDir()),
		Backup:          datasync.NewExporter(local),
		BackupDirectory: t.TempDir(),
		AllowedOrigins:  []string{"http://localhost:3000"},
	})
	t.Cleanup(func() {
		handler.Close()
		cancel()
	})

	return &testEnv{
		router:     handler.Router(),
		store:      local,
		generation: generationClient,
		settings:   settingsStore,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, path, fileName string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_Routes(t *testing.T) {
	env := newTestEnv(t)

	expected := []struct {
		method string
		path   string
	}{
		{"GET", "/healthz"},
		{"GET", "/metrics"},
		{"GET", "/v1/entries"},
		{"GET", "/v1/entries/:id"},
		{"DELETE", "/v1/entries/:id"},
		{"POST", "/v1/entries/:id/export"},
		{"POST", "/v1/sync"},
		{"POST", "/v1/backup"},
		{"POST", "/v1/generate"},
		{"POST", "/v1/input/document"},
		{"POST", "/v1/input/image"},
		{"POST", "/v1/input/audio"},
		{"POST", "/v1/practice"},
		{"POST", "/v1/practice/:sessionId/actions"},
		{"POST", "/v1/auth/signin"},
		{"PUT", "/v1/settings/api-key"},
		{"GET", "/v1/paywall"},
	}

	routes := env.router.Routes()
	for _, want := range expected {
		found := false
		for _, r := range routes {
			if r.Method == want.method && r.Path == want.path {
				found = true
				break
			}
		}
		assert.True(t, found, "route %s %s not registered", want.method, want.path)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ncheta_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestRouter_CORS(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/entries", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerateAndPractice(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.settings.SetAPIKey("sk-test"))

	cards := []entry.Flashcard{{Front: "Q1", Back: "A1"}, {Front: "Q2", Back: "A2"}}
	env.generation.EXPECT().GenerateFlashcards(gomock.Any(), "Cells have a nucleus.", "sk-test").Return(cards, nil)

	w := env.do(t, http.MethodPost, "/v1/generate", generateRequest{
		Text:  "Cells have a nucleus.",
		Title: "Cells",
		Kind:  "FLASHCARDS",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	generated := decode[struct {
		Entry struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"entry"`
		Synced bool `json:"synced"`
	}](t, w)
	assert.Equal(t, "Cells", generated.Entry.Title)
	assert.False(t, generated.Synced)
	id := generated.Entry.ID

	require.Eventually(t, func() bool {
		list := decode[struct {
			Entries []session.EntryListItem `json:"entries"`
		}](t, env.do(t, http.MethodGet, "/v1/entries", nil))
		return len(list.Entries) == 1 && list.Entries[0].ID == id && list.Entries[0].ItemCount == 2
	}, time.Second, 10*time.Millisecond)

	w = env.do(t, http.MethodGet, "/v1/entries/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/practice", startPracticeRequest{EntryID: id})
	require.Equal(t, http.StatusCreated, w.Code)
	started := decode[practiceResponse](t, w)
	require.Equal(t, "success", started.Status)
	path := "/v1/practice/" + started.SessionID

	steps := []struct {
		action string
		check  func(t *testing.T, state session.PracticeState)
	}{
		{"flip", func(t *testing.T, state session.PracticeState) { assert.True(t, state.IsCardFlipped) }},
		{"next_card", func(t *testing.T, state session.PracticeState) {
			assert.Equal(t, 1, state.CurrentCardIndex)
			assert.False(t, state.IsCardFlipped)
		}},
		{"next_card", func(t *testing.T, state session.PracticeState) { assert.True(t, state.IsPracticeComplete) }},
		{"restart", func(t *testing.T, state session.PracticeState) {
			assert.Equal(t, 0, state.CurrentCardIndex)
			assert.False(t, state.IsPracticeComplete)
		}},
	}
	for _, step := range steps {
		w := env.do(t, http.MethodPost, path+"/actions", practiceActionRequest{Action: step.action})
		require.Equal(t, http.StatusOK, w.Code, step.action)
		resp := decode[practiceResponse](t, w)
		require.NotNil(t, resp.State, step.action)
		step.check(t, *resp.State)
	}

	stored, err := env.store.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotNil(t, stored.LastPracticedAt)

	w = env.do(t, http.MethodPost, path+"/actions", practiceActionRequest{Action: "jump"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/v1/entries/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/v1/entries/"+id, nil).Code)
}

func TestGenerate_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		req    any

		wantStatus int
		wantError  string
	}{
		{
			name:       "missing api key",
			req:        generateRequest{Text: "text", Title: "title", Kind: "SUMMARY"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Please add your API key in Settings.",
		},
		{
			name:       "blank text",
			apiKey:     "sk-test",
			req:        generateRequest{Text: "  ", Title: "title", Kind: "SUMMARY"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Input text cannot be empty.",
		},
		{
			name:       "unknown kind",
			apiKey:     "sk-test",
			req:        generateRequest{Text: "text", Title: "title", Kind: "ESSAY"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing kind",
			req:        map[string]string{"text": "text"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.apiKey != "" {
				require.NoError(t, env.settings.SetAPIKey(tt.apiKey))
			}

			w := env.do(t, http.MethodPost, "/v1/generate", tt.req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[errorResponse](t, w).Error)
			}
		})
	}
}

func TestInput_LoadDocument(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/v1/input/document", "notes.txt", []byte("  Mitochondria make ATP.\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, inputResponse{Text: "Mitochondria make ATP.", Source: entry.InputSourceDocument}, decode[inputResponse](t, w))

	w = env.upload(t, "/v1/input/document", "dir/scan.pdf", []byte{0xff, 0xfe, 0x00})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "scan.pdf is not a text document.", decode[errorResponse](t, w).Error)

	w = env.do(t, http.MethodPost, "/v1/input/document", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInput_ExtractTextFromImage(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.settings.SetAPIKey("sk-test"))
	env.generation.EXPECT().GetTextFromImage(gomock.Any(), []byte("png"), "sk-test").Return("Recognised text", nil)

	w := env.upload(t, "/v1/input/image", "page.png", []byte("png"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, inputResponse{Text: "Recognised text", Source: entry.InputSourceImage}, decode[inputResponse](t, w))
}

func TestEntries_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/entries/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/v1/entries/missing/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/v1/practice", startPracticeRequest{EntryID: "missing"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[practiceResponse](t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Entry not found.", resp.Error)
}

func TestEntries_ExportAndBackup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Upsert(ctx, testutil.McqEntry("q1", 1, 0, 2)))
	require.NoError(t, env.store.Upsert(ctx, testutil.SummaryEntry("s1", 2)))

	w := env.do(t, http.MethodPost, "/v1/entries/q1/export", exportRequest{Formats: []string{"md", "xlsx"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paths := decode[struct {
		Paths []string `json:"paths"`
	}](t, w).Paths
	require.Len(t, paths, 2)
	assert.True(t, strings.HasSuffix(paths[0], ".md"))
	assert.True(t, strings.HasSuffix(paths[1], ".xlsx"))

	w = env.do(t, http.MethodPost, "/v1/entries/s1/export", exportRequest{Formats: []string{"xlsx"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/entries/s1/export", exportRequest{Formats: []string{"docx"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/backup", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	backup, err := datasync.ReadFile(decode[struct {
		Path string `json:"path"`
	}](t, w).Path)
	require.NoError(t, err)
	assert.Len(t, backup.Entries, 2)
}

func TestSync_SkippedForFreeUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, syncResponse{Status: repository.SyncSkipped}, decode[syncResponse](t, w))
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)
	creds := credentialsRequest{Email: "ada@example.com", Password: "secret123"}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/auth/me", nil).Code)

	w := env.do(t, http.MethodPost, "/v1/auth/signup", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ada@example.com", decode[auth.User](t, w).Email)

	w = env.do(t, http.MethodGet, "/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", decode[auth.User](t, w).Email)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/v1/auth/signout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/auth/me", nil).Code)

	w = env.do(t, http.MethodPost, "/v1/auth/signin", credentialsRequest{Email: creds.Email, Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/signin", creds)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, settingsResponse{}, decode[settingsResponse](t, w))

	w = env.do(t, http.MethodPut, "/v1/settings/api-key", apiKeyRequest{APIKey: " "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "API key cannot be empty.", decode[errorResponse](t, w).Error)

	w = env.do(t, http.MethodPut, "/v1/settings/api-key", apiKeyRequest{APIKey: "sk-new"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, settingsResponse{APIKeySet: true}, decode[settingsResponse](t, w))
	assert.Equal(t, "sk-new", env.settings.APIKey().Get())

	w = env.do(t, http.MethodPost, "/v1/settings/onboarding", nil)
	assert.Equal(t, settingsResponse{APIKeySet: true, OnboardingCompleted: true}, decode[settingsResponse](t, w))

	w = env.do(t, http.MethodDelete, "/v1/settings/api-key", nil)
	assert.Equal(t, settingsResponse{OnboardingCompleted: true}, decode[settingsResponse](t, w))
}

func TestPaywall_WithoutProvider(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/paywall", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, paywallResponse{Offerings: []subscription.Offering{}}, decode[paywallResponse](t, w))

	w = env.do(t, http.MethodPost, "/v1/paywall/purchase", purchaseRequest{
		Package:      subscription.Package{Identifier: "$rc_monthly", ProductID: "premium_monthly"},
		ReceiptToken: "token",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Purchases are not available.", decode[errorResponse](t, w).Error)

	w = env.do(t, http.MethodPost, "/v1/paywall/restore", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
