package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/session"
)

const maxUploadBytes = 25 << 20

func (h *Handler) newInputSession(c *gin.Context) *session.InputSession {
	return session.NewInputSession(c.Request.Context(), h.deps.Generation, h.deps.Repository, h.deps.APIKey, h.deps.Premium)
}

type inputResponse struct {
	Text   string                `json:"text"`
	Source entry.InputSourceType `json:"source"`
}

// readUpload returns the "file" part of a multipart request.
func readUpload(c *gin.Context) (string, []byte, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, "", apperror.NewValidation("file", "A file is required.")
	}
	if header.Size > maxUploadBytes {
		return "", nil, "", apperror.NewValidation("file", "%s is too large.", header.Filename)
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, "", fmt.Errorf("header.Open() > %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, "", fmt.Errorf("io.ReadAll(%s) > %w", header.Filename, err)
	}
	return header.Filename, data, header.Header.Get("Content-Type"), nil
}

func (h *Handler) respondInput(c *gin.Context, input *session.InputSession) {
	if state, ok := input.State().Get().(session.InputError); ok {
		writeSessionError(c, http.StatusUnprocessableEntity, state.Message)
		return
	}
	c.JSON(http.StatusOK, inputResponse{
		Text:   input.InputText().Get(),
		Source: input.InputSource().Get(),
	})
}

func (h *Handler) loadDocument(c *gin.Context) {
	name, data, _, err := readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	input := h.newInputSession(c)
	defer input.Close()

	input.LoadDocument(name, data)
	h.respondInput(c, input)
}

func (h *Handler) extractTextFromImage(c *gin.Context) {
	_, data, _, err := readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	input := h.newInputSession(c)
	defer input.Close()

	input.ExtractTextFromImage(data)
	h.respondInput(c, input)
}

func (h *Handler) transcribeAudio(c *gin.Context) {
	_, data, mimeType, err := readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	input := h.newInputSession(c)
	defer input.Close()

	input.TranscribeAudio(data, mimeType)
	h.respondInput(c, input)
}

type generateRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	Kind  string `json:"kind" binding:"required"`
}

type generateResponse struct {
	Entry       entry.Entry `json:"entry"`
	Synced      bool        `json:"synced"`
	SyncWarning string      `json:"syncWarning,omitempty"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}
	kind, err := entry.ParseContentKind(req.Kind)
	if err != nil {
		writeError(c, apperror.NewValidation("kind", "%s", err.Error()))
		return
	}

	input := h.newInputSession(c)
	defer input.Close()

	input.SetInputText(req.Text)
	input.Generate(kind, req.Title)

	label := strings.ToLower(string(kind))
	switch state := input.State().Get().(type) {
	case session.InputSaved:
		h.metrics.GenerationsTotal.WithLabelValues(label, "saved").Inc()
		c.JSON(http.StatusCreated, generateResponse{
			Entry:       state.Entry,
			Synced:      state.Synced,
			SyncWarning: state.SyncWarning,
		})
	case session.InputError:
		h.metrics.GenerationsTotal.WithLabelValues(label, "error").Inc()
		writeSessionError(c, http.StatusUnprocessableEntity, state.Message)
	default:
		writeError(c, fmt.Errorf("unexpected input state %T", state))
	}
}
