package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ncheta/ncheta/internal/session"
)

type settingsResponse struct {
	APIKeySet           bool `json:"apiKeySet"`
	OnboardingCompleted bool `json:"onboardingCompleted"`
}

func (h *Handler) writeSettings(c *gin.Context, s *session.SettingsSession) {
	if state, ok := s.State().Get().(session.SettingsError); ok {
		writeSessionError(c, http.StatusUnprocessableEntity, state.Message)
		return
	}
	c.JSON(http.StatusOK, settingsResponse{
		APIKeySet:           s.APIKey().Get() != "",
		OnboardingCompleted: s.OnboardingCompleted().Get(),
	})
}

func (h *Handler) getSettings(c *gin.Context) {
	h.writeSettings(c, session.NewSettingsSession(h.deps.Settings))
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

func (h *Handler) saveAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if !bindJSON(c, &req) {
		return
	}
	s := session.NewSettingsSession(h.deps.Settings)
	s.SaveAPIKey(req.APIKey)
	h.writeSettings(c, s)
}

func (h *Handler) clearAPIKey(c *gin.Context) {
	s := session.NewSettingsSession(h.deps.Settings)
	s.ClearAPIKey()
	h.writeSettings(c, s)
}

func (h *Handler) completeOnboarding(c *gin.Context) {
	s := session.NewSettingsSession(h.deps.Settings)
	s.CompleteOnboarding()
	h.writeSettings(c, s)
}
