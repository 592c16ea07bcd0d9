package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type idTokenRequest struct {
	IDToken  string `json:"idToken" binding:"required"`
	RawNonce string `json:"rawNonce"`
}

// runAuth runs fn on a request-scoped auth session and writes its final state.
func (h *Handler) runAuth(c *gin.Context, fn func(s *session.AuthSession)) {
	s := session.NewAuthSession(c.Request.Context(), h.deps.Auth)
	defer s.Close()

	fn(s)
	switch state := s.State().Get().(type) {
	case session.AuthSignedIn:
		c.JSON(http.StatusOK, state.User)
	case session.AuthIdle:
		c.Status(http.StatusNoContent)
	case session.AuthError:
		writeSessionError(c, http.StatusUnauthorized, state.Message)
	default:
		c.Status(http.StatusAccepted)
	}
}

func (h *Handler) currentUser(c *gin.Context) {
	user := h.deps.Auth.User().Get()
	if user == nil {
		writeError(c, apperror.ErrNotSignedIn)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) signUp(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.runAuth(c, func(s *session.AuthSession) { s.SignUp(req.Email, req.Password) })
}

func (h *Handler) signIn(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.runAuth(c, func(s *session.AuthSession) { s.SignIn(req.Email, req.Password) })
}

func (h *Handler) signInWithGoogle(c *gin.Context) {
	var req idTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	h.runAuth(c, func(s *session.AuthSession) { s.SignInWithGoogle(req.IDToken) })
}

func (h *Handler) signInWithApple(c *gin.Context) {
	var req idTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	h.runAuth(c, func(s *session.AuthSession) { s.SignInWithApple(req.IDToken, req.RawNonce) })
}

func (h *Handler) signOut(c *gin.Context) {
	h.runAuth(c, func(s *session.AuthSession) { s.SignOut() })
}
