package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ncheta/ncheta/internal/session"
	"github.com/ncheta/ncheta/internal/subscription"
)

type paywallResponse struct {
	Offerings []subscription.Offering `json:"offerings"`
	IsPremium bool                    `json:"isPremium"`
}

func (h *Handler) runPaywall(c *gin.Context, fn func(s *session.PaywallSession)) {
	s := session.NewPaywallSession(c.Request.Context(), h.deps.Paywall)
	defer s.Close()

	fn(s)
	switch state := s.State().Get().(type) {
	case session.PaywallReady:
		offerings := state.Offerings
		if offerings == nil {
			offerings = []subscription.Offering{}
		}
		c.JSON(http.StatusOK, paywallResponse{Offerings: offerings, IsPremium: state.IsPremium})
	case session.PaywallError:
		writeSessionError(c, http.StatusUnprocessableEntity, state.Message)
	default:
		c.Status(http.StatusAccepted)
	}
}

func (h *Handler) getPaywall(c *gin.Context) {
	h.runPaywall(c, func(s *session.PaywallSession) { s.LoadOfferings() })
}

type purchaseRequest struct {
	Package      subscription.Package `json:"package"`
	ReceiptToken string               `json:"receiptToken"`
}

func (h *Handler) purchase(c *gin.Context) {
	var req purchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	h.runPaywall(c, func(s *session.PaywallSession) { s.Purchase(req.Package, req.ReceiptToken) })
}

type restoreRequest struct {
	ReceiptToken string `json:"receiptToken"`
}

func (h *Handler) restore(c *gin.Context) {
	var req restoreRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	h.runPaywall(c, func(s *session.PaywallSession) { s.Restore(req.ReceiptToken) })
}
