package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/session"
)

type practiceEntry struct {
	session  *session.PracticeSession
	lastUsed time.Time
}

// practiceSessions keeps the practice sessions opened over HTTP, keyed by a
// random id. Sessions idle for longer than idleTTL are closed on the next open.
type practiceSessions struct {
	ctx     context.Context
	repo    session.EntryRepository
	idleTTL time.Duration
	gauge   prometheus.Gauge
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*practiceEntry
}

func newPracticeSessions(ctx context.Context, repo session.EntryRepository, idleTTL time.Duration, gauge prometheus.Gauge) *practiceSessions {
	return &practiceSessions{
		ctx:      ctx,
		repo:     repo,
		idleTTL:  idleTTL,
		gauge:    gauge,
		now:      time.Now,
		sessions: make(map[string]*practiceEntry),
	}
}

func (p *practiceSessions) open(entryID string) (string, *session.PracticeSession) {
	s := session.NewPracticeSession(p.ctx, p.repo)
	s.LoadEntry(entryID)

	id := uuid.NewString()
	p.mu.Lock()
	idle := p.takeIdleLocked()
	p.sessions[id] = &practiceEntry{session: s, lastUsed: p.now()}
	p.gauge.Set(float64(len(p.sessions)))
	p.mu.Unlock()

	// Close waits for in-flight repository calls, so it runs without p.mu.
	for _, e := range idle {
		e.session.Close()
	}
	return id, s
}

func (p *practiceSessions) get(id string) (*session.PracticeSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = p.now()
	return e.session, true
}

func (p *practiceSessions) close(id string) bool {
	p.mu.Lock()
	e, ok := p.sessions[id]
	delete(p.sessions, id)
	p.gauge.Set(float64(len(p.sessions)))
	p.mu.Unlock()

	if ok {
		e.session.Close()
	}
	return ok
}

func (p *practiceSessions) closeAll() {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[string]*practiceEntry)
	p.gauge.Set(0)
	p.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}

// takeIdleLocked removes the sessions idle for longer than idleTTL and returns them unclosed.
func (p *practiceSessions) takeIdleLocked() []*practiceEntry {
	cutoff := p.now().Add(-p.idleTTL)
	var idle []*practiceEntry
	for id, e := range p.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(p.sessions, id)
			idle = append(idle, e)
		}
	}
	return idle
}

type practiceResponse struct {
	SessionID string                 `json:"sessionId"`
	Status    string                 `json:"status"`
	State     *session.PracticeState `json:"state,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

func newPracticeResponse(id string, s *session.PracticeSession) practiceResponse {
	resp := practiceResponse{SessionID: id}
	switch state := s.State().Get().(type) {
	case session.PracticeLoading:
		resp.Status = "loading"
	case session.PracticeSuccess:
		resp.Status = "success"
		resp.State = &state.State
	case session.PracticeError:
		resp.Status = "error"
		resp.Error = state.Message
	}
	return resp
}

type startPracticeRequest struct {
	EntryID string `json:"entryId" binding:"required"`
}

func (h *Handler) startPractice(c *gin.Context) {
	var req startPracticeRequest
	if !bindJSON(c, &req) {
		return
	}
	id, s := h.practice.open(req.EntryID)
	c.JSON(http.StatusCreated, newPracticeResponse(id, s))
}

func (h *Handler) lookupPractice(c *gin.Context) (string, *session.PracticeSession, bool) {
	id := c.Param("sessionId")
	s, ok := h.practice.get(id)
	if !ok {
		writeError(c, fmt.Errorf("practice session %s: %w", id, apperror.ErrNotFound))
		return "", nil, false
	}
	return id, s, true
}

func (h *Handler) getPractice(c *gin.Context) {
	id, s, ok := h.lookupPractice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newPracticeResponse(id, s))
}

type practiceActionRequest struct {
	Action  string `json:"action" binding:"required"`
	Option  *int   `json:"option"`
	EntryID string `json:"entryId"`
}

func (h *Handler) practiceAction(c *gin.Context) {
	id, s, ok := h.lookupPractice(c)
	if !ok {
		return
	}
	var req practiceActionRequest
	if !bindJSON(c, &req) {
		return
	}

	switch req.Action {
	case "flip":
		s.FlipCard()
	case "next_card":
		s.NextCard()
	case "restart":
		s.RestartPractice()
	case "select":
		if req.Option == nil {
			writeError(c, apperror.NewValidation("option", "An option is required."))
			return
		}
		s.SelectOption(*req.Option)
	case "check":
		s.CheckAnswer()
	case "next_question":
		s.NextQuestion()
	case "load":
		if req.EntryID == "" {
			writeError(c, apperror.NewValidation("entryId", "An entry id is required."))
			return
		}
		s.LoadEntry(req.EntryID)
	default:
		writeError(c, apperror.NewValidation("action", "Unknown practice action %q.", req.Action))
		return
	}
	c.JSON(http.StatusOK, newPracticeResponse(id, s))
}

func (h *Handler) closePractice(c *gin.Context) {
	id := c.Param("sessionId")
	if !h.practice.close(id) {
		writeError(c, fmt.Errorf("practice session %s: %w", id, apperror.ErrNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}
