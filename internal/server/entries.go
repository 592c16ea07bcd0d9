package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/export"
	"github.com/ncheta/ncheta/internal/repository"
	"github.com/ncheta/ncheta/internal/session"
)

func (h *Handler) listEntries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.entries.Entries().Get()})
}

func (h *Handler) getEntry(c *gin.Context) {
	id := c.Param("id")
	e, err := h.deps.Repository.GetEntryByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if e == nil {
		writeError(c, fmt.Errorf("entry %s: %w", id, apperror.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) deleteEntry(c *gin.Context) {
	list := session.NewEntryListSession(c.Request.Context(), h.deps.Repository, h.deps.Premium)
	defer list.Close()

	list.Delete(c.Param("id"))
	if message := list.Message().Get(); message != "" {
		writeSessionError(c, http.StatusUnprocessableEntity, message)
		return
	}
	c.Status(http.StatusNoContent)
}

type syncResponse struct {
	Status  repository.SyncStatus `json:"status"`
	Message string                `json:"message,omitempty"`
}

func (h *Handler) syncEntries(c *gin.Context) {
	list := session.NewEntryListSession(c.Request.Context(), h.deps.Repository, h.deps.Premium)
	defer list.Close()

	status := list.Sync()
	h.metrics.SyncsTotal.WithLabelValues(string(status)).Inc()
	c.JSON(http.StatusOK, syncResponse{Status: status, Message: list.Message().Get()})
}

type exportRequest struct {
	Formats []string `json:"formats"`
}

func (h *Handler) exportEntry(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	formats := make([]export.Format, 0, len(req.Formats))
	for _, s := range req.Formats {
		format, err := export.ParseFormat(s)
		if err != nil {
			writeError(c, err)
			return
		}
		formats = append(formats, format)
	}

	paths, err := h.deps.Exporter.Export(c.Request.Context(), c.Param("id"), formats...)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

func (h *Handler) writeBackup(c *gin.Context) {
	path, err := h.deps.Backup.WriteFile(c.Request.Context(), h.deps.BackupDirectory)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}
