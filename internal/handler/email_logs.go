package handler

import (
	"net/http"
	"strconv"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/apierror"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/repository"

	"github.com/gin-gonic/gin"
)

// EmailLogsHandler reads the delivery audit trail written by the ticket
// email worker. Thin enough that it talks to the repository directly.
type EmailLogsHandler struct{ repo repository.EmailLogRepository }

func NewEmailLogsHandler(repo repository.EmailLogRepository) *EmailLogsHandler {
	return &EmailLogsHandler{repo: repo}
}

// List godoc
// @Summary List email delivery logs, newest first
// @Tags email-logs
// @Produce json
// @Param status query string false "Filter by status (success|error)"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} dto.EmailLogResponse
// @Router /v1/email-logs [get]
func (h *EmailLogsHandler) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != model.EmailStatusSuccess && status != model.EmailStatusError {
		c.JSON(http.StatusBadRequest, apierror.New("status must be success or error"))
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, apierror.New("limit must be between 1 and 1000"))
			return
		}
		limit = n
	}

	logs, err := h.repo.List(c.Request.Context(), status, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list email logs"))
		return
	}

	resp := make([]dto.EmailLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = dto.EmailLogResponse{
			ID:                  l.ID,
			ParticipantUniqueID: l.ParticipantUniqueID,
			Email:               l.Email,
			Status:              l.Status,
			ErrorMessage:        l.ErrorMessage,
			SentAt:              l.SentAt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EmailLogsHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid log ID"))
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), uint(id))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to delete email log"))
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, apierror.New("Email log not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *EmailLogsHandler) DeleteAll(c *gin.Context) {
	if c.Query("all") != "true" {
		c.JSON(http.StatusBadRequest, apierror.New("Pass all=true to delete every email log"))
		return
	}
	if err := h.repo.DeleteAll(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to delete email logs"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
