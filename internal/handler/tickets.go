package handler

import (
	"net/http"
	"strconv"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/apierror"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/service"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/worker"

	"github.com/gin-gonic/gin"
)

type TicketsHandler struct {
	svc service.TicketService
	dlq *worker.DLQ
}

func NewTicketsHandler(svc service.TicketService, dlq *worker.DLQ) *TicketsHandler {
	return &TicketsHandler{svc: svc, dlq: dlq}
}

// Send godoc
// @Summary Issue fresh QR tokens and enqueue ticket emails
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body dto.SendTicketsRequest true "Participant unique IDs"
// @Success 202 {object} dto.SendTicketsResponse
// @Router /v1/tickets/send [post]
func (h *TicketsHandler) Send(c *gin.Context) {
	var req dto.SendTicketsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.SendTickets(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to enqueue ticket emails"))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// DLQStatus reports how many ticket email jobs failed terminally.
func (h *TicketsHandler) DLQStatus(c *gin.Context) {
	n, err := h.dlq.Length(c.Request.Context(), worker.QueueTicketEmail)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to read dead letter queue"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"dead": n})
}

// DLQReplay re-enqueues dead ticket email jobs after the underlying fault
// (usually SMTP) has been fixed.
func (h *TicketsHandler) DLQReplay(c *gin.Context) {
	max := 100
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, apierror.New("max must be between 1 and 1000"))
			return
		}
		max = n
	}

	replayed, err := h.dlq.Replay(c.Request.Context(), worker.QueueTicketEmail, max)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to replay dead letter queue"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"replayed": replayed})
}
