package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/apierror"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/service"

	"github.com/gin-gonic/gin"
)

const checkinTimeout = 5 * time.Second

type CheckinHandler struct{ svc service.CheckinService }

func NewCheckinHandler(svc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{svc: svc}
}

// CheckIn godoc
// @Summary Check a participant in via QR scan or manual code entry
// @Tags checkin
// @Accept json
// @Produce json
// @Param body body dto.CheckinRequest true "Credential and type"
// @Success 200 {object} dto.CheckinResponse
// @Failure 400 {object} dto.CheckinResponse
// @Failure 404 {object} dto.CheckinResponse
// @Failure 409 {object} dto.CheckinResponse
// @Router /api/checkin [post]
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CheckinResponse{
			Kind:    string(service.OutcomeInvalidRequest),
			Message: "Credential and a valid type (qrcode or code) are required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), checkinTimeout)
	defer cancel()

	res, err := h.svc.CheckIn(ctx, req)
	if err != nil {
		// Unexpected store fault. The scanner gets a generic message, the
		// real cause goes to the error handler log.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}

	c.JSON(statusForOutcome(res.Outcome), dto.CheckinResponse{
		OK:              res.OK(),
		Kind:            failureKind(res.Outcome),
		Message:         res.Message,
		InvalidQR:       res.Outcome == service.OutcomeInvalidCredential,
		ParticipantName: res.ParticipantName,
		ParticipantID:   res.ParticipantID,
	})
}

func statusForOutcome(outcome service.CheckinOutcome) int {
	switch outcome {
	case service.OutcomeSuccess:
		return http.StatusOK
	case service.OutcomeInvalidRequest, service.OutcomeInvalidCredential:
		return http.StatusBadRequest
	case service.OutcomeNotFound:
		return http.StatusNotFound
	case service.OutcomeAlreadyCheckedIn:
		return http.StatusConflict
	case service.OutcomePersistenceFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func failureKind(outcome service.CheckinOutcome) string {
	if outcome == service.OutcomeSuccess {
		return ""
	}
	return string(outcome)
}
