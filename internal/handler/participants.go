package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/apierror"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/service"

	"github.com/gin-gonic/gin"
)

type ParticipantsHandler struct {
	svc     service.ParticipantService
	tickets service.TicketService
}

func NewParticipantsHandler(svc service.ParticipantService, tickets service.TicketService) *ParticipantsHandler {
	return &ParticipantsHandler{svc: svc, tickets: tickets}
}

// List godoc
// @Summary List all participants with attendance counts
// @Tags participants
// @Produce json
// @Success 200 {object} dto.ParticipantListResponse
// @Router /v1/participants [get]
func (h *ParticipantsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list participants"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ParticipantsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("uniqueID"))
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Participant not found"))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch participant"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Register creates a participant manually from the dashboard, allocating the
// next free unique ID.
func (h *ParticipantsHandler) Register(c *gin.Context) {
	var req dto.RegisterParticipantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		case errors.Is(err, service.ErrIDRangeExhausted):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, apierror.New("Failed to register participant"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ParticipantsHandler) UpdateFlags(c *gin.Context) {
	var req dto.UpdateFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return
	}

	err := h.svc.UpdateFlags(c.Request.Context(), c.Param("uniqueID"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFields):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		case errors.Is(err, service.ErrParticipantNotFound):
			c.JSON(http.StatusNotFound, apierror.New("Participant not found"))
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, apierror.New("Failed to update participant"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ParticipantsHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("uniqueID"))
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Participant not found"))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to delete participant"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteAll wipes the participant table. Admin only, used between events.
// Requires ?all=true so a stray DELETE on the collection cannot empty it.
func (h *ParticipantsHandler) DeleteAll(c *gin.Context) {
	if c.Query("all") != "true" {
		c.JSON(http.StatusBadRequest, apierror.New("Pass all=true to delete every participant"))
		return
	}
	if err := h.svc.DeleteAll(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to delete participants"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ExportCSV streams the attendance sheet as a CSV download.
func (h *ParticipantsHandler) ExportCSV(c *gin.Context) {
	filename := fmt.Sprintf("participants-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.svc.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// ImportCSV registers participants in bulk from an uploaded name,email CSV.
func (h *ParticipantsHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("CSV file upload required (field: file)"))
		return
	}
	defer file.Close()

	result, err := h.svc.ImportCSV(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, service.ErrIDRangeExhausted) {
			c.JSON(http.StatusConflict, result)
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Import failed"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// QRCode issues a fresh token for the participant and returns it rendered
// as a PNG. Every call invalidates the previously issued code.
func (h *ParticipantsHandler) QRCode(c *gin.Context) {
	png, err := h.tickets.RenderQR(c.Request.Context(), c.Param("uniqueID"))
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Participant not found"))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to generate QR code"))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
