package handlers

import (
	"SurgiFlow/logger"
	"SurgiFlow/middlewares"
	"SurgiFlow/models"
	"SurgiFlow/services"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CaseHandler struct {
	service *services.CaseService
	log     *logger.Logger
}

func NewCaseHandler(service *services.CaseService, log *logger.Logger) *CaseHandler {
	return &CaseHandler{service: service, log: log}
}

func (h *CaseHandler) CreateCase(c *gin.Context) {
	var in services.CreateCaseInput
	if err := bindJSON(c, &in); err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	created, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CaseHandler) GetCase(c *gin.Context) {
	h.withCase(c, h.service.Get)
}

func (h *CaseHandler) UpdateCase(c *gin.Context) {
	var in services.UpdateCaseInput
	if err := bindJSON(c, &in); err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	h.withCase(c, func(ctx context.Context, id uint) (*models.CaseEpisode, error) {
		return h.service.Update(ctx, id, in)
	})
}

func (h *CaseHandler) StartCase(c *gin.Context) {
	h.withCase(c, h.service.Start)
}

func (h *CaseHandler) StopCase(c *gin.Context) {
	h.withCase(c, h.service.Stop)
}

func (h *CaseHandler) ListCasesForPatient(c *gin.Context) {
	patientID, err := idParam(c, "patient_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	cases, err := h.service.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cases)
}

func (h *CaseHandler) withCase(c *gin.Context, op func(ctx context.Context, id uint) (*models.CaseEpisode, error)) {
	id, err := idParam(c, "case_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	result, err := op(c.Request.Context(), id)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
