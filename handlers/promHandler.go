package handlers

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/logger"
	"SurgiFlow/middlewares"
	"SurgiFlow/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type PromHandler struct {
	service   *services.PromService
	scheduler *services.PromScheduler
	links     services.FormLinker
	log       *logger.Logger
}

// NewPromHandler wires the PROM endpoints. links may be nil when patient form
// links are disabled.
func NewPromHandler(service *services.PromService, scheduler *services.PromScheduler, links services.FormLinker, log *logger.Logger) *PromHandler {
	return &PromHandler{service: service, scheduler: scheduler, links: links, log: log}
}

func (h *PromHandler) GetTemplate(c *gin.Context) {
	tmpl, err := h.service.GetTemplate(c.Param("prom_name"))
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (h *PromHandler) GenerateSchedule(c *gin.Context) {
	caseID, err := idParam(c, "case_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	result, err := h.scheduler.ScheduleForCase(c.Request.Context(), caseID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PromHandler) ListScheduleForPatient(c *gin.Context) {
	patientID, err := idParam(c, "patient_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	rows, err := h.service.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *PromHandler) GetForm(c *gin.Context) {
	scheduleID, err := idParam(c, "schedule_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	h.form(c, scheduleID)
}

func (h *PromHandler) Submit(c *gin.Context) {
	scheduleID, err := idParam(c, "schedule_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	h.submit(c, scheduleID)
}

// CreateFormLink issues a patient-facing link for one schedule.
func (h *PromHandler) CreateFormLink(c *gin.Context) {
	if h.links == nil {
		middlewares.HttpError(c, h.log, "Form links are not enabled", http.StatusNotFound, nil)
		return
	}
	scheduleID, err := idParam(c, "schedule_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	schedule, err := h.service.GetSchedule(c.Request.Context(), scheduleID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	url, err := h.links.FormURL(schedule.ID, schedule.DueDate.Time)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule_id": schedule.ID, "url": url, "issued_at": time.Now().UTC()})
}

// PublicForm serves the form for the schedule granted by the form token.
func (h *PromHandler) PublicForm(c *gin.Context) {
	scheduleID, ok := middlewares.FormScheduleID(c)
	if !ok {
		middlewares.RespondError(c, h.log, apperrors.BadRequest("missing schedule"))
		return
	}
	h.form(c, scheduleID)
}

// PublicSubmit accepts answers for the schedule granted by the form token.
func (h *PromHandler) PublicSubmit(c *gin.Context) {
	scheduleID, ok := middlewares.FormScheduleID(c)
	if !ok {
		middlewares.RespondError(c, h.log, apperrors.BadRequest("missing schedule"))
		return
	}
	h.submit(c, scheduleID)
}

func (h *PromHandler) form(c *gin.Context, scheduleID uint) {
	form, err := h.service.GetForm(c.Request.Context(), scheduleID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *PromHandler) submit(c *gin.Context, scheduleID uint) {
	var in services.SubmitInput
	if err := bindJSON(c, &in); err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	result, err := h.service.Submit(c.Request.Context(), scheduleID, in)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
