package handlers

import (
	"SurgiFlow/logger"
	"SurgiFlow/middlewares"
	"SurgiFlow/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	service *services.PatientService
	log     *logger.Logger
}

func NewPatientHandler(service *services.PatientService, log *logger.Logger) *PatientHandler {
	return &PatientHandler{service: service, log: log}
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var in services.PatientInput
	if err := bindJSON(c, &in); err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	patient, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	id, err := idParam(c, "patient_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	patient, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *PatientHandler) GetAllPatients(c *gin.Context) {
	patients, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (h *PatientHandler) ListPatientFiles(c *gin.Context) {
	id, err := idParam(c, "patient_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	files, err := h.service.ListFiles(c.Request.Context(), id)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, files)
}
