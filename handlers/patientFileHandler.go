package handlers

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/logger"
	"SurgiFlow/middlewares"
	"SurgiFlow/services"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type PatientFileHandler struct {
	service *services.PatientService
	log     *logger.Logger
}

func NewPatientFileHandler(service *services.PatientService, log *logger.Logger) *PatientFileHandler {
	return &PatientFileHandler{service: service, log: log}
}

// saveUpload stores the "uploaded_file" form file and returns its client
// file name and stored path.
func (h *PatientFileHandler) saveUpload(c *gin.Context) (string, string, error) {
	fh, err := c.FormFile("uploaded_file")
	if err != nil {
		return "", "", apperrors.BadRequest("uploaded_file is required")
	}
	path := h.service.UploadPath(fh.Filename)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return "", "", errors.Wrap(err, "failed to store uploaded file")
	}
	return fh.Filename, path, nil
}

// UploadRaw stores a file without creating a patient.
func (h *PatientFileHandler) UploadRaw(c *gin.Context) {
	filename, path, err := h.saveUpload(c)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	file, err := h.service.RecordUpload(c.Request.Context(), filename, path)
	if err != nil {
		h.discard(path)
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"file_id":   file.ID,
		"filename":  file.Filename,
		"file_path": file.FilePath,
	})
}

// AssignFile creates a patient from the body and links the uploaded file.
func (h *PatientFileHandler) AssignFile(c *gin.Context) {
	fileID, err := idParam(c, "file_id")
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	var in services.PatientInput
	if err := bindJSON(c, &in); err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	patient, file, err := h.service.AssignFile(c.Request.Context(), fileID, in)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": patient, "file": file})
}

// CreateFull creates a patient and its file from one multipart form.
func (h *PatientFileHandler) CreateFull(c *gin.Context) {
	var in services.PatientInput
	if err := c.ShouldBind(&in); err != nil {
		middlewares.RespondError(c, h.log, apperrors.BadRequest("Invalid form: %v", err))
		return
	}
	// Reject bad patient fields before anything is written to disk.
	if err := in.ValidateWithFile(); err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	filename, path, err := h.saveUpload(c)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	patient, file, err := h.service.CreateWithFile(c.Request.Context(), in, filename, path)
	if err != nil {
		h.discard(path)
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"patient": patient, "file": file})
}

// discard removes a stored upload whose record could not be written.
func (h *PatientFileHandler) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.log.Warn("failed to remove orphaned upload", "path", path, "error", err)
	}
}
