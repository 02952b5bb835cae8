package controllers

import (
	"SurgiFlow/handlers"

	"github.com/gin-gonic/gin"
)

func SetupPatientRoutes(router gin.IRoutes, patientHandler *handlers.PatientHandler, fileHandler *handlers.PatientFileHandler) {
	router.POST("/patients", patientHandler.CreatePatient)
	router.GET("/patients", patientHandler.GetAllPatients)
	router.GET("/patients/:patient_id", patientHandler.GetPatientByID)
	router.GET("/patients/:patient_id/files", patientHandler.ListPatientFiles)
	router.POST("/patients/create-full", fileHandler.CreateFull)

	router.POST("/patient-files/upload-raw", fileHandler.UploadRaw)
	router.PATCH("/patient-files/assign/:file_id", fileHandler.AssignFile)
}
