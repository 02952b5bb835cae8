package controllers

import (
	"SurgiFlow/handlers"

	"github.com/gin-gonic/gin"
)

func SetupCaseRoutes(router gin.IRoutes, caseHandler *handlers.CaseHandler) {
	router.POST("/cases", caseHandler.CreateCase)
	router.GET("/cases/:case_id", caseHandler.GetCase)
	router.PATCH("/cases/:case_id", caseHandler.UpdateCase)
	router.POST("/cases/:case_id/start", caseHandler.StartCase)
	router.POST("/cases/:case_id/stop", caseHandler.StopCase)
	router.GET("/cases/by-patient/:patient_id", caseHandler.ListCasesForPatient)
}
