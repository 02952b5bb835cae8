package controllers

import (
	"SurgiFlow/handlers"
	"SurgiFlow/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupPromRoutes(router gin.IRoutes, promHandler *handlers.PromHandler) {
	router.GET("/proms/template/:prom_name", promHandler.GetTemplate)
	router.POST("/proms/schedule/:case_id", promHandler.GenerateSchedule)
	router.GET("/proms/schedule/patient/:patient_id", promHandler.ListScheduleForPatient)
	router.GET("/proms/form/:schedule_id", promHandler.GetForm)
	router.POST("/proms/form/:schedule_id/link", promHandler.CreateFormLink)
	router.POST("/proms/submit/:schedule_id", promHandler.Submit)
}

// SetupPublicPromRoutes registers the patient-facing form routes, which are
// authenticated by a form token instead of the staff bearer token.
func SetupPublicPromRoutes(router *gin.Engine, promHandler *handlers.PromHandler, tokens middlewares.FormTokenValidator) {
	public := router.Group("/public/proms", middlewares.FormTokenMiddleware(tokens))
	public.GET("/form", promHandler.PublicForm)
	public.POST("/submit", promHandler.PublicSubmit)
}
