package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRootRoute registers the unauthenticated health route.
func SetupRootRoute(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "SurgiFlow backend online"})
	})
}
