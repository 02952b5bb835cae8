package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const scheduleIDKey = "formScheduleID"

// FormTokenValidator checks a patient form token.
type FormTokenValidator interface {
	Validate(token string) (uint, error)
}

// FormTokenMiddleware authenticates patient form requests by the token in the
// "token" query parameter and stores the granted schedule id on the context.
func FormTokenMiddleware(tokens FormTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing form token"})
			return
		}
		scheduleID, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired form token"})
			return
		}
		c.Set(scheduleIDKey, scheduleID)
		c.Next()
	}
}

// FormScheduleID returns the schedule id granted by FormTokenMiddleware.
func FormScheduleID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(scheduleIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
