package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type StatusController struct {
	storeBackend string
	started      time.Time
}

func InitStatusController(storeBackend string) *StatusController {
	return &StatusController{storeBackend: storeBackend, started: time.Now()}
}

// Root handles GET /
func (sc *StatusController) Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "CityStore API is running",
			"docs":    "/api/health",
		})
	}
}

// Health handles GET /api/health
func (sc *StatusController) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"status":     "ok",
			"store":      sc.storeBackend,
			"uptime":     time.Since(sc.started).Round(time.Second).String(),
			"local_time": time.Now().Local(),
		})
	}
}
