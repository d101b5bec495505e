package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/voxprep/backend/internal/api/handlers"
	"github.com/voxprep/backend/internal/api/middleware"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Call      *handlers.CallHandler
	WS        *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/interview/generate", d.Interview.Generate)
	auth.GET("/interviews/latest", d.Interview.ListLatest)
	auth.GET("/interviews/me", d.Interview.ListMine)
	auth.GET("/interview/:interview_id", d.Interview.GetByID)
	auth.GET("/interview/:interview_id/feedback", d.Interview.GetFeedback)

	auth.POST("/call/start", d.Call.Start)
	auth.POST("/call/:session_id/stop", d.Call.Stop)
	auth.GET("/call/:session_id/status", d.Call.Status)

	// WebSocket
	auth.GET("/ws/call/:session_id", d.WS.CallWS)
}
