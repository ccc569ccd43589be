package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
)

// NewRouter mounts every route. Catalog, events, sky and starfield are
// public; everything user-scoped sits behind AuthMiddleware.
func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 12 << 20
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()), CORSMiddleware(app.CORSOrigins()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/signup", SignUp(app))
	r.POST("/auth/signin", SignIn(app))
	r.GET("/auth/federated/login", FederatedLogin(app))
	r.GET("/auth/federated/callback", FederatedCallback(app))

	r.GET("/catalog/objects", ListObjects(app))
	r.GET("/catalog/objects/:id", GetObject(app))
	r.GET("/catalog/events", ListEvents(app))
	r.GET("/catalog/events/:id", GetEvent(app))
	r.GET("/sky/tonight", GetSkyTonight(app))
	r.GET("/starfield/stream", StreamStarfield(app))

	protected := r.Group("/")
	protected.Use(auth.AuthMiddleware(app.Auth(), app.Logger()))
	protected.POST("/auth/signout", SignOut(app))
	protected.GET("/auth/me", Me(app))

	protected.GET("/observations", ListObservations(app))
	protected.POST("/observations", PostObservation(app))
	protected.DELETE("/observations/:id", DeleteObservation(app))
	protected.GET("/observations/stream", StreamObservations(app))
	protected.POST("/observations/images", UploadImage(app))

	protected.GET("/profile", GetProfile(app))
	protected.GET("/reminders", ListReminders(app))
	protected.POST("/catalog/events/:id/reminder", SetReminder(app))
	protected.DELETE("/catalog/events/:id/reminder", ClearReminder(app))

	return r
}
