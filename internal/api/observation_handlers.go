package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/tracker"
)

const streamHeartbeat = 15 * time.Second

func ListObservations(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		list, err := app.Store().ListObservations(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to fetch observations")
			return
		}
		HandleSuccess(c, app.Logger(), list, map[string]any{"count": len(list)})
	}
}

func PostObservation(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var req service.ObservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		obs, err := service.CreateObservation(c.Request.Context(), app.Store(), user, &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save observation")
			return
		}
		HandleCreated(c, app.Logger(), obs)
	}
}

func DeleteObservation(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if err := service.DeleteObservation(c.Request.Context(), app.Store(), user, c.Param("id")); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete observation")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// StreamObservations pushes the caller's full list as server-sent events,
// once on connect and again after every change. A slow client only ever
// receives the newest list.
func StreamObservations(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		tr := tracker.New(app.Store(), app.Logger())
		updates := make(chan []internal.Observation, 1)
		unsubscribe := tr.Subscribe(func(list []internal.Observation) {
			for {
				select {
				case updates <- list:
					return
				default:
				}
				select {
				case <-updates:
				default:
				}
			}
		})
		defer func() {
			unsubscribe()
			tr.Close()
		}()
		tr.SetIdentity(user)

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()
		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Stream(func(w io.Writer) bool {
			select {
			case list := <-updates:
				c.SSEvent("observations", list)
				return true
			case <-heartbeat.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}

// UploadImage stores a multipart "image" file and returns its key and a
// temporary URL to put in image_url.
func UploadImage(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		images := app.Images()
		if images == nil {
			HandleError(c, app.Logger(), errors.New("no image store configured"), http.StatusServiceUnavailable, "Image uploads unavailable")
			return
		}
		user := auth.CurrentUser(c)
		fh, err := c.FormFile("image")
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Missing image")
			return
		}
		f, err := fh.Open()
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Unreadable image")
			return
		}
		defer f.Close()

		key, err := images.Put(c.Request.Context(), user.ID, f, fh.Size, fh.Header.Get("Content-Type"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to store image")
			return
		}
		url, err := images.URL(c.Request.Context(), key)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to sign image URL")
			return
		}
		HandleCreated(c, app.Logger(), gin.H{"key": key, "url": url})
	}
}
