package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/starfield"
)

func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		list, err := app.Store().ListObservations(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to fetch observations")
			return
		}
		HandleSuccess(c, app.Logger(), service.BuildProfile(user, list, time.Now()), nil)
	}
}

// GetSkyTonight uses lat and lon when both are given and falls back to the
// generic planet list otherwise.
func GetSkyTonight(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loc *service.Location
		latStr, lonStr := c.Query("lat"), c.Query("lon")
		if latStr != "" || lonStr != "" {
			lat, err1 := strconv.ParseFloat(latStr, 64)
			lon, err2 := strconv.ParseFloat(lonStr, 64)
			if err1 != nil || err2 != nil || math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				err := fmt.Errorf("%w: lat and lon must be valid coordinates", internal.ErrValidation)
				HandleServiceError(c, app.Logger(), err, "Invalid location")
				return
			}
			loc = &service.Location{Lat: lat, Lon: lon}
		}
		HandleSuccess(c, app.Logger(), service.SkyTonight(loc, time.Now()), nil)
	}
}

func queryFloat(c *gin.Context, key string, fallback, lo, hi float64) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return fallback
	}
	return v
}

// StreamStarfield runs a private starfield for the connection and sends a
// frame per tick.
func StreamStarfield(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		width := queryFloat(c, "width", 1280, 1, 8192)
		height := queryFloat(c, "height", 720, 1, 8192)
		fps := queryFloat(c, "fps", 20, 1, 60)
		field := starfield.New(width, height, starfield.DefaultStars, time.Now().UnixNano())

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		interval := time.Duration(float64(time.Second) / fps)
		err := field.Run(c.Request.Context(), interval, func(fr starfield.Frame) error {
			c.SSEvent("frame", fr)
			c.Writer.Flush()
			return nil
		})
		app.Logger().Debugf("[request_id=%s] starfield stream ended: %v", c.GetString("request_id"), err)
	}
}
