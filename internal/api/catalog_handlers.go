package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/catalog"
)

type EventResponse struct {
	internal.SkyEvent
	DaysUntil int `json:"days_until"`
}

func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", internal.ErrValidation)
	}
	return id, nil
}

func ListObjects(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := catalog.FilterObjects(catalog.Objects(), c.Query("q"), c.Query("type"))
		HandleSuccess(c, app.Logger(), list, map[string]any{
			"count":          len(list),
			"types":          catalog.ObjectTypes(),
			"constellations": catalog.Constellations(),
		})
	}
}

func GetObject(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Invalid object")
			return
		}
		obj, ok := catalog.ObjectByID(id)
		if !ok {
			HandleError(c, app.Logger(), internal.ErrNotFound, http.StatusNotFound, "Unknown object")
			return
		}
		HandleSuccess(c, app.Logger(), obj, nil)
	}
}

// ListEvents filters the calendar. upcoming=true drops events whose day
// has passed.
func ListEvents(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		list := catalog.FilterEvents(catalog.Events(), c.Query("q"), c.Query("type"))
		if c.Query("upcoming") == "true" {
			list = catalog.Upcoming(list, now)
		}
		out := make([]EventResponse, 0, len(list))
		for _, e := range list {
			out = append(out, EventResponse{SkyEvent: e, DaysUntil: e.DaysUntil(now)})
		}
		HandleSuccess(c, app.Logger(), out, map[string]any{
			"count": len(out),
			"types": catalog.EventTypes(),
		})
	}
}

func GetEvent(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Invalid event")
			return
		}
		ev, ok := catalog.EventByID(id)
		if !ok {
			HandleError(c, app.Logger(), internal.ErrNotFound, http.StatusNotFound, "Unknown event")
			return
		}
		HandleSuccess(c, app.Logger(), EventResponse{SkyEvent: ev, DaysUntil: ev.DaysUntil(time.Now())}, nil)
	}
}

func SetReminder(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, err := pathID(c)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Invalid event")
			return
		}
		rem, err := app.Reminders().Set(user.ID, id)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to set reminder")
			return
		}
		HandleCreated(c, app.Logger(), rem)
	}
}

func ClearReminder(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, err := pathID(c)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Invalid event")
			return
		}
		if !app.Reminders().Clear(user.ID, id) {
			HandleError(c, app.Logger(), errors.New("no reminder for event"), http.StatusNotFound, "Failed to clear reminder")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ListReminders(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		list := app.Reminders().List(user.ID)
		HandleSuccess(c, app.Logger(), list, map[string]any{"count": len(list)})
	}
}
