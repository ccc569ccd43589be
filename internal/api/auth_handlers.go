package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
)

const (
	oauthCookie = "explorer_oauth"
	stateKey    = "state"
)

func SignUp(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		sess, err := app.Auth().SignUp(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Sign-up failed")
			return
		}
		HandleCreated(c, app.Logger(), sess)
	}
}

func SignIn(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		sess, err := app.Auth().SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Sign-in failed")
			return
		}
		HandleSuccess(c, app.Logger(), sess, nil)
	}
}

// FederatedLogin redirects to the identity provider with a fresh state
// value remembered in a signed cookie.
func FederatedLogin(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := uuid.NewString()
		target, err := app.Auth().FederatedLoginURL(state)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Federated sign-in unavailable")
			return
		}
		cookie, _ := app.Cookies().Get(c.Request, oauthCookie)
		cookie.Values[stateKey] = state
		if err := cookie.Save(c.Request, c.Writer); err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to start sign-in")
			return
		}
		c.Redirect(http.StatusFound, target)
	}
}

func FederatedCallback(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := app.Cookies().Get(c.Request, oauthCookie)
		want, _ := cookie.Values[stateKey].(string)
		delete(cookie.Values, stateKey)
		cookie.Options.MaxAge = -1
		_ = cookie.Save(c.Request, c.Writer)

		if e := c.Query("error"); e != "" {
			HandleServiceError(c, app.Logger(), fmt.Errorf("%w: %s", internal.ErrProviderCancelled, e), "Federated sign-in failed")
			return
		}
		if want == "" || c.Query("state") != want {
			HandleError(c, app.Logger(), errors.New("state mismatch"), http.StatusBadRequest, "Federated sign-in failed")
			return
		}
		sess, err := app.Auth().SignInFederated(c.Request.Context(), c.Query("code"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Federated sign-in failed")
			return
		}
		HandleSuccess(c, app.Logger(), sess, nil)
	}
}

func SignOut(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if err := app.Auth().SignOut(c.Request.Context(), auth.CurrentToken(c)); err != nil {
			HandleServiceError(c, app.Logger(), err, "Sign-out failed")
			return
		}
		app.Reminders().ClearUser(user.ID)
		c.Status(http.StatusNoContent)
	}
}

func Me(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), auth.CurrentUser(c), nil)
	}
}
