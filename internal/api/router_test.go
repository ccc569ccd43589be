package api

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/media"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/starfield"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

type fakeImages struct {
	puts int
}

func (f *fakeImages) Put(ctx context.Context, ownerID string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := media.ObjectKey(ownerID, contentType)
	if err != nil {
		return "", err
	}
	f.puts++
	return key, nil
}

func (f *fakeImages) URL(ctx context.Context, key string) (string, error) {
	return "https://images.test/" + key, nil
}

func setupRouter(t *testing.T, images media.ImageStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NopLogger()
	store := storage.NewMemoryStorage(logger)
	federation := auth.NewFederation(auth.FederationConfig{
		ClientID:    "client",
		RedirectURL: "http://localhost/auth/federated/callback",
		AuthURL:     "https://idp.test/authorize",
		TokenURL:    "https://idp.test/token",
	}, logger)
	provider := auth.NewLocalAuthProvider(store, auth.NewTokenIssuer("test-secret", time.Hour), auth.NewMemorySessionStore(), federation, logger)
	app := NewApp(Deps{
		Logger:      logger,
		Store:       store,
		Auth:        provider,
		Reminders:   service.NewReminders(func(service.Reminder) {}, logger),
		Images:      images,
		Cookies:     NewCookieStore("cookie-secret", false),
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return NewRouter(app)
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func signUp(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/auth/signup", "", `{"email":"`+email+`","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess internal.Session
	decode(t, w, &sess)
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

func TestAuthFlow(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodPost, "/auth/signup", "", `{"email":"nope","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := signUp(t, r, "ada@example.com")

	w = do(r, http.MethodPost, "/auth/signup", "", `{"email":"ada@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/auth/signin", "", `{"email":"ada@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var me internal.User
	decode(t, w, &me)
	assert.Equal(t, "ada@example.com", me.Email)

	w = do(r, http.MethodPost, "/auth/signout", token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestObservationsRequireAuth(t *testing.T) {
	r := setupRouter(t, nil)
	w := do(r, http.MethodGet, "/observations", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, 401, env.Error.Code)
}

func TestObservationLifecycle(t *testing.T) {
	r := setupRouter(t, nil)
	ada := signUp(t, r, "ada@example.com")
	bob := signUp(t, r, "bob@example.com")

	w := do(r, http.MethodPost, "/observations", ada, `{"name":"","date":"2026-10-18"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/observations", ada, `{"name":"Orion Nebula","date":"18/10/2026"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/observations", ada, `{"name":"Orion Nebula","date":"2026-10-18","time":"22:15","notes":"clear"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created internal.Observation
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)

	w = do(r, http.MethodGet, "/observations", bob, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []internal.Observation
	decode(t, w, &list)
	assert.Empty(t, list)

	w = do(r, http.MethodDelete, "/observations/"+created.ID, bob, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/profile", ada, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile service.Profile
	decode(t, w, &profile)
	assert.Equal(t, 1, profile.Total)
	assert.Equal(t, 1, profile.Level)

	w = do(r, http.MethodDelete, "/observations/"+created.ID, ada, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/observations", ada, "")
	decode(t, w, &list)
	assert.Empty(t, list)
}

func TestCatalogBrowse(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/catalog/objects?q=JUPITER&type=Planet", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var objs []internal.CelestialObject
	env := decode(t, w, &objs)
	require.Len(t, objs, 1)
	assert.Equal(t, "Jupiter", objs[0].Name)
	assert.EqualValues(t, 1, env.Meta["count"])

	w = do(r, http.MethodGet, "/catalog/objects/9999", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodGet, "/catalog/objects/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/catalog/events?type=Eclipse", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var events []EventResponse
	decode(t, w, &events)
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Equal(t, "Eclipse", e.Type)
	}
}

func TestReminders(t *testing.T) {
	r := setupRouter(t, nil)
	token := signUp(t, r, "ada@example.com")

	w := do(r, http.MethodPost, "/catalog/events/8/reminder", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/catalog/events/8/reminder", token, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	w = do(r, http.MethodPost, "/catalog/events/999/reminder", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/reminders", token, "")
	var list []service.Reminder
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 8, list[0].Event.ID)

	w = do(r, http.MethodDelete, "/catalog/events/8/reminder", token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodDelete, "/catalog/events/8/reminder", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSkyTonight(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/sky/tonight", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report service.SkyReport
	decode(t, w, &report)
	assert.True(t, report.Fallback)

	w = do(r, http.MethodGet, "/sky/tonight?lat=51.5&lon=-0.1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &report)
	assert.False(t, report.Fallback)

	w = do(r, http.MethodGet, "/sky/tonight?lat=120&lon=0", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFederatedLoginState(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/auth/federated/login", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "idp.test", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	callback := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/federated/callback?"+query, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, callback("code=abc&state=forged").Code)
	assert.Equal(t, http.StatusBadRequest, callback("error=access_denied&state="+state).Code)
	// No cookie at all.
	w = do(r, http.MethodGet, "/auth/federated/callback?code=abc&state="+state, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImage(t *testing.T) {
	upload := func(r http.Handler, token, contentType string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="m42.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG fake"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/observations/images", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	r := setupRouter(t, nil)
	token := signUp(t, r, "ada@example.com")
	assert.Equal(t, http.StatusServiceUnavailable, upload(r, token, "image/png").Code)

	images := &fakeImages{}
	r = setupRouter(t, images)
	token = signUp(t, r, "ada@example.com")
	w := upload(r, token, "image/png")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out map[string]string
	decode(t, w, &out)
	assert.True(t, strings.HasPrefix(out["url"], "https://images.test/"))
	assert.Equal(t, 1, images.puts)

	assert.Equal(t, http.StatusUnsupportedMediaType, upload(r, token, "application/pdf").Code)
}

func TestCORS(t *testing.T) {
	r := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/observations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestStreamObservations(t *testing.T) {
	r := setupRouter(t, nil)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token := signUp(t, r, "ada@example.com")
	w := do(r, http.MethodPost, "/observations", token, `{"name":"Andromeda Galaxy","date":"2026-10-18"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/observations/stream?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	found := false
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "data:") && strings.Contains(line, "Andromeda Galaxy") {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(internal.ErrValidation))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(internal.ErrNotSignedIn))
	assert.Equal(t, http.StatusConflict, StatusFor(internal.ErrAccountExists))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(internal.ErrAuthUnavailable))
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusFor(media.ErrTooLarge))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(internal.ErrStorage))
}

func TestStreamStarfield_IgnoresNonFiniteParams(t *testing.T) {
	r := setupRouter(t, nil)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/starfield/stream?fps=NaN&width=NaN&height=Inf", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var fr starfield.Frame
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &fr))
		assert.Equal(t, 1280.0, fr.Width)
		assert.Equal(t, 720.0, fr.Height)
		assert.Len(t, fr.Stars, starfield.DefaultStars)
		return
	}
	t.Fatal("no frame received")
}

func TestSkyTonight_RejectsNaN(t *testing.T) {
	r := setupRouter(t, nil)
	w := do(r, http.MethodGet, "/sky/tonight?lat=NaN&lon=0", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
