package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitbook/internal/authz"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeResolver map[string]authz.Actor

func (f fakeResolver) ResolveActor(_ context.Context, token string) (authz.Actor, error) {
	if a, ok := f[token]; ok {
		return a, nil
	}
	return authz.Anonymous(), errors.New("invalid token")
}

const cookieName = "fitbook_session"

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.Use(Authenticate(fakeResolver{
		"user-token":  {UserID: "u1", Email: "u1@fitbook.test", Role: authz.RoleUser},
		"admin-token": {UserID: "a1", Email: "a1@fitbook.test", Role: authz.RoleAdmin},
	}, cookieName))
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": ActorFrom(c).UserID})
	})
	r.GET("/probe", handlers...)
	r.POST("/probe", handlers...)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	r := newEngine()

	cases := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"anonymous", "", "", ""},
		{"bearer", "Bearer user-token", "", "u1"},
		{"cookie", "", "admin-token", "a1"},
		{"bearer wins over cookie", "Bearer user-token", "admin-token", "u1"},
		{"invalid token stays anonymous", "Bearer forged", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: cookieName, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tc.want, decode(t, w)["user_id"])
		})
	}
}

func TestRequireAuth(t *testing.T) {
	r := newEngine(RequireAuth())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/probe", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	require.Equal(t, "error", body["status"])
	require.Equal(t, "Authentication required", body["message"])
	require.NotEmpty(t, body["trace_id"])

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe?tab=2", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login?next=%2Fprobe%3Ftab%3D2", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := newEngine(RequireAuth(), RequireRole(authz.RoleAdmin))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/probe", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/probe", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a1", decode(t, w)["user_id"])
}

func TestTraceID(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	generated := w.Header().Get(TraceHeader)
	require.Len(t, generated, 36)

	inbound := "8a4b1f8e-2c47-4e0e-9a5e-3f1d2c3b4a59"
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TraceHeader, inbound)
	r.ServeHTTP(w, req)
	require.Equal(t, inbound, w.Header().Get(TraceHeader))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TraceHeader, "<script>")
	r.ServeHTTP(w, req)
	require.NotEqual(t, "<script>", w.Header().Get(TraceHeader))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("https://fitbook.test/", ""))
	r.GET("/probe", func(c *gin.Context) { utils.RespondSuccess(c, nil, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/probe", nil)
	req.Header.Set("Origin", "https://fitbook.test")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://fitbook.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Origin", "https://evil.test")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(TraceIDMiddleware(), RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Equal(t, "/missing", entries[1].ContextMap()["path"])
	require.NotEmpty(t, entries[2].ContextMap()["trace_id"])
}
