package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Handler{
		PasswordHash: string(hash),
		JWTSecret:    []byte("test-secret"),
		Log:          logger.WithField("test", true),
	}
}

func login(t *testing.T, h *Handler, password string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"password":"`+password+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.HandleLogin(e.NewContext(req, rec)))
	return rec
}

func TestHandleLogin(t *testing.T) {
	h := testHandler(t)

	t.Run("correct password sets session cookie", func(t *testing.T) {
		rec := login(t, h, "letmein")
		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "session", cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		rec := login(t, h, "not-the-password")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestMiddleware(t *testing.T) {
	h := testHandler(t)
	e := echo.New()
	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	t.Run("valid session passes through", func(t *testing.T) {
		loginRec := login(t, h, "letmein")
		cookie := loginRec.Result().Cookies()[0]

		req := httptest.NewRequest(http.MethodGet, "/api/reports/overview", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Middleware(next)(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("missing cookie is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/overview", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Middleware(next)(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/overview", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "not.a.jwt"})
		rec := httptest.NewRecorder()
		require.NoError(t, h.Middleware(next)(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleLogoutClearsCookie(t *testing.T) {
	h := testHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.HandleLogout(e.NewContext(req, rec)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
