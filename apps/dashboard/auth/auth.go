// Package auth guards the dashboard behind a single shared password. Login
// checks the password against the bcrypt hash from the sealed config and
// issues a short-lived JWT in an HttpOnly cookie; the middleware validates
// that cookie on every report request.
package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookie      = "session"
	sessionExpiryHours = 12
)

type Claims struct {
	jwt.RegisteredClaims
}

type Handler struct {
	PasswordHash string
	JWTSecret    []byte
	Log          *logrus.Entry
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request format"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(req.Password)); err != nil {
		h.Log.WithField("remote", c.RealIP()).Warn("rejected dashboard login")
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	expiration := time.Now().Add(time.Hour * sessionExpiryHours)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiration)},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	c.SetCookie(&http.Cookie{
		Name: sessionCookie, Value: tokenString, Expires: expiration, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "login successful"})
}

func (h *Handler) HandleLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name: sessionCookie, Value: "", Expires: time.Unix(0, 0), MaxAge: -1, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleSession lets the frontend probe whether its cookie is still valid.
func (h *Handler) HandleSession(c echo.Context) error {
	if err := h.validate(c); err != nil {
		return c.JSON(http.StatusOK, map[string]bool{"logged_in": false})
	}
	return c.JSON(http.StatusOK, map[string]bool{"logged_in": true})
}

func (h *Handler) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.validate(c); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		return next(c)
	}
}

func (h *Handler) validate(c echo.Context) error {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return err
	}
	token, err := jwt.ParseWithClaims(cookie.Value, &Claims{}, func(token *jwt.Token) (any, error) {
		return h.JWTSecret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}
