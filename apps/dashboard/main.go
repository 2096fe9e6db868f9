package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/odhsupport/rtboard/apps/dashboard/auth"
	"github.com/odhsupport/rtboard/apps/dashboard/reports"
	"github.com/odhsupport/rtboard/pkg/config"
	"github.com/odhsupport/rtboard/pkg/rt"
	"github.com/odhsupport/rtboard/pkg/sealed"
)

const defaultConfigPath = "config.yaml.age"

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file, relying on process environment")
	}

	log := newLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := loadConfig(log)
	if err != nil {
		log.WithError(err).Fatal("could not load configuration")
	}

	client := rt.NewClient(cfg.RT.BaseURL, cfg.RT.Username, cfg.RT.Secret, log)

	// Verify the RT credentials up front so a bad secret fails the start
	// instead of every later refresh.
	loginCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Login(loginCtx); err != nil {
		var authErr *rt.AuthError
		if errors.As(err, &authErr) {
			log.WithError(err).Fatal("RT rejected the configured credentials")
		}
		log.WithError(err).Fatal("could not reach RT")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Static("/", "public")

	authHandler := &auth.Handler{
		PasswordHash: cfg.Dashboard.PasswordHash,
		JWTSecret:    []byte(cfg.Dashboard.SessionSecret),
		Log:          log,
	}
	e.POST("/api/login", authHandler.HandleLogin)
	e.POST("/api/logout", authHandler.HandleLogout)
	e.GET("/api/session", authHandler.HandleSession)

	reportHandler := &reports.Handler{Client: client, Cfg: cfg, Log: log}
	api := e.Group("/api", authHandler.Middleware)
	reportHandler.Register(api)

	log.WithField("listen", cfg.Dashboard.Listen).Info("starting dashboard server")
	e.Logger.Fatal(e.Start(cfg.Dashboard.Listen))
}

// loadConfig reads the sealed config file named by RTBOARD_CONFIG and opens
// it with the passphrase from RTBOARD_PASSPHRASE. A missing passphrase or a
// failed decryption keeps the process from starting.
func loadConfig(log *logrus.Entry) (*config.Config, error) {
	path := os.Getenv("RTBOARD_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	passphrase := os.Getenv("RTBOARD_PASSPHRASE")
	if passphrase == "" {
		return nil, errors.New("RTBOARD_PASSPHRASE is not set")
	}

	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	plaintext, err := sealed.Open(ciphertext, passphrase)
	if err != nil {
		return nil, err
	}
	log.WithField("path", path).Info("configuration decrypted")

	return config.Parse(plaintext)
}

func newLogger(level string) *logrus.Entry {
	logger := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger.WithField("service", "dashboard")
}
