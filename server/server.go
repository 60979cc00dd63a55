package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shopsmart/shopsmart/internal/profile"
	"github.com/shopsmart/shopsmart/plugin/ai"
	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
	apiv1 "github.com/shopsmart/shopsmart/server/router/api/v1"
	"github.com/shopsmart/shopsmart/server/service/shoppinglist"
	"github.com/shopsmart/shopsmart/store"
)

// Server is the HTTP server hosting the shopping list API.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	lists      *shoppinglist.Service
}

func NewServer(ctx context.Context, prof *profile.Profile, st *store.Store) (*Server, error) {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(middleware.Recover())

	s := &Server{
		Profile:    prof,
		Store:      st,
		echoServer: echoServer,
	}

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	var classifier categorizer.Classifier
	if prof.IsAIEnabled() {
		aiConfig := ai.NewConfigFromProfile(prof)
		if err := aiConfig.Validate(); err != nil {
			slog.Warn("AI config invalid, item categorization falls back to the catch-all group", "error", err)
		} else {
			llmService, err := ai.NewLLMService(&aiConfig.LLM)
			if err != nil {
				slog.Warn("failed to create LLM service, item categorization falls back to the catch-all group", "error", err)
			} else {
				classifier = categorizer.NewLLMClassifier(llmService)
			}
		}
	}

	s.lists = shoppinglist.NewService(st, classifier)

	apiV1Service := apiv1.NewAPIV1Service(prof.Secret, prof, st, s.lists)
	apiV1Service.RegisterRoutes(echoServer)

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "version", s.Profile.Version)

	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	s.lists.Close()

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server shutdown")
}
