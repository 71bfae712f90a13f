package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-console/internal/config"
	"admin-console/internal/gateway"
	"admin-console/internal/router"
	"admin-console/internal/session"
	"admin-console/internal/state"
	"admin-console/internal/web"
)

type App struct {
	server *http.Server
	store  *session.Store
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := session.Open(cfg.StateDBPath, cfg.StateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := gateway.New(cfg.APIBaseURL, cfg.APITimeout, store)

	auth := state.NewAuth(client, store)
	client.OnAuthFailure(auth.DropSession)
	projects := state.NewProjects(client)
	users := state.NewUsers(client)
	invites := state.NewInvites(client)

	if auth.Session().IsAuthenticated() {
		slog.Info("resumed persisted session", "user", auth.Session().User.Email)
	}

	handler := web.NewHandler(auth, projects, users, invites, client)
	appRouter := router.New(cfg, auth, handler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, store: store}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("console starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close session store", "error", err)
	}

	slog.Info("console stopped")
	return nil
}
