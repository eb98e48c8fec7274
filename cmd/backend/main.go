package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"inventaris/internal/auth"
	"inventaris/internal/config"
	httpapi "inventaris/internal/http"
	"inventaris/internal/logging"
	"inventaris/internal/repository"
	"inventaris/internal/service"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "inventaris-backend",
		Usage: "development REST backend for the inventory dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"INVENTARIS_CONFIG"}},
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides backend.addr)"},
			&cli.StringFlag{Name: "store", Usage: "memory, sqlite or postgres (overrides backend.store)"},
			&cli.StringFlag{Name: "dsn", Usage: "database DSN (overrides backend.dsn)"},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("addr"); v != "" {
		cfg.Backend.Addr = v
	}
	if v := c.String("store"); v != "" {
		cfg.Backend.Store = v
	}
	if v := c.String("dsn"); v != "" {
		cfg.Backend.DSN = v
	}
	if err := cfg.ValidateBackend(); err != nil {
		return err
	}

	log := logging.Init("backend", logging.Options{File: cfg.Log.File, Level: cfg.Log.Level, Stdout: true})

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	authSvc := auth.NewService(store.Users, auth.NewTokens(cfg.Backend.JWTSecret, cfg.Backend.AccessTTL, cfg.Backend.RefreshTTL))
	if err := authSvc.Seed(c.Context, cfg.Backend.AdminUser, cfg.Backend.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	srv := httpapi.NewServer(service.New(store), authSvc, httpapi.Options{
		PageSize: cfg.Backend.PageSize,
		Logger:   logging.New("http"),
	})

	httpServer := &http.Server{
		Addr:              cfg.Backend.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr, "store", cfg.Backend.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "err", err)
	}
	log.Info("server stopped")
	return nil
}

func openStore(cfg config.Config) (*repository.Store, error) {
	if cfg.Backend.Store == "memory" {
		return repository.NewMemory(), nil
	}
	d, err := repository.Dialector(cfg.Backend.Store, cfg.Backend.DSN)
	if err != nil {
		return nil, err
	}
	return repository.OpenGorm(d)
}
