package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chizhikfront/internal/bootstrap"
	"chizhikfront/internal/catalog"
	"chizhikfront/internal/config"
	httpserver "chizhikfront/internal/http-server"
	"chizhikfront/internal/logger"
	"chizhikfront/internal/storefront"
)

func main() {
	var (
		configPath = flag.String("config", "./config/config.yaml", "path to config.yaml")
		host       = flag.String("host", "", "override host")
		port       = flag.Int("port", 0, "override port")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Env:       cfg.Env,
	})
	slog.SetDefault(log)

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	api, err := bootstrap.BuildAPI(cfg, log, 10)
	if err != nil {
		log.Error("build api client failed", "err", err)
		os.Exit(1)
	}

	store, err := bootstrap.BuildCache(cfg, log)
	if err != nil {
		log.Error("build cache failed", "err", err)
		os.Exit(1)
	}

	front := storefront.New(api, store, log, storefront.Options{
		TreeTTL:   cfg.TreeTTL(),
		OffersTTL: cfg.OffersTTL(),
		PageSize:  cfg.Pagination.PageSize,
		Display:   catalog.DisplayOptions{},
		DefaultCity: storefront.City{
			ID:   cfg.Chizhik.DefaultCityID,
			Name: cfg.Chizhik.DefaultCityName,
		},
	})

	srvApp := httpserver.New(log)
	srvApp.RegisterRoutes(httpserver.Deps{
		Cities:        api,
		Storefront:    front,
		Timeout:       time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second * 2,
		SearchTimeout: time.Duration(cfg.HTTP.SearchTimeoutSeconds) * time.Second * 2,
	})

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))

	srv := &http.Server{
		Addr:              addr,
		Handler:           srvApp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("api started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case sig := <-stop:
		log.Info("shutdown signal received", "signal", sig.String())

		// даём запросам завершиться
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			_ = srv.Close()
		}
		log.Info("server stopped gracefully")

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("server closed")
			return
		}
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}
