package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nikhilbhat/eventformatter/internal/api"
	"github.com/nikhilbhat/eventformatter/internal/config"
	"github.com/nikhilbhat/eventformatter/internal/engine"
	"github.com/nikhilbhat/eventformatter/internal/formatter"
	"github.com/nikhilbhat/eventformatter/internal/render"
	"github.com/nikhilbhat/eventformatter/internal/sink"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/formatter.yaml", "Path to YAML config")
	flag.Parse()

	// Optional .env for sink credentials; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Compile the formatter ─────────────────────────────────────────────────
	renderer := render.New()
	f, err := formatter.New(cfg.Formatter, renderer)
	if err != nil {
		slog.Error("failed to build formatter", "err", err)
		os.Exit(1)
	}
	slog.Info("formatter built", "mode", f.Mode(), "fields", f.Fields())

	// ── Output sink ───────────────────────────────────────────────────────────
	out, err := sink.FromConfig(cfg.Sink)
	if err != nil {
		slog.Error("failed to build sink", "err", err)
		os.Exit(1)
	}
	defer out.Close()

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(ctx, f, out, cfg.Engine)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		newF, err := formatter.New(newCfg.Formatter, renderer)
		if err != nil {
			slog.Warn("hot-reload skipped: formatter build failed", "err", err)
			return
		}
		eng.SwapFormatter(newF)
		slog.Info("formatter hot-reloaded", "mode", newF.Mode(), "fields", newF.Fields())
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(eng, loader, renderer)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop worker pool
	eng.Shutdown()
	slog.Info("goodbye")
}
