// Command webtotextd is the long-running extraction daemon. It exposes the
// session, tab and extraction operations over a REST API; all protocol work
// funnels through the controller's single worker goroutine.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/maverock24/webToText/internal/api"
	"github.com/maverock24/webToText/internal/browser"
	"github.com/maverock24/webToText/internal/config"
	"github.com/maverock24/webToText/internal/controller"
	"github.com/maverock24/webToText/internal/netutil"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel, cfg.LogFile)

	slog.Info("webtotextd config loaded",
		"debug_host", cfg.DebugHost,
		"debug_port", cfg.DebugPort,
		"bind_addr", cfg.BindAddr,
		"output_dir", cfg.OutputDir,
		"navigate_timeout_ms", cfg.NavigateTimeoutMS,
		"eval_timeout_ms", cfg.EvalTimeoutMS,
		"auto_launch", cfg.AutoLaunch,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	var launcher *browser.Launcher
	if cfg.AutoLaunch {
		launcher = browser.NewLauncher(browser.Config{
			DebugAddress: cfg.DebugHost,
			DebugPort:    cfg.DebugPort,
			ProfileDir:   cfg.ProfileDir,
			StartURL:     cfg.StartURL,
		})
		if err := launcher.Launch(ctx); err != nil {
			slog.Error("browser launch failed", "error", err)
			os.Exit(1)
		}
	}

	svc := controller.NewService(cfg)
	defer svc.Close()

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc)}

	go func() {
		slog.Info("webtotextd listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("webtotextd server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown failed", "error", err)
	}

	if launcher != nil && launcher.Running() {
		launcher.Stop()
	}
	slog.Info("webtotextd stopped")
}

func setupLogger(level, file string) {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	var w io.Writer = os.Stdout
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err == nil {
			w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    25,
				MaxBackups: 10,
				MaxAge:     14,
				Compress:   true,
			})
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}
