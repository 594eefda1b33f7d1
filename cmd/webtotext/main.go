// Command webtotext is the one-shot CLI: it connects to a browser with
// remote debugging enabled (optionally launching one), extracts readable
// text from a single URL or from every open tab, and saves markdown output.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/maverock24/webToText/internal/browser"
	"github.com/maverock24/webToText/internal/config"
	"github.com/maverock24/webToText/internal/controller"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	allTabs := flag.Bool("all", false, "extract text from every open tab")
	noSave := flag.Bool("no-save", false, "print only, do not write output files")
	launch := flag.Bool("launch", false, "launch the browser if the debug port is not listening")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [url]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel, cfg.LogFile)

	url := flag.Arg(0)
	if !*allTabs && url == "" {
		flag.Usage()
		os.Exit(2)
	}
	if url != "" && !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}

	ctx := context.Background()

	if *launch || cfg.AutoLaunch {
		l := browser.NewLauncher(browser.Config{
			DebugAddress: cfg.DebugHost,
			DebugPort:    cfg.DebugPort,
			ProfileDir:   cfg.ProfileDir,
			StartURL:     cfg.StartURL,
		})
		if err := l.Launch(ctx); err != nil {
			slog.Error("browser launch failed", "error", err)
			os.Exit(1)
		}
	}

	svc := controller.NewService(cfg)
	defer svc.Close()

	save := cfg.SaveFiles && !*noSave

	if *allTabs {
		batch, err := svc.ExtractAllTabs(ctx, save)
		if err != nil {
			slog.Error("all-tabs extraction failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Extracted text from %d tabs.\n\n", len(batch.Results))
		for i, res := range batch.Results {
			fmt.Printf("%d. %s (%s)\n", i+1, res.Title, res.URL)
		}
		if batch.SavedPath != "" {
			fmt.Printf("\nSaved all tabs to %s\n", batch.SavedPath)
		}
		return
	}

	res, err := svc.ExtractURL(ctx, url, save)
	if err != nil {
		slog.Error("extraction failed", "url", url, "error", err)
		os.Exit(1)
	}
	fmt.Println(res.Text)
	if res.SavedPath != "" {
		fmt.Printf("\n--- Saved to %s ---\n", res.SavedPath)
	}
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

	var w io.Writer = os.Stderr
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err == nil {
			w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    25,
				MaxBackups: 5,
				MaxAge:     14,
				Compress:   true,
			})
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}
