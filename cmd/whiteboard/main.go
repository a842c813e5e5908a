package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"whiteboard/internal/config"
	"whiteboard/internal/i18n"
	"whiteboard/internal/lifecycle"
	"whiteboard/internal/log"
	"whiteboard/internal/storage"
	"whiteboard/internal/tui"
	"whiteboard/internal/workspace"
)

func main() {
	var (
		configPath string
		dataDir    string
		backend    string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON")
	flag.StringVar(&dataDir, "data", "", "Data directory override")
	flag.StringVar(&backend, "backend", "", "Storage backend override (auto/sqlite/file)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if dataDir != "" {
		cfg.Storage.Dir = dataDir
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	i18n.Init(cfg.UI.Locale)

	// 存储不可用不是致命错误：降级为纯内存模式继续运行
	// Storage being unavailable is not fatal: degrade to memory-only and keep going
	store, err := storage.Open(cfg.Storage.Dir, cfg.Storage.Backend)
	if err != nil {
		logger.Warn("open storage failed", "err", err)
		store = nil
	}

	ws := workspace.New()
	mgr := lifecycle.New(store, ws, logger)
	mgr.SetDebounceWindow(time.Duration(cfg.AutoSave.DebounceMS) * time.Millisecond)
	if err := mgr.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init boards failed: %v\n", err)
		os.Exit(1)
	}
	ws.OnChange(mgr.NotifyChange)

	if err := tui.Run(mgr, ws); err != nil {
		fmt.Fprintf(os.Stderr, "whiteboard exited with error: %v\n", err)
		os.Exit(1)
	}
	if store != nil {
		_ = store.Close()
	}
}
