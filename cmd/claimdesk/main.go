package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"claimdesk/internal/api"
	"claimdesk/internal/cli"
	"claimdesk/internal/config"
	"claimdesk/internal/logging"
	"claimdesk/internal/session"
	"claimdesk/internal/storage"
	"claimdesk/internal/tui"
)

func main() {
	var (
		configPath string
		dataDir    string
		baseURL    string
		useTUI     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON/JSONC")
	flag.StringVar(&dataDir, "data", "", "Data directory override")
	flag.StringVar(&baseURL, "base-url", "", "Analysis service base URL override")
	flag.BoolVar(&useTUI, "tui", false, "Start the full-screen interface")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if dir := strings.TrimSpace(dataDir); dir != "" {
		resolved, err := config.ExpandPath(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve data dir failed: %v\n", err)
			os.Exit(1)
		}
		cfg.Storage.BaseDir = resolved
	}
	if url := strings.TrimSpace(baseURL); url != "" {
		cfg.Service.BaseURL = strings.TrimRight(url, "/")
	}

	logger, err := logging.New(cfg.Log, cfg.Storage.BaseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	backend, err := storage.Open(cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init storage failed: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	store := session.NewStore(backend, logger)
	store.Restore()

	client := api.NewClient(cfg.Service)

	if useTUI {
		if err := tui.Run(store, client, logger); err != nil {
			fmt.Fprintf(os.Stderr, "interface failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app, err := cli.New(store, client, logger, cfg.Storage.BaseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init console failed: %v\n", err)
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "console failed: %v\n", err)
		os.Exit(1)
	}
}
