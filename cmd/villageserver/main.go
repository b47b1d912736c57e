// Package main provides the village server. It scans the note vault, grows
// the village, and serves it over HTTP together with villager dialogue.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/notevillage/internal/api"
	"github.com/cory-johannsen/notevillage/internal/config"
	"github.com/cory-johannsen/notevillage/internal/dialogue"
	"github.com/cory-johannsen/notevillage/internal/observability"
	"github.com/cory-johannsen/notevillage/internal/server"
	"github.com/cory-johannsen/notevillage/internal/vault"
	"github.com/cory-johannsen/notevillage/internal/village"
)

func main() {
	start := time.Now()

	// .env carries the Anthropic key in development.
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if key := os.Getenv("NOTEVILLAGE_DIALOGUE_ANTHROPIC_API_KEY"); key != "" {
		cfg.Dialogue.AnthropicAPIKey = key
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting village server",
		zap.String("vault", cfg.Vault.Path),
	)

	// Initial generation
	regenerate := regenerator(cfg, logger)
	initial, err := regenerate("")
	if err != nil {
		logger.Fatal("generating village", zap.Error(err))
	}
	villages := village.NewManager(initial)

	// Dialogue
	dialogues, closeDialogue, err := buildDialogue(cfg, logger)
	if err != nil {
		logger.Fatal("initializing dialogue", zap.Error(err))
	}
	defer closeDialogue()

	// HTTP API
	apiServer := api.NewServer(villages, regenerate, dialogues, logger)
	httpService := server.NewHTTPService(cfg.HTTP, apiServer.Routes(), logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("http", httpService)

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// regenerator builds the vault-to-village pipeline invoked at startup and by
// POST /api/village/regenerate.
func regenerator(cfg config.Config, logger *zap.Logger) api.RegenerateFunc {
	return func(seed string) (*village.Village, error) {
		scanner := vault.NewScanner(cfg.Vault.Path, cfg.Vault.ExcludedFolders, cfg.Vault.ExcludedTags, logger)
		index, err := scanner.Scan()
		if err != nil {
			return nil, err
		}

		opts := cfg.Options()
		if seed != "" {
			opts.Seed = seed
		}
		return village.NewGenerator(opts, index, index, logger).Generate()
	}
}

// buildDialogue assembles the scripted and AI responder chain from config.
// The returned close function shuts down the Lua VMs.
func buildDialogue(cfg config.Config, logger *zap.Logger) (*dialogue.Manager, func(), error) {
	var scripts *dialogue.ScriptEngine
	if cfg.Dialogue.ScriptDir != "" {
		scripts = dialogue.NewScriptEngine(logger)
		if err := scripts.LoadGlobal(cfg.Dialogue.ScriptDir, cfg.Dialogue.InstructionLimit); err != nil {
			scripts.Close()
			return nil, nil, err
		}
		entries, err := os.ReadDir(cfg.Dialogue.ScriptDir)
		if err != nil {
			scripts.Close()
			return nil, nil, err
		}
		// Subdirectories carry per-zone scripts, named by zone ID.
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(cfg.Dialogue.ScriptDir, entry.Name())
			if err := scripts.LoadZone(entry.Name(), dir, cfg.Dialogue.InstructionLimit); err != nil {
				scripts.Close()
				return nil, nil, err
			}
		}
	}

	var ai dialogue.Responder
	if cfg.Dialogue.AnthropicAPIKey != "" {
		ai = dialogue.NewAnthropicResponder(cfg.Dialogue.AnthropicAPIKey, cfg.Dialogue.Model,
			cfg.Dialogue.MaxTokens, logger)
		logger.Info("AI dialogue enabled", zap.String("model", cfg.Dialogue.Model))
	}

	var transcripts *dialogue.TranscriptWriter
	if cfg.Dialogue.TranscriptsEnabled {
		transcripts = dialogue.NewTranscriptWriter(cfg.Vault.Path)
	}

	mgr := dialogue.NewManager(scripts, ai, transcripts, logger)
	closeFn := func() {
		if scripts != nil {
			scripts.Close()
		}
	}
	return mgr, closeFn, nil
}
