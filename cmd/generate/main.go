// Package main provides a one-shot generator: scan a vault, grow the
// village, and print the snapshot as JSON.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/cory-johannsen/notevillage/internal/config"
	"github.com/cory-johannsen/notevillage/internal/observability"
	"github.com/cory-johannsen/notevillage/internal/vault"
	"github.com/cory-johannsen/notevillage/internal/village"
)

func main() {
	vaultPath := flag.String("vault", "", "path to the markdown vault (required)")
	seed := flag.String("seed", "", "generation seed (default: the vault path)")
	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	if *vaultPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	scanner := vault.NewScanner(*vaultPath, nil, nil, logger)
	index, err := scanner.Scan()
	if err != nil {
		log.Fatalf("scanning vault: %v", err)
	}

	s := *seed
	if s == "" {
		s = *vaultPath
	}
	v, err := village.NewGenerator(village.DefaultOptions(s), index, index, logger).Generate()
	if err != nil {
		log.Fatalf("generating village: %v", err)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("creating %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("encoding village: %v", err)
	}
}
