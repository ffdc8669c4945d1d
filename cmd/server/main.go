// Package main - entry point for the effort-estimate API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"effort-estimate/adapters/catalog/hclfile"
	"effort-estimate/adapters/storage"
	"effort-estimate/api"
	"effort-estimate/core/catalog"
	"effort-estimate/internal/config"
	"effort-estimate/internal/logging"
)

const version = "1.0.0"

func main() {
	cfgFile := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	// Local overrides such as EFFORT_ESTIMATE_AI_KEY live in .env
	godotenv.Load()

	cfg := config.Get()
	if *cfgFile != "" {
		loaded, err := config.Load(*cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(loaded)
		cfg = loaded
	}
	if key := os.Getenv("EFFORT_ESTIMATE_AI_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if dsn := os.Getenv("EFFORT_ESTIMATE_DSN"); dsn != "" {
		cfg.Storage.DSN = dsn
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	catalogs, err := loadCatalogs(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalogs: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	listen := cfg.Server.Listen
	if *addr != "" {
		listen = *addr
	}

	server := api.NewServer(version, catalogs, store)
	fmt.Printf("effort-estimate server v%s listening on %s\n", version, listen)
	if err := server.ListenAndServe(listen); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func loadCatalogs(ctx context.Context, cfg *config.Config) (*catalog.Set, error) {
	switch cfg.Catalog.Source {
	case "", "demo":
		return catalog.DemoSet(), nil
	case "hcl":
		src, err := hclfile.NewDirSource(cfg.Catalog.Dir)
		if err != nil {
			return nil, err
		}
		cached, err := catalog.NewCachedSource(src, cfg.Catalog.CacheSize)
		if err != nil {
			return nil, err
		}
		return catalog.LoadSet(ctx, cached), nil
	case "postgres":
		store, err := storage.NewPostgresStore(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return catalog.LoadSet(ctx, store.CatalogSource()), nil
	default:
		return nil, fmt.Errorf("unknown catalog source: %s", cfg.Catalog.Source)
	}
}
