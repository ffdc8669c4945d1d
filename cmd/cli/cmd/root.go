// Package cmd provides the CLI commands for effort-estimate.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"effort-estimate/adapters/catalog/hclfile"
	"effort-estimate/adapters/storage"
	"effort-estimate/core/catalog"
	"effort-estimate/internal/config"
	"effort-estimate/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "effort-estimate",
	Short: "Estimate implementation effort for requirements",
	Long: `effort-estimate computes deterministic effort estimates from activity
catalogs, weighted drivers and risk factors.

Selections can come from explicit flags, technology presets, or an
AI-assisted interview; competing values are reconciled by a fixed
precedence and always produce the same result for the same input.

Examples:
  effort-estimate estimate --activities ANALYSIS,API-CRUD --preset preset-backend
  effort-estimate interview "Build a reporting API for finance"
  effort-estimate catalog show --format json`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.effort-estimate.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// buildCatalogs assembles the catalog set from the configured source
func buildCatalogs(ctx context.Context) (*catalog.Set, error) {
	cfg := config.Get()

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

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("effort-estimate version 0.1.0")
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(config.Get())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath()
		if len(args) > 0 {
			path = args[0]
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".effort-estimate.json"
	}
	return homeDir + "/.effort-estimate.json"
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
