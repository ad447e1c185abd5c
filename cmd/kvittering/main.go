package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kvittering/kvittering/internal/clipboard"
	"github.com/kvittering/kvittering/internal/config"
	"github.com/kvittering/kvittering/internal/listing"
	"github.com/kvittering/kvittering/internal/metrics"
	"github.com/kvittering/kvittering/internal/registry"
	"github.com/kvittering/kvittering/internal/server"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
	// Global flags
	cfgFile   string
	logLevel  string
	noColor   bool
	debugMode bool

	// Global config and logger
	cfg    *config.Config
	v      *viper.Viper
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kvittering",
	Short: "Extract listing details from FINN.no and Tise for purchase receipts",
	Long: `kvittering turns a marketplace listing URL into a normalized record
(title, description, price, images, seller and ad id) that a receipt can be
generated from.

Supported marketplaces are FINN.no and Tise. Extraction reads structured
data first, then the page's hydration payload, then the visible markup.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for config init command
		if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}

		var err error
		cfg, v, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Enable debug mode if flag is set
		if debugMode {
			cfg.Advanced.Debug = true
			cfg.HTTP.Debug = true
			if logLevel == "" {
				cfg.Logging.Level = "debug"
			}
		}

		// Override log level if specified
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		// Override color setting if specified
		if noColor {
			cfg.Logging.Color = false
		}

		logger, err = config.InitLogger(&cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/kvittering/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug mode (verbose HTTP logging)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(platformsCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// versionCmd displays version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kvittering version %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
	},
}

// scrapeCmd extracts a single listing
var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Extract a listing (reads the URL from the clipboard when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		copyResult, _ := cmd.Flags().GetBool("copy")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		providerName, _ := cmd.Flags().GetString("provider")

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		clip := clipboard.NewService(logger)

		var rawURL string
		if len(args) == 1 {
			rawURL = args[0]
		} else {
			text, err := clip.Read(ctx, cfg)
			if err != nil {
				return fmt.Errorf("no URL given and the clipboard could not be read: %w", err)
			}
			rawURL = text
			logger.Debug("read URL from clipboard", "url", rawURL)
		}

		if timeout > 0 {
			cfg.HTTP.Timeout = timeout
		}

		scraper, err := registry.NewScraper(cfg, logger, nil)
		if err != nil {
			return err
		}

		var result listing.Listing
		if providerName != "" {
			if _, err := scraper.Registry().Get(providerName); err != nil {
				return fmt.Errorf("%w (enabled: %s)", err, strings.Join(scraper.Registry().List(), ", "))
			}
			result, err = scraper.ScrapeWith(ctx, providerName, rawURL)
		} else {
			result, err = scraper.ScrapeURL(ctx, rawURL)
		}
		if err != nil {
			logger.Debug("scrape failed", "url", rawURL, "error", err)
			return errors.New(listing.UserMessage(err))
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}

		if asJSON {
			fmt.Println(string(data))
		} else {
			fmt.Print(renderSummary(result, newStyles(!noColor && cfg.Logging.Color)))
		}

		if copyResult {
			if err := clip.Write(ctx, string(data), cfg); err != nil {
				return fmt.Errorf("failed to copy result: %w", err)
			}
			fmt.Fprintln(os.Stderr, "Copied listing JSON to clipboard")
		}
		return nil
	},
}

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scrape API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		m := metrics.NewRegistry()
		scraper, err := registry.NewScraper(cfg, logger, m)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Scraper:    scraper,
			CORSOrigin: cfg.Server.CORSOrigin,
			Logger:     logger,
			Metrics:    m,
		})

		// Setup hot reload
		if v.ConfigFileUsed() != "" {
			v.OnConfigChange(func(e fsnotify.Event) {
				logger.Info("Config file changed", "name", e.Name)
				next, err := config.Decode(v)
				if err != nil {
					logger.Error("Failed to reload config", "error", err)
					return
				}
				reloaded, err := registry.NewScraper(next, logger, m)
				if err != nil {
					logger.Error("Failed to rebuild providers", "error", err)
					return
				}
				srv.Reload(reloaded, next.Server.CORSOrigin)
				logger.Info("Providers reloaded", "providers", reloaded.Registry().List())
			})
			v.WatchConfig()
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		logger.Info("kvittering starting...", "version", version, "providers", scraper.Registry().List())
		return srv.ListenAndServe(ctx, addr)
	},
}

// platformsCmd lists supported marketplaces
var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported marketplaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		scraper, err := registry.NewScraper(cfg, logger, nil)
		if err != nil {
			return err
		}
		fmt.Print(renderPlatforms(scraper.Detector().Patterns(), scraper.Registry(), newStyles(!noColor && cfg.Logging.Color)))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().Bool("json", false, "print the listing as JSON")
	scrapeCmd.Flags().Bool("copy", false, "copy the listing JSON to the clipboard")
	scrapeCmd.Flags().Duration("timeout", 0, "fetch timeout (default: http.timeout from config)")
	scrapeCmd.Flags().String("provider", "", "extract with this provider instead of detecting the platform")

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr from config)")
}

// configCmd handles configuration operations
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Determine config path
		configPath := cfgFile
		if configPath == "" {
			if err := config.InitializeDirs(); err != nil {
				return err
			}
			configPath = filepath.Join(config.GetConfigDir(), "config.yaml")
		}

		// Check if config file already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s", configPath)
		}

		// Create directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := config.SaveDefaultConfig(configPath); err != nil {
			return fmt.Errorf("failed to save default configuration: %w", err)
		}

		fmt.Printf("Default configuration generated successfully at: %s\n", configPath)
		fmt.Printf("You can now edit this file to customize kvittering's settings.\n")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		used := v.ConfigFileUsed()
		if used == "" {
			used = "(defaults)"
		}
		fmt.Printf("Config file: %s\n", used)
		fmt.Printf("HTTP timeout: %s\n", cfg.HTTP.Timeout.Round(time.Millisecond))
		fmt.Printf("HTTP retries: %d\n", cfg.HTTP.MaxRetries)
		fmt.Printf("Server address: %s\n", cfg.Server.Addr)
		fmt.Printf("Providers: finn=%t tise=%t\n", cfg.Providers.Finn.Enabled, cfg.Providers.Tise.Enabled)
		fmt.Printf("Log level: %s\n", cfg.Logging.Level)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Display configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			fmt.Println(cfgFile)
		} else {
			fmt.Println(filepath.Join(config.GetConfigDir(), "config.yaml"))
		}
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
