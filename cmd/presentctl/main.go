// Command presentctl drives the present engine from the command line.
//
// Usage:
//
//	presentctl run --frames 300 --lose-at 100
//	presentctl snapshot --out frame.bmp
//	presentctl adapters
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gogpu/present"
	_ "github.com/gogpu/present/backend/native"
	"github.com/gogpu/present/internal/config"
)

var (
	version  = "0.1.0"
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "presentctl",
	Short:         "Exercise the present frame presentation engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("presentctl v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./present.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log_level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(adaptersCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "presentctl:", err)
		os.Exit(1)
	}
}

func setup() error {
	envErr := godotenv.Load()

	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		if _, err := config.ParseLevel(logLevel); err != nil {
			return err
		}
		c.LogLevel = logLevel
	}
	cfg = c

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	present.SetLogger(logger)
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn("could not load .env", "error", envErr)
	}
	return nil
}
