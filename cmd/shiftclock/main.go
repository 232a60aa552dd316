package main

import (
	"log/slog"
	"os"

	"github.com/shiftclock/internal/config"
	"github.com/shiftclock/internal/visualization"
	"github.com/spf13/cobra"
)

const appVersion = "0.3.0"

var (
	cfg        *config.Config
	logger     *slog.Logger
	visualizer *visualization.Visualizer
)

var rootCmd = &cobra.Command{
	Use:   "shiftclock",
	Short: "Work out when you can clock out",
	Long: `Shiftclock computes your clock-out time from a start time, shift length and
break, and counts down to it in the terminal or in a small web widget.`,
	Version:       appVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		slog.SetDefault(logger)
		visualizer = visualization.New(cfg.AssetBase)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
