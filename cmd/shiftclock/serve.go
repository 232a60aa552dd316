package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiftclock/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"web"},
	Short:   "Serve the clock-out widget over HTTP",
	Long: `Start the web widget. The page refreshes itself every RefreshSeconds and
keeps its state in the URL, so a bookmarked link always shows the same shift.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := web.NewHandler(cfg, appVersion, logger)
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://127.0.0.1:%d/\n", cfg.Port)
		return web.NewServer(cfg, handler, logger).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
}
