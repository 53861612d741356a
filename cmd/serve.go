package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthscope/internal/display"
	"github.com/KaramelBytes/healthscope/internal/explorer"
	"github.com/KaramelBytes/healthscope/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the explorer page as an HTTP dashboard",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		applyDatasetFlags(cmd, &c, args)
		if cmd.Flags().Changed("addr") {
			c.ListenAddr = serveAddr
		}
		opt, err := explorerOptions(c)
		if err != nil {
			return err
		}
		log, err := newLogger(cmd, c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s := explorer.New(opt, log)
		stage := s.Run(ctx, &display.Recorder{})
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %s (stage %s)\n", opt.Path, stage)
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on http://%s (Ctrl+C to stop)\n", c.ListenAddr)
		return server.New(s, log).ListenAndServe(ctx, c.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addDatasetFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8501", "listen address")
}
