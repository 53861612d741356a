package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/display"
	"github.com/KaramelBytes/healthscope/internal/explorer"
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print the dataset shape, column types and a preview",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		applyDatasetFlags(cmd, &c, args)
		opt, err := explorerOptions(c)
		if err != nil {
			return err
		}
		log, err := newLogger(cmd, c)
		if err != nil {
			return err
		}
		t, err := dataset.Load(cmd.Context(), opt.Path, opt.Load)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		log.Debug("dataset loaded", slog.String("path", opt.Path), slog.Int("rows", t.Rows()))
		md := display.NewMarkdown(cmd.OutOrStdout())
		explorer.Describe(md, t, opt.PreviewRows)
		return md.Err()
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addDatasetFlags(describeCmd)
}
