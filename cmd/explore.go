package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/healthscope/internal/config"
	"github.com/KaramelBytes/healthscope/internal/display"
	"github.com/KaramelBytes/healthscope/internal/explorer"
	"github.com/KaramelBytes/healthscope/internal/utils"
)

var (
	expThreshold   float64
	expPreviewRows int
	expXColumn     string
	expColor       string
	expDelimiter   string
	expDecimal     string
	expThousands   string
	expSheetName   string
	expMaxRows     int
	expPlotDir     string
	expOutputPath  string
)

var exploreCmd = &cobra.Command{
	Use:   "explore [file]",
	Short: "Render the explorer page as markdown",
	Long: `Loads the dataset, describes it, filters on the first numeric column at its
median and plots the filtered rows. --threshold then applies a slider change
without reloading. Load and processing errors are part of the page, not the
exit status.`,
	Args: cobra.MaximumNArgs(1),
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

		var buf bytes.Buffer
		var out io.Writer = cmd.OutOrStdout()
		if expOutputPath != "" {
			out = &buf
		}
		md := display.NewMarkdown(out)
		if expPlotDir != "" {
			md.WithPlotDir(expPlotDir)
		}

		s := explorer.New(opt, log)
		stage := s.Run(cmd.Context(), md)
		if cmd.Flags().Changed("threshold") {
			if !stage.Filterable() {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: --threshold ignored, page ended in stage %s\n", stage)
			} else if _, err := s.OnThresholdChange(expThreshold, md); err != nil && !isDisplayed(err) {
				return fmt.Errorf("apply threshold: %w", err)
			}
		}
		if err := md.Err(); err != nil {
			return fmt.Errorf("write page: %w", err)
		}

		if expOutputPath != "" {
			if err := utils.SafeWriteFile(expOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote page to %s\n", expOutputPath)
		}
		for _, f := range md.FigureFiles() {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote figure to %s\n", f)
		}
		return nil
	},
}

// isDisplayed reports whether err was already shown on the page by the
// session's error boundary.
func isDisplayed(err error) bool {
	var pe *explorer.PipelineError
	return errors.As(err, &pe)
}

// applyDatasetFlags overlays the dataset flags shared by explore, describe and serve.
func applyDatasetFlags(cmd *cobra.Command, c *cfgpkg.Global, args []string) {
	if len(args) == 1 {
		c.DataPath = args[0]
	}
	f := cmd.Flags()
	if f.Changed("preview-rows") {
		c.PreviewRows = expPreviewRows
	}
	if f.Changed("x") {
		c.XColumn = expXColumn
	}
	if f.Changed("color") {
		c.ColorColumn = expColor
	}
	if f.Changed("delimiter") {
		c.Delimiter = expDelimiter
	}
	if f.Changed("decimal") {
		c.DecimalSeparator = expDecimal
	}
	if f.Changed("thousands") {
		c.ThousandsSeparator = expThousands
	}
	if f.Changed("sheet-name") {
		c.SheetName = expSheetName
	}
	if f.Changed("max-rows") {
		c.MaxRows = expMaxRows
	}
}

func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&expPreviewRows, "preview-rows", 10, "rows shown in previews")
	cmd.Flags().StringVar(&expXColumn, "x", "year", "x-axis column (never used as the filter column)")
	cmd.Flags().StringVar(&expColor, "color", "country", "column that colors the scatter plot")
	cmd.Flags().StringVar(&expDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'|'|' (default from extension)")
	cmd.Flags().StringVar(&expDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	cmd.Flags().StringVar(&expThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	cmd.Flags().StringVar(&expSheetName, "sheet-name", "", "XLSX sheet to read (default first sheet)")
	cmd.Flags().IntVar(&expMaxRows, "max-rows", 0, "read at most this many rows (0 = all)")
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	addDatasetFlags(exploreCmd)
	exploreCmd.Flags().Float64Var(&expThreshold, "threshold", 0, "apply this filter threshold after the initial page")
	exploreCmd.Flags().StringVar(&expPlotDir, "plot-dir", "", "directory to write plotly figure JSON files")
	exploreCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "write the page to this file instead of stdout")
}
