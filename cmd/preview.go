package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabreport/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	previewRows      int
	previewDelimiter string
	previewSheet     string
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Load a dataset and print its schema and first rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		delim := c.Delimiter
		if cmd.Flags().Changed("delimiter") {
			delim = previewDelimiter
		}
		opt, err := loadOptions(delim, previewSheet)
		if err != nil {
			return err
		}
		tbl, err := analysis.Load(args[0], opt)
		if err != nil {
			return err
		}
		rows := c.MaxPreviewRows
		if cmd.Flags().Changed("rows") {
			rows = previewRows
		}
		if rows < 0 {
			return fmt.Errorf("--rows must be >= 0")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tbl.Summary())
		fmt.Fprintln(out)
		fmt.Fprint(out, tbl.Preview(rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVar(&previewRows, "rows", 100, "number of rows to show")
	previewCmd.Flags().StringVar(&previewDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	previewCmd.Flags().StringVar(&previewSheet, "sheet", "", "XLSX input: sheet name to load (default first sheet)")
}
