package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabreport/internal/analysis"
	cfgpkg "github.com/KaramelBytes/tabreport/internal/config"
	"github.com/KaramelBytes/tabreport/internal/report"
	"github.com/spf13/cobra"
)

var (
	genOutput    string
	genCharts    bool
	genSummary   bool
	genPivot     bool
	genOverwrite bool
	genDelimiter string
	genSheet     string
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate an Excel report from a CSV/TSV/XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		delim := c.Delimiter
		if cmd.Flags().Changed("delimiter") {
			delim = genDelimiter
		}
		opt, err := loadOptions(delim, genSheet)
		if err != nil {
			return err
		}
		tbl, err := analysis.Load(path, opt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tbl.Summary())

		flags := reportFlags(cmd, c)
		out := genOutput
		if out == "" {
			out = defaultOutputPath(path)
		}
		gen := report.NewGenerator(logger)
		if _, err := gen.Generate(tbl, out, flags); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Report generated successfully: %s\n", filepath.Base(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output .xlsx path (default <input>_report.xlsx)")
	generateCmd.Flags().BoolVar(&genCharts, "charts", true, "include the charts sheet")
	generateCmd.Flags().BoolVar(&genSummary, "summary", true, "include the summary statistics sheet")
	generateCmd.Flags().BoolVar(&genPivot, "pivot", true, "include the column analysis sheet")
	generateCmd.Flags().BoolVar(&genOverwrite, "overwrite", true, "replace the output file if it exists")
	generateCmd.Flags().StringVar(&genDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	generateCmd.Flags().StringVar(&genSheet, "sheet", "", "XLSX input: sheet name to load (default first sheet)")
}

// reportFlags resolves sheet selection: explicit flags win over config.
func reportFlags(cmd *cobra.Command, g *cfgpkg.Global) report.Flags {
	f := report.Flags{
		IncludeCharts:  g.IncludeCharts,
		IncludeSummary: g.IncludeSummary,
		IncludeProfile: g.IncludePivot,
		Overwrite:      g.Overwrite,
	}
	fl := cmd.Flags()
	if fl.Changed("charts") {
		f.IncludeCharts = genCharts
	}
	if fl.Changed("summary") {
		f.IncludeSummary = genSummary
	}
	if fl.Changed("pivot") {
		f.IncludeProfile = genPivot
	}
	if fl.Changed("overwrite") {
		f.Overwrite = genOverwrite
	}
	return f
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_report.xlsx"
}

// loadOptions turns CLI/config strings into loader options.
func loadOptions(delimiter, sheet string) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	opt.Sheet = sheet
	switch delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delimiter)
	}
	return opt, nil
}
