package main

import (
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/netaudit/internal/engine"
	"github.com/pankaj-dahiya-devops/netaudit/internal/output"
)

func newCompareCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare BEFORE AFTER",
		Short: "Compare two snapshots of the same device",
		Long: "Compare two snapshots of the same device and list mitigated, pending and new issues.\n" +
			"Each argument is a configuration file or a JSON report saved with analyze --output.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := reportFlags{format: format}
			if err := flags.validate(); err != nil {
				return err
			}
			before, err := a.loadReport(args[0])
			if err != nil {
				return err
			}
			after, err := a.loadReport(args[1])
			if err != nil {
				return err
			}

			cmp := engine.CompareTemporal(before, after)
			if flags.isJSON() {
				return output.WriteJSON(cmd.OutOrStdout(), cmp)
			}
			output.RenderComparison(cmd.OutOrStdout(), cmp, a.tableOptions())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "report", string(engine.ReportFormatTable), "Output format: json or table")
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Contrast the open issues of two devices",
		Long: "Contrast the open issues of two different devices.\n" +
			"Each argument is a configuration file or a JSON report saved with analyze --output.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := reportFlags{format: format}
			if err := flags.validate(); err != nil {
				return err
			}
			left, err := a.loadReport(args[0])
			if err != nil {
				return err
			}
			right, err := a.loadReport(args[1])
			if err != nil {
				return err
			}

			cmp := engine.CompareDevices(left, right)
			if flags.isJSON() {
				return output.WriteJSON(cmd.OutOrStdout(), cmp)
			}
			output.RenderDeviceComparison(cmd.OutOrStdout(), cmp, a.tableOptions())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "report", string(engine.ReportFormatTable), "Output format: json or table")
	return cmd
}
