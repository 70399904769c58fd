package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/netaudit/internal/engine"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/output"
	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
	"github.com/pankaj-dahiya-devops/netaudit/internal/source"
	"github.com/pankaj-dahiya-devops/netaudit/internal/store"
)

// reportFlags are the presentation flags shared by the single-device
// commands.
type reportFlags struct {
	format     string
	summary    bool
	all        bool
	lines      bool
	outputPath string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "report", string(engine.ReportFormatTable), "Output format: json or table")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "Print compact summary: score, risk, severity breakdown, top issues")
	cmd.Flags().BoolVar(&f.all, "all", false, "Include COMPLIANT and NOT_APPLICABLE findings in the table")
	cmd.Flags().BoolVar(&f.lines, "lines", false, "Show the affected configuration lines of each finding")
	cmd.Flags().StringVar(&f.outputPath, "output", "", "Write full JSON to this file path (in addition to stdout output)")
}

func (f *reportFlags) validate() error {
	switch engine.ReportFormat(f.format) {
	case engine.ReportFormatJSON, engine.ReportFormatTable:
		return nil
	}
	return fmt.Errorf("unknown report format %q (want json or table)", f.format)
}

func (f *reportFlags) isJSON() bool { return engine.ReportFormat(f.format) == engine.ReportFormatJSON }

func newAnalyzeCmd(a *app) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Audit one device configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			doc, err := source.ReadFile(args[0])
			if err != nil {
				return err
			}
			report, err := a.engine().Analyze(doc.Name, doc.Content)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
				if err := st.Put(cmd.Context(), report); err != nil {
					return err
				}
				a.logger.Info("report stored", zap.String("file", report.FileName), zap.String("store", a.cfg.Store.Backend))
			}

			if flags.outputPath != "" {
				if err := output.WriteJSONFile(flags.outputPath, report); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			switch {
			case flags.isJSON():
				if err := output.WriteJSON(w, report); err != nil {
					return err
				}
			case flags.summary:
				output.RenderSummary(w, report, a.colored)
			default:
				opts := a.tableOptions()
				opts.IncludeCompliant = flags.all
				opts.ShowLines = flags.lines
				output.RenderReport(w, report, opts)
			}

			if fail, reason := policy.ShouldFail(report, a.policy); fail {
				return fmt.Errorf("policy enforcement failed: %s", reason)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "show FILE_NAME",
		Short: "Print a report saved in the report store",
		Long:  "Print a report saved in the report store by analyze or fleet. FILE_NAME is the analysed file's base name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if st == nil {
				return errors.New("no report store configured (set --store or store.backend)")
			}
			defer st.Close()

			report, err := st.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no stored report for %q", args[0])
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case flags.isJSON():
				return output.WriteJSON(w, report)
			case flags.summary:
				output.RenderSummary(w, report, a.colored)
			default:
				opts := a.tableOptions()
				opts.IncludeCompliant = flags.all
				opts.ShowLines = flags.lines
				output.RenderReport(w, report, opts)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// loadReport returns the report for path. A .json file is read as a saved
// DeviceReport (see analyze --output); anything else is analysed.
func (a *app) loadReport(path string) (*models.DeviceReport, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read report %s: %w", path, err)
		}
		var r models.DeviceReport
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", path, err)
		}
		return &r, nil
	}

	doc, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.engine().Analyze(doc.Name, doc.Content)
}
