package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/netaudit/internal/engine"
	"github.com/pankaj-dahiya-devops/netaudit/internal/output"
	"github.com/pankaj-dahiya-devops/netaudit/internal/source"
)

type fleetFlags struct {
	format     string
	workers    int
	failFast   bool
	progress   bool
	s3Bucket   string
	s3Prefix   string
	configMaps bool
	outputPath string
}

func newFleetCmd(a *app) *cobra.Command {
	var flags fleetFlags

	cmd := &cobra.Command{
		Use:   "fleet [PATH...]",
		Short: "Audit many device configurations and aggregate the results",
		Long: "Audit every configuration found in the given files and directories, an S3 prefix\n" +
			"(--s3-bucket/--s3-prefix) or Kubernetes ConfigMaps (--configmaps), then print the\n" +
			"fleet report. Exits non-zero when any device fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rf := reportFlags{format: flags.format}
			if err := rf.validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			src, err := a.fleetSource(ctx, args, flags)
			if err != nil {
				return err
			}
			docs, err := src.Documents(ctx)
			if err != nil {
				return fmt.Errorf("collect configurations: %w", err)
			}
			if len(docs) == 0 {
				return errors.New("no configurations found")
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			workers := flags.workers
			if workers <= 0 {
				workers = a.cfg.Workers
			}
			opts := engine.BatchOptions{
				Workers:  workers,
				FailFast: flags.failFast,
				Store:    st,
			}
			if flags.progress {
				opts.Progress = progressPrinter(cmd.ErrOrStderr())
			}

			res, err := engine.NewBatchAnalyzer(a.engine(), a.logger).Run(ctx, docs, opts)
			if err != nil {
				return fmt.Errorf("fleet analysis failed: %w", err)
			}

			if flags.outputPath != "" {
				if err := output.WriteJSONFile(flags.outputPath, res); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if rf.isJSON() {
				if err := output.WriteJSON(w, res); err != nil {
					return err
				}
			} else {
				output.RenderFleet(w, res.Fleet, a.colored)
				if len(res.Failures) > 0 {
					fmt.Fprintln(w)
					fmt.Fprintf(w, "Failed Devices (%d)\n", len(res.Failures))
					for _, f := range res.Failures {
						fmt.Fprintf(w, "  %s: %s\n", f.FileName, f.Error)
					}
				}
			}

			if n := len(res.Failures); n > 0 {
				return fmt.Errorf("%d of %d devices failed", n, len(docs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "report", string(engine.ReportFormatTable), "Output format: json or table")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent analyses (default: workers from config)")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "Abort on the first device that fails")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "Print progress to stderr")
	cmd.Flags().StringVar(&flags.s3Bucket, "s3-bucket", "", "Read configurations from this S3 bucket")
	cmd.Flags().StringVar(&flags.s3Prefix, "s3-prefix", "", "Key prefix within --s3-bucket")
	cmd.Flags().BoolVar(&flags.configMaps, "configmaps", false, "Read configurations from Kubernetes ConfigMaps (kubernetes.* config keys)")
	cmd.Flags().StringVar(&flags.outputPath, "output", "", "Write the full JSON result to this file path")
	return cmd
}

// fleetSource picks the configuration source from the flags. Exactly one of
// paths, an S3 bucket and ConfigMaps must be given.
func (a *app) fleetSource(ctx context.Context, paths []string, flags fleetFlags) (source.Source, error) {
	n := 0
	for _, set := range []bool{len(paths) > 0, flags.s3Bucket != "", flags.configMaps} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, errors.New("give exactly one of: PATH arguments, --s3-bucket or --configmaps")
	}

	switch {
	case flags.s3Bucket != "":
		pc, err := a.aws.LoadProfile(ctx, a.cfg.AWS.Profile, a.cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return source.S3Source{Client: pc.Clients.S3, Bucket: flags.s3Bucket, Prefix: flags.s3Prefix}, nil
	case flags.configMaps:
		k := a.cfg.Kubernetes
		client, info, err := a.kube.ClientsetForContext(k.Context)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("reading configmaps",
			zap.String("context", info.ContextName),
			zap.String("namespace", k.Namespace),
			zap.String("selector", k.Selector),
		)
		return source.ConfigMapSource{Client: client, Namespace: k.Namespace, Selector: k.Selector}, nil
	default:
		return source.DirSource{Paths: paths}, nil
	}
}

// progressPrinter returns a progress callback that writes one line per
// finished device to w.
func progressPrinter(w io.Writer) func(engine.Progress) {
	return func(p engine.Progress) {
		fmt.Fprintf(w, "[%d/%d] %s\n", p.Processed, p.Total, p.CurrentFile)
	}
}
