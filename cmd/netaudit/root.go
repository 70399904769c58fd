package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/netaudit/internal/config"
	"github.com/pankaj-dahiya-devops/netaudit/internal/engine"
	"github.com/pankaj-dahiya-devops/netaudit/internal/logging"
	"github.com/pankaj-dahiya-devops/netaudit/internal/output"
	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
	"github.com/pankaj-dahiya-devops/netaudit/internal/providers/aws/common"
	kube "github.com/pankaj-dahiya-devops/netaudit/internal/providers/kubernetes"
	"github.com/pankaj-dahiya-devops/netaudit/internal/rulepacks/cisco"
	"github.com/pankaj-dahiya-devops/netaudit/internal/store"
)

// deps are the external collaborators of the CLI. Tests replace them with
// fakes.
type deps struct {
	aws  common.AWSClientProvider
	kube kube.KubeClientProvider
	now  func() time.Time
}

// app is the state shared by every subcommand once the root command has
// loaded configuration.
type app struct {
	deps

	loader     *config.ViperLoader
	configFile string
	colored    bool

	cfg    *config.Config
	logger *zap.Logger
	policy *policy.PolicyConfig
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(deps{
		aws:  common.NewDefaultAWSClientProvider(),
		kube: kube.NewDefaultKubeClientProvider(),
	})
}

func newRootCmdWith(d deps) *cobra.Command {
	a := &app{deps: d, loader: config.NewViperLoader("")}

	root := &cobra.Command{
		Use:           "netaudit",
		Short:         "Cisco IOS / NX-OS configuration security auditor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./netaudit.yaml or ~/.config/netaudit/netaudit.yaml)")
	pf.BoolVar(&a.colored, "color", false, "Colour severity and risk labels")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: console or json")
	pf.String("policy", "", "Policy file applied to every analysis")
	pf.String("store", "", "Report store backend: none, memory, sqlite or s3")
	for key, flag := range map[string]string{
		"log.level":     "log-level",
		"log.format":    "log-format",
		"policy.path":   "policy",
		"store.backend": "store",
	} {
		_ = a.loader.V.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newAnalyzeCmd(a),
		newShowCmd(a),
		newCompareCmd(a),
		newDiffCmd(a),
		newFleetCmd(a),
		newRulesCmd(a),
		newDoctorCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads configuration, the logger and the policy.
func (a *app) init() error {
	a.loader.File = a.configFile
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logger

	if cfg.Policy.Path != "" {
		p, err := policy.LoadPolicy(cfg.Policy.Path)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
		if errs := policy.Validate(p, cisco.NewRegistry().IDs()); len(errs) > 0 {
			return fmt.Errorf("invalid policy %s: %w", cfg.Policy.Path, errors.Join(errs...))
		}
		a.policy = p
	}

	logger.Debug("configuration loaded",
		zap.String("config_file", a.loader.ConfigPath()),
		zap.String("policy", cfg.Policy.Path),
		zap.String("store", cfg.Store.Backend),
	)
	return nil
}

func (a *app) engine() *engine.DefaultEngine {
	return engine.NewDefaultEngine(cisco.NewRegistry(), a.policy, a.logger, a.now)
}

func (a *app) tableOptions() output.TableOptions {
	return output.TableOptions{Colored: a.colored}
}

// openStore opens the configured report store. It returns nil when the
// backend is none.
func (a *app) openStore(ctx context.Context) (store.ReportStore, error) {
	opts := store.Options{
		Backend:    store.Backend(a.cfg.Store.Backend),
		SQLitePath: a.cfg.Store.SQLitePath,
		S3Bucket:   a.cfg.Store.S3.Bucket,
		S3Prefix:   a.cfg.Store.S3.Prefix,
	}
	if opts.Backend == store.BackendS3 {
		pc, err := a.aws.LoadProfile(ctx, a.cfg.AWS.Profile, a.cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		opts.S3 = pc.Clients.S3
	}
	return store.Open(opts)
}
