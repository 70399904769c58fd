package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/pankaj-dahiya-devops/netaudit/internal/config"
	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
	"github.com/pankaj-dahiya-devops/netaudit/internal/providers/aws/common"
	kube "github.com/pankaj-dahiya-devops/netaudit/internal/providers/kubernetes"
	"github.com/pankaj-dahiya-devops/netaudit/internal/rulepacks/cisco"
	"github.com/pankaj-dahiya-devops/netaudit/internal/store"
)

// DoctorResult is the structured output of netaudit doctor. It can be
// serialised to JSON via --format=json or rendered as a human-readable table
// (default).
//
// AWS and Kubernetes are optional integrations: their failures only make the
// environment unhealthy when the configuration depends on them (S3 store for
// AWS, an explicit kubernetes.context for Kubernetes).
type DoctorResult struct {
	Config struct {
		File string `json:"file,omitempty"`
	} `json:"config"`

	Policy struct {
		Path    string   `json:"path,omitempty"`
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	Store struct {
		Backend string `json:"backend"`
		OK      bool   `json:"ok"`
		Error   string `json:"error,omitempty"`
	} `json:"store"`

	AWS struct {
		Required    bool     `json:"required"`
		Profile     string   `json:"profile,omitempty"`
		Credentials bool     `json:"credentials_ok"`
		AccountID   string   `json:"account_id,omitempty"`
		Profiles    []string `json:"profiles,omitempty"`
		Error       string   `json:"error,omitempty"`
	} `json:"aws"`

	Kubernetes struct {
		Required     bool   `json:"required"`
		KubeconfigOK bool   `json:"kubeconfig_ok"`
		Context      string `json:"context,omitempty"`
		APIReachable bool   `json:"api_reachable"`
		Error        string `json:"error,omitempty"`
	} `json:"kubernetes"`

	OverallHealthy bool `json:"overall_healthy"`
}

func newDoctorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			result, err := runDoctor(cmd.Context(), a, cmd.OutOrStdout(), format)
			if err != nil {
				// Rendering failure.
				return err
			}
			if !result.OverallHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	return cmd
}

// errUnhealthy is returned by doctor after the diagnostics were printed.
var errUnhealthy = errors.New("environment is not healthy")

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures (e.g. JSON encode error).
// Callers must inspect result.OverallHealthy to determine whether the
// environment is healthy.
func runDoctor(ctx context.Context, a *app, w io.Writer, format string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, a.cfg, a.loader.ConfigPath(), a.aws, a.kube)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// It performs no rendering; callers decide how to present the result.
func collectDoctorResult(ctx context.Context, cfg *config.Config, configFile string, awsProvider common.AWSClientProvider, kubeProvider kube.KubeClientProvider) DoctorResult {
	var result DoctorResult
	result.Config.File = configFile

	// Policy: stat → load → validate (file is optional).
	result.Policy.Path = cfg.Policy.Path
	if cfg.Policy.Path != "" {
		if _, statErr := os.Stat(cfg.Policy.Path); statErr != nil {
			result.Policy.Errors = []string{statErr.Error()}
		} else {
			result.Policy.Present = true
			p, loadErr := policy.LoadPolicy(cfg.Policy.Path)
			if loadErr != nil {
				result.Policy.Errors = []string{loadErr.Error()}
			} else if errs := policy.Validate(p, cisco.NewRegistry().IDs()); len(errs) > 0 {
				for _, e := range errs {
					result.Policy.Errors = append(result.Policy.Errors, e.Error())
				}
			} else {
				result.Policy.Valid = true
			}
		}
	}

	// AWS: shared config profiles → credentials → STS account ID.
	result.AWS.Required = cfg.Store.Backend == string(store.BackendS3)
	result.AWS.Profile = cfg.AWS.Profile
	if names, err := common.ProfileNames(); err == nil {
		result.AWS.Profiles = names
	}
	var s3Client store.S3API
	profileCfg, err := awsProvider.LoadProfile(ctx, cfg.AWS.Profile, cfg.AWS.Region)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		s3Client = profileCfg.Clients.S3
		accountID, err := common.ResolveAccountID(ctx, profileCfg)
		if err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.Credentials = true
			result.AWS.AccountID = accountID
		}
	}

	// Store: open the configured backend.
	result.Store.Backend = cfg.Store.Backend
	st, err := store.Open(store.Options{
		Backend:    store.Backend(cfg.Store.Backend),
		SQLitePath: cfg.Store.SQLitePath,
		S3:         s3Client,
		S3Bucket:   cfg.Store.S3.Bucket,
		S3Prefix:   cfg.Store.S3.Prefix,
	})
	if err != nil {
		result.Store.Error = err.Error()
	} else {
		result.Store.OK = true
		if st != nil {
			st.Close()
		}
	}

	// Kubernetes: kubeconfig load → context → API reachability probe.
	result.Kubernetes.Required = cfg.Kubernetes.Context != ""
	clientset, info, err := kubeProvider.ClientsetForContext(cfg.Kubernetes.Context)
	if err != nil {
		result.Kubernetes.Error = err.Error()
	} else {
		result.Kubernetes.KubeconfigOK = true
		result.Kubernetes.Context = info.ContextName
		_, err = clientset.CoreV1().ConfigMaps(cfg.Kubernetes.Namespace).List(ctx, metav1.ListOptions{Limit: 1})
		if err != nil {
			result.Kubernetes.Error = err.Error()
		} else {
			result.Kubernetes.APIReachable = true
		}
	}

	result.OverallHealthy = (cfg.Policy.Path == "" || result.Policy.Valid) &&
		result.Store.OK &&
		(!result.AWS.Required || result.AWS.Credentials) &&
		(!result.Kubernetes.Required || result.Kubernetes.APIReachable)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nConfig:")
	if result.Config.File != "" {
		doctorPrint(w, "Config file", "OK", result.Config.File)
	} else {
		doctorPrint(w, "Config file", "Not found (defaults)", "")
	}

	fmt.Fprintln(w, "\nPolicy:")
	switch {
	case result.Policy.Path == "":
		doctorPrint(w, "Policy file", "Not configured (optional)", "")
	case !result.Policy.Present:
		for _, e := range result.Policy.Errors {
			doctorPrint(w, "Policy file", "FAIL", e)
		}
	default:
		doctorPrint(w, "Policy file", "YES", result.Policy.Path)
		if result.Policy.Valid {
			doctorPrint(w, "Policy valid", "OK", "")
		} else {
			for _, e := range result.Policy.Errors {
				doctorPrint(w, "Policy valid", "FAIL", e)
			}
		}
	}

	fmt.Fprintln(w, "\nStore:")
	if result.Store.OK {
		doctorPrint(w, "Backend", "OK", result.Store.Backend)
	} else {
		doctorPrint(w, "Backend", "FAIL", result.Store.Error)
	}

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s)%s:\n", result.AWS.Profile, optional(result.AWS.Required))
	} else {
		fmt.Fprintf(w, "\nAWS%s:\n", optional(result.AWS.Required))
	}
	doctorPrint(w, "Profiles found", fmt.Sprint(len(result.AWS.Profiles)), "")
	if result.AWS.Credentials {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
	} else {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
	}

	fmt.Fprintf(w, "\nKubernetes%s:\n", optional(result.Kubernetes.Required))
	if !result.Kubernetes.KubeconfigOK {
		doctorPrint(w, "Kubeconfig", "FAIL", result.Kubernetes.Error)
		doctorPrint(w, "Current Context", "FAIL", "skipped")
		doctorPrint(w, "API Reachable", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Kubeconfig", "OK", "")
		doctorPrint(w, "Current Context", "OK", result.Kubernetes.Context)
		if result.Kubernetes.APIReachable {
			doctorPrint(w, "API Reachable", "OK", "")
		} else {
			doctorPrint(w, "API Reachable", "FAIL", result.Kubernetes.Error)
		}
	}

	fmt.Fprintln(w)
	if result.OverallHealthy {
		fmt.Fprintln(w, "Overall: HEALTHY")
	} else {
		fmt.Fprintln(w, "Overall: UNHEALTHY")
	}
}

func optional(required bool) string {
	if required {
		return ""
	}
	return " (optional)"
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
