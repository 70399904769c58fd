package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
	"github.com/pankaj-dahiya-devops/netaudit/internal/rulepacks/cisco"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the check modules in invocation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-12s  %-34s  %s\n", "ID", "NAME", "STATUS")
			fmt.Fprintln(w, strings.Repeat("-", 58))
			for _, r := range cisco.New() {
				status := "enabled"
				if !policy.ModuleEnabled(r.ID(), a.policy) {
					status = "disabled by policy"
				}
				fmt.Fprintf(w, "%-12s  %-34s  %s\n", r.ID(), r.Name(), status)
			}
			return nil
		},
	}
}
