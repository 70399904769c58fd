// Package cisco provides the Cisco IOS / NX-OS hardening rule pack.
// It groups the ten check modules into a single registration call.
package cisco

import "github.com/pankaj-dahiya-devops/netaudit/internal/rules"

// New returns the check modules in report order. The order is part of the
// report contract: findings appear module by module in this sequence.
func New() []rules.Rule {
	return []rules.Rule{
		rules.GeneralRule{},   // GENERAL
		rules.PasswordRule{},  // PASSWORDS
		rules.ServiceRule{},   // SERVICES
		rules.LoggingRule{},   // LOGGING
		rules.AAARule{},       // AAA
		rules.SSHRule{},       // SSH
		rules.VTYRule{},       // VTY
		rules.SNMPRule{},      // SNMP
		rules.RoutingRule{},   // ROUTING
		rules.InterfaceRule{}, // INTERFACES
	}
}

// NewRegistry returns a registry holding every rule of the pack.
func NewRegistry() *rules.DefaultRuleRegistry {
	reg := rules.NewDefaultRuleRegistry()
	for _, r := range New() {
		reg.Register(r)
	}
	return reg
}
