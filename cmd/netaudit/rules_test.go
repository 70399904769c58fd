package main

import (
	"strings"
	"testing"
)

func TestRulesCmd_ListsModulesInOrder(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("rules")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	order := []string{"GENERAL", "PASSWORDS", "SERVICES", "LOGGING", "AAA", "SSH", "VTY", "SNMP", "ROUTING", "INTERFACES"}
	last := -1
	for _, id := range order {
		i := strings.Index(out, id)
		if i < 0 {
			t.Fatalf("module %s missing\ngot:\n%s", id, out)
		}
		if i < last {
			t.Errorf("module %s out of order\ngot:\n%s", id, out)
		}
		last = i
	}
	if strings.Contains(out, "disabled") {
		t.Errorf("no module should be disabled without a policy\ngot:\n%s", out)
	}
}

func TestRulesCmd_ShowsPolicyDisabled(t *testing.T) {
	env := newTestEnv(t)
	pol := env.write("policy.yaml", "version: 1\nmodules:\n  SNMP:\n    enabled: false\n")
	out, err := env.run("rules", "--policy", pol)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "SNMP") && !strings.Contains(line, "disabled by policy") {
			t.Errorf("SNMP row should be disabled: %q", line)
		}
		if strings.HasPrefix(line, "SSH ") && strings.Contains(line, "disabled") {
			t.Errorf("SSH row should be enabled: %q", line)
		}
	}
}
