package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

func findingStatus(r models.DeviceReport, id string) (models.ComplianceStatus, bool) {
	for _, f := range r.Findings {
		if f.ID == id {
			return f.Status, true
		}
	}
	return "", false
}

func TestAnalyze_Table(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)

	out, err := env.run("analyze", path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"edge-r1.txt", "SEVERITY", "check-2", "CRITICAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestAnalyze_JSON(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)

	out, err := env.run("analyze", path, "--report", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var r models.DeviceReport
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if r.FileName != "edge-r1.txt" {
		t.Errorf("FileName: got %q; want %q", r.FileName, "edge-r1.txt")
	}
	if st, ok := findingStatus(r, "check-2"); !ok || st != models.StatusNonCompliant {
		t.Errorf("check-2: got %q (present=%v); want NON_COMPLIANT", st, ok)
	}
	if r.Summary.TotalChecks != len(r.Findings) {
		t.Errorf("TotalChecks %d != %d findings", r.Summary.TotalChecks, len(r.Findings))
	}
}

func TestAnalyze_SummaryAndOutputFile(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)
	saved := filepath.Join(env.dir, "out", "edge-r1.json")
	if err := os.MkdirAll(filepath.Dir(saved), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := env.run("analyze", path, "--summary", "--output", saved)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Severity Breakdown") || !strings.Contains(out, "Top Issues") {
		t.Errorf("summary output unexpected\ngot:\n%s", out)
	}
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("--output file not written: %v", err)
	}
}

func TestAnalyze_PolicyEnforcement(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)
	pol := env.write("policy.yaml", "version: 1\nenforcement:\n  fail_on_severity: critical\n")

	out, err := env.run("analyze", path, "--policy", pol)
	if err == nil || !strings.Contains(err.Error(), "policy enforcement failed") {
		t.Fatalf("got %v; want policy enforcement error", err)
	}
	if !strings.Contains(out, "check-2") {
		t.Errorf("report should still be printed before failing\ngot:\n%s", out)
	}
}

func TestAnalyze_PolicyDisablesModule(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)
	pol := env.write("policy.yaml", "version: 1\nmodules:\n  PASSWORDS:\n    enabled: false\n")

	out, err := env.run("analyze", path, "--policy", pol, "--report", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var r models.DeviceReport
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatal(err)
	}
	for _, f := range r.Findings {
		if f.Module == "PASSWORDS" {
			t.Fatalf("finding %q from disabled module", f.ID)
		}
	}
}

func TestAnalyze_InvalidPolicy(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)
	pol := env.write("policy.yaml", "version: 1\nmodules:\n  BOGUS:\n    enabled: false\n")

	if _, err := env.run("analyze", path, "--policy", pol); err == nil || !strings.Contains(err.Error(), "BOGUS") {
		t.Errorf("got %v; want error naming the unknown module", err)
	}
}

func TestAnalyze_RejectsBinaryFile(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("firmware.bin", "\x00\x01\x02")
	if _, err := env.run("analyze", path); err == nil {
		t.Error("expected error for binary input")
	}
}

func TestAnalyze_BadReportFormat(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)
	if _, err := env.run("analyze", path, "--report", "xml"); err == nil {
		t.Error("expected error for unknown report format")
	}
}

func TestAnalyzeThenShow_SQLiteStore(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("edge-r1.txt", weakIOS)
	t.Setenv("NETAUDIT_STORE_SQLITE_PATH", filepath.Join(env.dir, "reports.db"))

	if _, err := env.run("analyze", path, "--store", "sqlite"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	out, err := env.run("show", "edge-r1.txt", "--store", "sqlite", "--report", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var r models.DeviceReport
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("show output is not a JSON report: %v", err)
	}
	if r.FileName != "edge-r1.txt" {
		t.Errorf("FileName: got %q", r.FileName)
	}

	if _, err := env.run("show", "missing.txt", "--store", "sqlite"); err == nil || !strings.Contains(err.Error(), "no stored report") {
		t.Errorf("got %v; want not-found error", err)
	}
}

func TestShow_RequiresStore(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run("show", "edge-r1.txt"); err == nil || !strings.Contains(err.Error(), "no report store") {
		t.Errorf("got %v; want missing store error", err)
	}
}
