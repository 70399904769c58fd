package main

import (
	"encoding/json"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/pankaj-dahiya-devops/netaudit/internal/engine"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	kube "github.com/pankaj-dahiya-devops/netaudit/internal/providers/kubernetes"
)

func decodeBatch(t *testing.T, out string) engine.BatchResult {
	t.Helper()
	var res engine.BatchResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a JSON batch result: %v\n%s", err, out)
	}
	return res
}

func TestFleet_Directory(t *testing.T) {
	env := newTestEnv(t)
	env.write("site/edge-r1.txt", weakIOS)
	env.write("site/edge-r2.txt", hardenedIOS)
	env.write("site/core/sw1.cfg", weakIOS)
	env.write("site/README.md", "not a config")

	out, err := env.run("fleet", "site", "--report", "json", "--workers", "2")
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	res := decodeBatch(t, out)
	if len(res.Reports) != 3 {
		t.Fatalf("reports: got %d; want 3", len(res.Reports))
	}
	if res.Fleet.KPIs.TotalDevices != 3 {
		t.Errorf("TotalDevices: got %d; want 3", res.Fleet.KPIs.TotalDevices)
	}
	if res.Fleet.KPIs.OverallRisk != models.RiskCritical {
		t.Errorf("OverallRisk: got %v; want Critical (enable password)", res.Fleet.KPIs.OverallRisk)
	}
	if len(res.Fleet.TopCommonFindings) == 0 || res.Fleet.TopCommonFindings[0].Count != 3 {
		t.Errorf("top common finding should be on all 3 devices: %+v", res.Fleet.TopCommonFindings)
	}
}

func TestFleet_TableAndProgress(t *testing.T) {
	env := newTestEnv(t)
	a := env.write("a.txt", weakIOS)
	b := env.write("b.txt", hardenedIOS)

	out, err := env.run("fleet", a, b, "--progress")
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	for _, want := range []string{"Devices: 2", "Risk Distribution", "Score Distribution", "DEVICE", "a.txt", "b.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestFleet_S3Source(t *testing.T) {
	env := newTestEnv(t)
	s3c := &fakeS3{objects: map[string]string{
		"site1/edge-r1.txt": weakIOS,
		"site1/edge-r2.txt": hardenedIOS,
		"site2/other.txt":   weakIOS,
	}}
	env.deps.aws = goodMockAWS(s3c)
	t.Setenv("NETAUDIT_AWS_PROFILE", "netops")

	out, err := env.run("fleet", "--s3-bucket", "configs", "--s3-prefix", "site1/", "--report", "json")
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	res := decodeBatch(t, out)
	if len(res.Reports) != 2 {
		t.Fatalf("reports: got %d; want 2", len(res.Reports))
	}
	if res.Reports[0].FileName != "edge-r1.txt" {
		t.Errorf("first report: got %q", res.Reports[0].FileName)
	}
	if got := env.deps.aws.(*mockAWSProvider).lastProfile; got != "netops" {
		t.Errorf("profile: got %q; want %q", got, "netops")
	}
}

func TestFleet_S3StoreWritesReports(t *testing.T) {
	env := newTestEnv(t)
	s3c := &fakeS3{objects: map[string]string{}}
	env.deps.aws = goodMockAWS(s3c)
	t.Setenv("NETAUDIT_STORE_S3_BUCKET", "audit-reports")
	a := env.write("edge-r1.txt", weakIOS)

	if _, err := env.run("fleet", a, "--store", "s3"); err != nil {
		t.Fatalf("fleet: %v", err)
	}
	if _, ok := s3c.objects["reports/edge-r1.txt.json"]; !ok {
		var keys []string
		for k := range s3c.objects {
			keys = append(keys, k)
		}
		t.Errorf("report not stored under reports/edge-r1.txt.json; keys: %v", keys)
	}
}

func TestFleet_ConfigMaps(t *testing.T) {
	env := newTestEnv(t)
	kp := &testKubeProvider{
		clientset: fake.NewClientset(&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Namespace: "netops", Name: "site-a", Labels: map[string]string{"app": "netaudit"}},
			Data:       map[string]string{"sw1.txt": weakIOS, "sw2.txt": hardenedIOS},
		}),
		info: kube.ClusterInfo{ContextName: "lab"},
	}
	env.deps.kube = kp
	t.Setenv("NETAUDIT_KUBERNETES_NAMESPACE", "netops")
	t.Setenv("NETAUDIT_KUBERNETES_SELECTOR", "app=netaudit")
	t.Setenv("NETAUDIT_KUBERNETES_CONTEXT", "lab")

	out, err := env.run("fleet", "--configmaps", "--report", "json")
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	res := decodeBatch(t, out)
	var names []string
	for _, r := range res.Reports {
		names = append(names, r.FileName)
	}
	if strings.Join(names, ",") != "site-a/sw1.txt,site-a/sw2.txt" {
		t.Errorf("reports: got %v", names)
	}
	if kp.calledWithCtx != "lab" {
		t.Errorf("context: got %q; want %q", kp.calledWithCtx, "lab")
	}
}

func TestFleet_SourceSelection(t *testing.T) {
	env := newTestEnv(t)
	a := env.write("a.txt", weakIOS)
	tests := []struct {
		name string
		args []string
	}{
		{"nothing", []string{"fleet"}},
		{"paths and s3", []string{"fleet", a, "--s3-bucket", "b"}},
		{"s3 and configmaps", []string{"fleet", "--s3-bucket", "b", "--configmaps"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.run(tc.args...); err == nil || !strings.Contains(err.Error(), "exactly one") {
				t.Errorf("got %v; want source selection error", err)
			}
		})
	}
}

func TestFleet_EmptyDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.write("empty/notes.md", "nothing here")
	if _, err := env.run("fleet", "empty"); err == nil || !strings.Contains(err.Error(), "no configurations") {
		t.Errorf("got %v; want no configurations error", err)
	}
}
