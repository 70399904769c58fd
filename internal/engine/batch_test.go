package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/source"
	"github.com/pankaj-dahiya-devops/netaudit/internal/store"
)

// scriptedEngine fails for content containing "FAIL" and otherwise returns a
// report with one finding per line.
type scriptedEngine struct{}

func (scriptedEngine) Analyze(fileName, text string) (*models.DeviceReport, error) {
	if strings.Contains(text, "FAIL") {
		return nil, fmt.Errorf("analyze %q: module BROKEN failed", fileName)
	}
	var findings []models.Finding
	for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
		findings = append(findings, nc(l, models.SeverityLow))
	}
	return reportWith(fileName, findings...), nil
}

// failingStore rejects every Put.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (*models.DeviceReport, error) {
	return nil, store.ErrNotFound
}
func (failingStore) Put(context.Context, *models.DeviceReport) error { return errors.New("disk full") }
func (failingStore) Close() error                                    { return nil }

func docs(n int) []source.Document {
	out := make([]source.Document, n)
	for i := range out {
		out[i] = source.Document{Name: fmt.Sprintf("dev%02d.txt", i), Content: "check-a\ncheck-b"}
	}
	return out
}

func TestBatch_PreservesInputOrder(t *testing.T) {
	in := docs(20)
	res, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(context.Background(), in, BatchOptions{Workers: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Reports) != len(in) {
		t.Fatalf("reports: got %d; want %d", len(res.Reports), len(in))
	}
	for i, r := range res.Reports {
		if r.FileName != in[i].Name {
			t.Errorf("reports[%d]: got %q; want %q", i, r.FileName, in[i].Name)
		}
	}
	if len(res.Failures) != 0 {
		t.Errorf("unexpected failures: %v", res.Failures)
	}
	if res.Fleet.KPIs.TotalDevices != len(in) {
		t.Errorf("fleet devices: got %d; want %d", res.Fleet.KPIs.TotalDevices, len(in))
	}
}

func TestBatch_ProgressIsMonotonic(t *testing.T) {
	in := docs(12)
	var (
		mu   sync.Mutex
		seen []int
		file = map[string]bool{}
	)
	opts := BatchOptions{
		Workers: 4,
		Progress: func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			if p.Total != len(in) {
				t.Errorf("Total: got %d; want %d", p.Total, len(in))
			}
			seen = append(seen, p.Processed)
			file[p.CurrentFile] = true
		},
	}
	if _, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(context.Background(), in, opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := make([]int, len(in))
	for i := range want {
		want[i] = i + 1
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("progress: got %v; want %v", seen, want)
	}
	if len(file) != len(in) {
		t.Errorf("progress named %d distinct files; want %d", len(file), len(in))
	}
}

func TestBatch_FailureRecorded(t *testing.T) {
	in := docs(3)
	in[1].Content = "FAIL"
	res, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(context.Background(), in, BatchOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Reports) != 2 {
		t.Errorf("reports: got %d; want 2", len(res.Reports))
	}
	if len(res.Failures) != 1 || res.Failures[0].FileName != "dev01.txt" {
		t.Fatalf("failures: got %+v", res.Failures)
	}
	if !strings.Contains(res.Failures[0].Error, "BROKEN") {
		t.Errorf("failure error: got %q", res.Failures[0].Error)
	}
	if res.Fleet.KPIs.TotalDevices != 2 {
		t.Errorf("failed devices must not enter the fleet report, got %d devices", res.Fleet.KPIs.TotalDevices)
	}
}

func TestBatch_FailFast(t *testing.T) {
	in := docs(5)
	in[0].Content = "FAIL"
	res, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(context.Background(), in, BatchOptions{Workers: 1, FailFast: true})
	if err == nil {
		t.Fatal("expected error with FailFast")
	}
	if res != nil {
		t.Error("no result should be returned when failing fast")
	}
}

func TestBatch_StoresReports(t *testing.T) {
	st := store.NewMemoryStore()
	in := docs(4)
	if _, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(context.Background(), in, BatchOptions{Store: st}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Len() != len(in) {
		t.Errorf("stored: got %d; want %d", st.Len(), len(in))
	}
	r, err := st.Get(context.Background(), "dev02.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Summary.TotalChecks != 2 {
		t.Errorf("stored report TotalChecks: got %d; want 2", r.Summary.TotalChecks)
	}
}

func TestBatch_StoreErrorFailsDevice(t *testing.T) {
	res, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(context.Background(), docs(2), BatchOptions{Store: failingStore{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Reports) != 0 || len(res.Failures) != 2 {
		t.Fatalf("got %d reports and %d failures; want 0 and 2", len(res.Reports), len(res.Failures))
	}
	if !strings.Contains(res.Failures[0].Error, "disk full") {
		t.Errorf("failure error: got %q", res.Failures[0].Error)
	}
}

func TestBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(ctx, docs(3), BatchOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v; want context.Canceled", err)
	}
}

func TestBatch_Empty(t *testing.T) {
	res, err := NewBatchAnalyzer(scriptedEngine{}, nil).Run(context.Background(), nil, BatchOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Reports) != 0 || res.Fleet.KPIs.OverallRisk != models.RiskIndeterminate {
		t.Errorf("got %+v", res.Fleet.KPIs)
	}
}
