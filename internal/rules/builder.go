package rules

import (
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// Grouping decides how a rule branch that matched several config instances
// (interfaces, VTY ranges, SNMP communities...) is reported.
type Grouping int

const (
	// GroupSingle emits one finding for all instances under the base ID.
	GroupSingle Grouping = iota
	// GroupPerInstance emits one finding per instance with the instance key
	// appended to the base ID.
	GroupPerInstance
)

func (g Grouping) String() string {
	if g == GroupPerInstance {
		return "per-instance"
	}
	return "single"
}

// Instance is one config element that fell into a finding bucket.
type Instance struct {
	// Key names the instance, e.g. "GigabitEthernet0/1" or "0 4".
	Key string
	// Lines are the config fragments quoted in the finding.
	Lines []string
	// Detail carries an optional per-instance value such as the configured
	// transport protocols.
	Detail string
}

// Grouped turns one bucket of instances into findings. An empty bucket yields
// no findings. build receives the finding ID and the instances it covers and
// must set every field except Module.
func Grouped(g Grouping, baseID string, items []Instance, build func(id string, items []Instance) models.Finding) []models.Finding {
	if len(items) == 0 {
		return nil
	}
	if g == GroupSingle {
		return []models.Finding{build(baseID, items)}
	}
	out := make([]models.Finding, 0, len(items))
	for _, it := range items {
		out = append(out, build(baseID+"-"+it.Key, []Instance{it}))
	}
	return out
}

// instanceKeys returns the keys of items in order.
func instanceKeys(items []Instance) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.Key)
	}
	return keys
}

// instanceLines flattens the quoted lines of items in order.
func instanceLines(items []Instance) []string {
	var lines []string
	for _, it := range items {
		lines = append(lines, it.Lines...)
	}
	return lines
}

// sampleList joins the first n keys with ", " and appends "..." when more
// were left out.
func sampleList(keys []string, n int) string {
	if len(keys) <= n {
		return strings.Join(keys, ", ")
	}
	return strings.Join(keys[:n], ", ") + "..."
}

// collector accumulates the findings of one module and stamps the module ID
// on each of them.
type collector struct {
	module string
	out    []models.Finding
}

func newCollector(module string) *collector {
	return &collector{module: module}
}

func (c *collector) add(f models.Finding) {
	f.Module = c.module
	c.out = append(c.out, f)
}

func (c *collector) addAll(fs []models.Finding) {
	for _, f := range fs {
		c.add(f)
	}
}

func (c *collector) findings() []models.Finding {
	return c.out
}

// notApplicable builds a NOT_APPLICABLE finding for an OS-gated check.
func notApplicable(id, ref, title string, sev models.Severity, desc string) models.Finding {
	return models.Finding{
		ID:             id,
		BenchmarkRef:   ref,
		Title:          title,
		Severity:       sev,
		Status:         models.StatusNotApplicable,
		Description:    desc,
		Recommendation: noAction,
	}
}

const noAction = "No action required."
