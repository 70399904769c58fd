package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

var (
	routerHeaderRe    = regexp.MustCompile(`(?i)^router (eigrp|ospf|rip)\b`)
	passiveLineRe     = regexp.MustCompile(`passive-interface`)
	staticRouteRe     = regexp.MustCompile(`(?m)^ip route .*$`)
	staticRouteNameRe = regexp.MustCompile(` name \S+`)
	noSourceRouteRe   = regexp.MustCompile(`(?m)^no ip source-route$`)
)

// routerBoundaries close a routing process block.
var routerBoundaries = []string{"interface", "line", "router", "!"}

// RoutingRule covers routing protocol passivity, static route naming and
// source routing.
type RoutingRule struct{}

func (r RoutingRule) ID() string   { return "ROUTING" }
func (r RoutingRule) Name() string { return "Routing" }

func (r RoutingRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	c.addAll(passiveInterfaceFindings(blockscan.Scan(text, routerHeaderRe, routerBoundaries...)))

	if ctx.IsNXOS() {
		c.add(notApplicable("check-30", "Operational Best Practice", "Static route names not applicable on NX-OS", models.SeverityLow,
			"Naming static routes is an IOS option."))
	} else if unnamed := unnamedStaticRoutes(text); unnamed != nil {
		c.add(models.Finding{
			ID:             "check-30",
			BenchmarkRef:   "Operational Best Practice",
			Title:          "Static routes without a name",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("%d static route(s) have no descriptive name.", len(unnamed)),
			Recommendation: "Name every static route after its purpose. Example:\nip route 192.168.1.0 255.255.255.0 10.0.0.1 name TO_ADMIN_NET",
			AffectedLines:  unnamed,
			Rationale:      "Named routes are easier to manage and troubleshoot in large routing tables.",
		})
	}

	if !strings.Contains(text, "no ip source-route") {
		c.add(models.Finding{
			ID:             "check-7",
			BenchmarkRef:   "CIS 5.1.4",
			Title:          "Disable source routing",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "'no ip source-route' is not configured; source-routed packets can be abused by attackers.",
			Recommendation: "configure terminal\n no ip source-route\nend",
			Rationale:      "Source routing lets the sender choose the path, which can be used to get around firewalls.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-7",
			BenchmarkRef:   "CIS 5.1.4",
			Title:          "Source routing disabled",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "'no ip source-route' is configured.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, noSourceRouteRe),
		})
	}

	return c.findings()
}

// passiveInterfaceFindings emits one finding per routing protocol, in order
// of first appearance. A protocol is non-compliant when any of its processes
// lacks "passive-interface default".
func passiveInterfaceFindings(blocks []blockscan.Block) []models.Finding {
	type protoState struct {
		missing []string // headers of processes without passive default
		passive []string // passive-interface lines of compliant processes
	}
	var order []string
	states := make(map[string]*protoState)

	for _, b := range blocks {
		proto := strings.ToLower(b.Group(1))
		st, ok := states[proto]
		if !ok {
			st = &protoState{}
			states[proto] = st
			order = append(order, proto)
		}
		if !b.Contains("passive-interface default") {
			st.missing = append(st.missing, b.Header)
			continue
		}
		for _, l := range b.Lines {
			if passiveLineRe.MatchString(l) {
				st.passive = append(st.passive, l)
			}
		}
	}

	var out []models.Finding
	for _, proto := range order {
		st := states[proto]
		if st.missing != nil {
			out = append(out, Grouped(GroupPerInstance, "check-passive-interface",
				[]Instance{{Key: proto, Lines: st.missing}}, passiveMissingFinding)...)
		} else {
			out = append(out, Grouped(GroupPerInstance, "check-passive-interface",
				[]Instance{{Key: proto, Lines: st.passive}}, passiveDefaultFinding)...)
		}
	}
	return out
}

func passiveMissingFinding(id string, items []Instance) models.Finding {
	proto := items[0].Key
	upper := strings.ToUpper(proto)
	return models.Finding{
		ID:           id,
		BenchmarkRef: "CIS 5.4.1",
		Title:        fmt.Sprintf("Use 'passive-interface default' in %s", upper),
		Severity:     models.SeverityMedium,
		Status:       models.StatusNonCompliant,
		Description:  fmt.Sprintf("The %s process does not use 'passive-interface default'; adjacencies can form on untrusted interfaces.", upper),
		Recommendation: fmt.Sprintf("Make every interface passive, then enable the protocol only where needed:\n"+
			"configure terminal\n router %s <ASN/PROCESS_ID>\n  passive-interface default\n  no passive-interface <UPLINK>\nend", proto),
		AffectedLines: items[0].Lines,
		Rationale:     "Passive-by-default stops routing updates leaking out of every interface.",
	}
}

func passiveDefaultFinding(id string, items []Instance) models.Finding {
	upper := strings.ToUpper(items[0].Key)
	return models.Finding{
		ID:             id,
		BenchmarkRef:   "CIS 5.4.1",
		Title:          fmt.Sprintf("'passive-interface default' used in %s", upper),
		Severity:       models.SeverityMedium,
		Status:         models.StatusCompliant,
		Description:    fmt.Sprintf("The %s process is passive on all interfaces by default.", upper),
		Recommendation: "Make sure the protocol is enabled ('no passive-interface') only where required.",
		AffectedLines:  items[0].Lines,
	}
}

// unnamedStaticRoutes returns non-default static routes without a name.
func unnamedStaticRoutes(text string) []string {
	var out []string
	for _, route := range staticRouteRe.FindAllString(text, -1) {
		if strings.HasPrefix(route, "ip route 0.0.0.0 0.0.0.0") {
			continue
		}
		if !staticRouteNameRe.MatchString(route) {
			out = append(out, route)
		}
	}
	return out
}
