package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

var (
	interfaceHeaderRe = regexp.MustCompile(`(?i)^interface ([\w/.\-]+)`)
	cdpRunRe          = regexp.MustCompile(`(?i)cdp run`)
	noCdpRunRe        = regexp.MustCompile(`(?m)^no cdp run$`)
	accessVlanRe      = regexp.MustCompile(`(?i)switchport access vlan (\d+)`)
	briefHeaderRe     = regexp.MustCompile(`(?i)Interface\s+IP-Address\s+OK\?\s+Method\s+Status\s+Protocol\s*([\s\S]*)`)
	briefDownRowRe    = regexp.MustCompile(`(?m)^([\w/.\-]+)\s+.*? (?:administratively )?(down)\s+(down)\s*$`)
	logicalIfaceRe    = regexp.MustCompile(`(?i)Vlan|Loopback|Port-channel`)
	portChannelRe     = regexp.MustCompile(`(?i)^port-channel\d+`)
	switchRe          = regexp.MustCompile(`(?i)spanning-tree mode|switchport mode`)
	bpduGuardRe       = regexp.MustCompile(`(?m)^spanning-tree port(?:fast| type edge) bpduguard default.*$`)
	rootGuardRe       = regexp.MustCompile(`(?m)^\s*spanning-tree guard root.*$`)
)

const unusedSample = 5

// iface is one parsed "interface" block.
type iface struct {
	name  string
	block blockscan.Block
}

func (i iface) has(substr string) bool { return i.block.Contains(substr) }

// shutdown reports an explicit "shutdown" line; "no shutdown" does not count.
func (i iface) shutdown() bool { return i.block.HasCommand("shutdown") }

// management reports Loopback interfaces and Vlan1, which carry no user
// traffic and are left out of the description and CDP scans.
func (i iface) management() bool {
	lower := strings.ToLower(i.name)
	return strings.HasPrefix(lower, "loopback") || lower == "vlan1"
}

func (i iface) instance() Instance {
	return Instance{Key: i.name, Lines: []string{"interface " + i.name}}
}

// interfaceBuckets sorts interfaces into the categories reported as grouped
// findings.
type interfaceBuckets struct {
	vlan1Access     []Instance
	portSecurityOff []Instance
	portSecurityOn  []Instance
	trunkUnpruned   []Instance
	trunkPruned     []Instance
	cdpOn           []Instance
	cdpOff          []Instance
	noDescription   []Instance
	described       []Instance
	stpEdge         []Instance
	stpNetwork      []Instance
	stpUnset        []Instance
}

// InterfaceRule covers CDP, per-interface layer 2 hygiene, unused
// interfaces and switch-wide spanning-tree protections.
type InterfaceRule struct{}

func (r InterfaceRule) ID() string   { return "INTERFACES" }
func (r InterfaceRule) Name() string { return "Interfaces and layer 2" }

func (r InterfaceRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	var ifaces []iface
	for _, b := range blockscan.Scan(text, interfaceHeaderRe) {
		ifaces = append(ifaces, iface{name: b.Group(1), block: b})
	}

	cdpDisabled := strings.Contains(text, "no cdp run")
	switch {
	case cdpDisabled:
		c.add(models.Finding{
			ID:             "check-9.1",
			BenchmarkRef:   "CIS 5.2.1",
			Title:          "CDP disabled globally",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    "CDP is disabled globally.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, noCdpRunRe),
		})
	case cdpRunRe.MatchString(text):
		c.add(models.Finding{
			ID:             "check-9.1",
			BenchmarkRef:   "CIS 5.2.1",
			Title:          "Consider disabling CDP globally",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    "CDP ('cdp run') is enabled globally. Disable it unless required to avoid leaking topology information.",
			Recommendation: "If CDP is not needed:\nconfigure terminal\n no cdp run\nend",
			AffectedLines:  blockscan.AllMatches(text, cdpRunRe),
		})
	}

	b := bucketInterfaces(ifaces, !cdpDisabled, ctx.IsNXOS())

	c.addAll(Grouped(GroupPerInstance, "check-23", b.vlan1Access, vlan1AccessFinding))
	c.addAll(Grouped(GroupSingle, "check-28-grouped", b.portSecurityOff, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:           id,
			BenchmarkRef: "CIS L2.5",
			Title:        "Port security disabled on access ports",
			Severity:     models.SeverityMedium,
			Status:       models.StatusNonCompliant,
			Description:  fmt.Sprintf("%d access port(s) have no port security; any device can connect.", len(items)),
			Recommendation: "Enable port security on every access interface. Example:\ninterface <INTERFACE>\n switchport port-security\n" +
				" switchport port-security maximum 2\n switchport port-security violation restrict\n switchport port-security mac-address sticky\nend",
			AffectedLines: instanceLines(items),
			Rationale:     "Port security limits the MAC addresses per port, stopping rogue devices and MAC spoofing.",
		}
	}))
	c.addAll(Grouped(GroupSingle, "check-28-compliant-grouped", b.portSecurityOn, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "CIS L2.5",
			Title:          "Port security enabled on access ports",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("%d access port(s) have port security enabled.", len(items)),
			Recommendation: "Check that maximum and violation settings follow your security policy.",
			AffectedLines:  instanceLines(items),
		}
	}))
	c.addAll(Grouped(GroupSingle, "check-prune-grouped-noncompliant", b.trunkUnpruned, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "CIS L2.6",
			Title:          "Trunk ports carry all VLANs",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("%d trunk port(s) allow every VLAN, exposing the network to VLAN hopping.", len(items)),
			Recommendation: "Limit the VLANs allowed on each trunk. Example:\ninterface <INTERFACE>\n switchport trunk allowed vlan <VLAN_LIST>\nend",
			AffectedLines:  instanceLines(items),
			Rationale:      "An unpruned trunk carries traffic of every VLAN and widens the blast radius of a compromised segment.",
		}
	}))
	c.addAll(Grouped(GroupSingle, "check-prune-grouped-compliant", b.trunkPruned, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "CIS L2.6",
			Title:          "VLAN pruning configured on trunks",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("%d trunk port(s) have an allowed VLAN list.", len(items)),
			Recommendation: "Keep each allowed list to the VLANs the link really needs.",
			AffectedLines:  instanceLines(items),
		}
	}))
	c.addAll(Grouped(GroupSingle, "check-9.2-grouped-noncompliant", b.cdpOn, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "CIS 5.2.2",
			Title:          "CDP enabled on interfaces",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("CDP is enabled on %d interface(s). Disable it on untrusted interfaces to avoid leaking topology information.", len(items)),
			Recommendation: "configure terminal\n interface <INTERFACE>\n  no cdp enable\n end",
			AffectedLines:  instanceLines(items),
			Rationale:      "CDP advertises device details to direct neighbours; on an untrusted port it maps the network for an attacker.",
		}
	}))
	c.addAll(Grouped(GroupSingle, "check-9.2-grouped-compliant", b.cdpOff, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "CIS 5.2.2",
			Title:          "CDP disabled on interfaces",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("CDP is explicitly disabled on %d interface(s).", len(items)),
			Recommendation: noAction,
			AffectedLines:  instanceLines(items),
		}
	}))
	c.addAll(Grouped(GroupSingle, "check-desc-grouped-noncompliant", b.noDescription, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "Operational Best Practice",
			Title:          "Interfaces without a description",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("%d interface(s) have no description, which slows down management and troubleshooting.", len(items)),
			Recommendation: "Describe every interface. Example:\ninterface <INTERFACE>\n description <PURPOSE>\nend",
			AffectedLines:  instanceLines(items),
			Rationale:      "Descriptions document what each link is for and save time during incidents and changes.",
		}
	}))
	c.addAll(Grouped(GroupSingle, "check-desc-grouped-compliant", b.described, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "Operational Best Practice",
			Title:          "Interfaces described",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("%d interface(s) have a description.", len(items)),
			Recommendation: "Keep descriptions accurate as the topology changes.",
			AffectedLines:  instanceLines(items),
		}
	}))

	c.addAll(Grouped(GroupSingle, "check-29", unusedInterfaces(text, ifaces), func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "CIS L2.3",
			Title:          "Unused physical interfaces enabled",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("%d physical interface(s) are enabled with no apparent use. Interfaces: %s.", len(items), sampleList(instanceKeys(items), unusedSample)),
			Recommendation: "Shut down every unused interface with 'shutdown' and move it to a black-hole VLAN.",
			AffectedLines:  instanceLines(items),
			Rationale:      "An enabled, unconnected port lets anyone plug in and reach the network.",
		}
	}))

	if switchRe.MatchString(text) {
		r.spanningTree(c, text, ctx.IsNXOS(), b.stpUnset)
	}

	return c.findings()
}

func bucketInterfaces(ifaces []iface, cdpActive, nxos bool) interfaceBuckets {
	var b interfaceBuckets
	for _, i := range ifaces {
		inst := i.instance()

		if cdpActive && !i.management() {
			if i.has("no cdp enable") {
				b.cdpOff = append(b.cdpOff, inst)
			} else {
				b.cdpOn = append(b.cdpOn, inst)
			}
		}

		// Layer 2 checks only look at blocks mentioning "switchport".
		if i.has("switchport") {
			access := i.has("switchport mode access")
			if access && !i.shutdown() {
				if m := i.block.Match(accessVlanRe); m == nil || m[1] == "1" {
					b.vlan1Access = append(b.vlan1Access, Instance{Key: i.name, Lines: []string{i.block.Header}})
				}
				if i.has("switchport port-security") {
					b.portSecurityOn = append(b.portSecurityOn, inst)
				} else {
					b.portSecurityOff = append(b.portSecurityOff, inst)
				}
			}
			if i.has("switchport mode trunk") {
				if i.has("switchport trunk allowed vlan") {
					b.trunkPruned = append(b.trunkPruned, inst)
				} else {
					b.trunkUnpruned = append(b.trunkUnpruned, inst)
				}
			}
			if nxos && !portChannelRe.MatchString(i.name) {
				switch {
				case i.has("spanning-tree port type edge"):
					b.stpEdge = append(b.stpEdge, inst)
				case i.has("spanning-tree port type network"):
					b.stpNetwork = append(b.stpNetwork, inst)
				default:
					b.stpUnset = append(b.stpUnset, inst)
				}
			}
		}

		if !i.management() {
			if i.has("description ") {
				b.described = append(b.described, inst)
			} else {
				b.noDescription = append(b.noDescription, inst)
			}
		}
	}
	return b
}

func vlan1AccessFinding(id string, items []Instance) models.Finding {
	name := items[0].Key
	return models.Finding{
		ID:             id,
		BenchmarkRef:   "CIS L2.4",
		Title:          "Access port on default VLAN 1: " + name,
		Severity:       models.SeverityLow,
		Status:         models.StatusNonCompliant,
		Description:    fmt.Sprintf("Access port %s is on default VLAN 1, which should not carry user traffic.", name),
		Recommendation: fmt.Sprintf("Move the port to a dedicated access VLAN:\ninterface %s\n switchport access vlan <VLAN>\nend", name),
		AffectedLines:  items[0].Lines,
	}
}

// unusedInterfaces prefers a pasted "show ip interface brief" table: rows
// down/down are unused. Without a table, every physical interface block
// that never mentions shutdown is reported; "no shutdown" counts as a
// mention, so deliberately enabled ports are left alone.
func unusedInterfaces(text string, ifaces []iface) []Instance {
	var out []Instance
	if m := briefHeaderRe.FindStringSubmatch(text); m != nil {
		for _, row := range briefDownRowRe.FindAllStringSubmatch(m[1], -1) {
			if !logicalIfaceRe.MatchString(row[1]) {
				out = append(out, Instance{Key: row[1], Lines: []string{"interface " + row[1]}})
			}
		}
	}
	if out != nil {
		return out
	}
	for _, i := range ifaces {
		if !logicalIfaceRe.MatchString(i.name) && !i.has("shutdown") {
			out = append(out, i.instance())
		}
	}
	return out
}

// spanningTree covers the switch-wide protections: default BPDU guard, NX-OS
// port types and root guard.
func (r InterfaceRule) spanningTree(c *collector, text string, nxos bool, unsetPortType []Instance) {
	bpduCmd := "spanning-tree portfast bpduguard default"
	if nxos {
		bpduCmd = "spanning-tree port type edge bpduguard default"
	}
	if !strings.Contains(text, bpduCmd) {
		c.add(models.Finding{
			ID:             "check-21",
			BenchmarkRef:   "CIS L2.1",
			Title:          "Enable BPDU guard by default",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "BPDU guard is not enabled by default. It shuts down PortFast/edge ports that receive BPDUs and prevents loops.",
			Recommendation: fmt.Sprintf("configure terminal\n %s\nend", bpduCmd),
			Rationale:      "Default BPDU guard is a key defence against rogue switches on access ports taking down the network.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-21",
			BenchmarkRef:   "CIS L2.1",
			Title:          "BPDU guard enabled by default",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "BPDU guard is enabled by default switch-wide.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, bpduGuardRe),
		})
	}

	if nxos {
		c.addAll(Grouped(GroupSingle, "check-nxos-porttype", unsetPortType, func(id string, items []Instance) models.Finding {
			return models.Finding{
				ID:           id,
				BenchmarkRef: "NX-OS Best Practice",
				Title:        "Spanning tree port type not set",
				Severity:     models.SeverityLow,
				Status:       models.StatusNonCompliant,
				Description:  fmt.Sprintf("%d NX-OS switchport interface(s) have no explicit 'spanning-tree port type'.", len(items)),
				Recommendation: "Set the spanning tree port type on every switchport: " +
					"'spanning-tree port type edge' for host ports, 'spanning-tree port type network' for switch-to-switch links.",
				AffectedLines: instanceLines(items),
				Rationale:     "Explicit port types make convergence predictable and harden inter-switch links.",
			}
		}))
	}

	if !strings.Contains(text, "spanning-tree guard root") {
		c.add(models.Finding{
			ID:             "check-22",
			BenchmarkRef:   "CIS L2.2",
			Title:          "Consider spanning tree root guard",
			Severity:       models.SeverityInfo,
			Status:         models.StatusNonCompliant,
			Description:    "Root guard is not used anywhere. It stops unauthorised switches from becoming the root bridge.",
			Recommendation: "On interfaces facing switches that must never be root:\ninterface <INTERFACE>\n spanning-tree guard root\nend",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-22",
			BenchmarkRef:   "CIS L2.2",
			Title:          "Spanning tree root guard in use",
			Severity:       models.SeverityInfo,
			Status:         models.StatusCompliant,
			Description:    "Root guard is configured on at least one interface.",
			Recommendation: noAction,
			AffectedLines:  blockscan.AllMatches(text, rootGuardRe),
		})
	}
}
