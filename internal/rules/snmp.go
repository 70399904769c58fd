package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

var (
	snmpCommunityRe = regexp.MustCompile(`(?i)snmp-server community (\S+) (RO|RW)(?: (\S+))?`)
	snmpV3PrivRe    = regexp.MustCompile(`(?i)snmp-server user (\S+).* (priv)`)
)

// defaultCommunities are the well-known community strings. The comparison is
// case-sensitive.
var defaultCommunities = map[string]bool{"public": true, "private": true}

// SNMPRule covers v1/v2c communities, v3 privacy and overall SNMP state.
type SNMPRule struct{}

func (r SNMPRule) ID() string   { return "SNMP" }
func (r SNMPRule) Name() string { return "SNMP" }

func (r SNMPRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	var (
		defaults    []Instance
		byName      = make(map[string]int)
		unprotected []Instance
		protected   []Instance
	)
	matches := snmpCommunityRe.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		line, name, access, acl := m[0], m[1], strings.ToUpper(m[2]), m[3]
		switch {
		case defaultCommunities[name]:
			// One finding per default name, quoting every line that uses it.
			if i, ok := byName[name]; ok {
				defaults[i].Lines = append(defaults[i].Lines, line)
				continue
			}
			byName[name] = len(defaults)
			defaults = append(defaults, Instance{Key: name, Lines: []string{line}, Detail: access})
		case acl == "":
			unprotected = append(unprotected, Instance{Key: name, Lines: []string{line}})
		default:
			protected = append(protected, Instance{Key: name, Lines: []string{line}, Detail: acl})
		}
	}

	c.addAll(Grouped(GroupPerInstance, "check-10.1", defaults, func(id string, items []Instance) models.Finding {
		it := items[0]
		return models.Finding{
			ID:           id,
			BenchmarkRef: "CIS 3.4.2",
			Title:        fmt.Sprintf("SNMP uses default community '%s'", it.Key),
			Severity:     models.SeverityHigh,
			Status:       models.StatusNonCompliant,
			Description:  fmt.Sprintf("The well-known SNMP community '%s' is configured and must be changed.", it.Key),
			Recommendation: fmt.Sprintf("configure terminal\n no snmp-server community %s\n snmp-server community <NEW_COMMUNITY> %s <ACL_NAME>\nend",
				it.Key, it.Detail),
			AffectedLines: it.Lines,
		}
	}))

	c.addAll(Grouped(GroupSingle, "check-10.2-grouped", unprotected, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:           id,
			BenchmarkRef: "CIS 3.4.3",
			Title:        "SNMP communities without an ACL",
			Severity:     models.SeverityMedium,
			Status:       models.StatusNonCompliant,
			Description:  fmt.Sprintf("%d SNMP communit(ies) are not restricted by an access list.", len(items)),
			Recommendation: "Apply an ACL to every community so only authorised NMS hosts can query the device.\n\n" +
				"Example:\nconfigure terminal\n ip access-list standard SNMP_NMS_ACL\n  permit host <NMS_IP>\n  deny any log\nend\n\n" +
				" snmp-server community <COMMUNITY> RO SNMP_NMS_ACL",
			AffectedLines: instanceLines(items),
		}
	}))

	c.addAll(Grouped(GroupSingle, "check-10.3-grouped", protected, func(id string, items []Instance) models.Finding {
		return models.Finding{
			ID:             id,
			BenchmarkRef:   "CIS 3.4.3",
			Title:          "SNMP communities protected by an ACL",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("%d SNMP communit(ies) are restricted by an access list.", len(items)),
			Recommendation: "Check that the ACLs permit only the required NMS hosts.",
			AffectedLines:  instanceLines(items),
		}
	}))

	v3 := blockscan.AllMatches(text, snmpV3PrivRe)
	if v3 != nil {
		c.add(models.Finding{
			ID:             "check-snmp-v3",
			BenchmarkRef:   "CIS 3.4.1",
			Title:          "SNMPv3 with privacy in use",
			Severity:       models.SeverityHigh,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("%d SNMPv3 user(s) are configured with 'priv' (authentication and encryption).", len(v3)),
			Recommendation: "Keep the authentication and privacy passphrases strong and managed securely.",
			AffectedLines:  v3,
			Rationale:      "SNMPv3 'priv' authenticates the manager and encrypts the payload; v1/v2c send everything in clear text.",
		})
	}

	if matches == nil && v3 == nil {
		if strings.Contains(text, "snmp-server") {
			c.add(models.Finding{
				ID:             "check-10.4",
				BenchmarkRef:   "CIS 3.4",
				Title:          "Incomplete SNMP configuration",
				Severity:       models.SeverityMedium,
				Status:         models.StatusNonCompliant,
				Description:    "'snmp-server' commands exist but no v1/v2c community or v3 'priv' user is defined. SNMP may be half configured or trap-only.",
				Recommendation: "If SNMP is required, configure SNMPv3 with authentication and privacy.",
			})
		} else {
			c.add(models.Finding{
				ID:             "check-10.5",
				BenchmarkRef:   "CIS 3.4",
				Title:          "SNMP appears disabled",
				Severity:       models.SeverityLow,
				Status:         models.StatusCompliant,
				Description:    "No 'snmp-server' configuration was found.",
				Recommendation: "No action required if SNMP is not needed.",
			})
		}
	}

	return c.findings()
}
