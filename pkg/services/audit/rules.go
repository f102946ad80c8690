package audit

import (
	"fmt"
	"strings"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

const unrestrictedSource = "0.0.0.0/0"

// ruleEnv is the shared, read-only context a rule may consult besides the
// record itself. The two edge-derived sets answer "does this record have
// at least one edge of kind X".
type ruleEnv struct {
	settings     Settings
	nsgProtected map[string]struct{} // record ids appearing as source of an nsg-member edge
	attached     map[string]struct{} // record ids appearing as target of a volume-attached edge
}

// auditRule is a pure predicate over one record; rules never mutate shared
// state and may run in any order.
type auditRule func(r domain.ResourceRecord, env *ruleEnv) []domain.Finding

var auditRules = []auditRule{
	checkSensitivePortsOpen,
	checkAllProtocolsOpen,
	checkSubnetPublicIngress,
	checkUnencryptedVolume,
	checkPublicBucket,
	checkInstanceWithoutNSG,
	checkPolicyWideGrants,
	checkStoppedInstance,
	checkUnattachedVolume,
	checkFailedLifecycle,
}

func ref(r domain.ResourceRecord) domain.ResourceRef {
	return domain.ResourceRef{GlobalID: r.GlobalID, Kind: r.Kind, DisplayName: r.DisplayName}
}

// checkSensitivePortsOpen emits one CRITICAL finding per sensitive port
// reachable from the unrestricted range. The sensitive ports are tcp
// services, so only tcp rules are inspected; a tcp rule without a port
// range covers all ports. Rules permitting every protocol are left to
// checkAllProtocolsOpen.
func checkSensitivePortsOpen(r domain.ResourceRecord, env *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindNetworkSecurityList {
		return nil
	}
	var findings []domain.Finding
	for _, rule := range ingressRules(r) {
		if rule.source != unrestrictedSource || rule.protocol != "tcp" {
			continue
		}
		for _, port := range env.settings.SensitivePorts {
			if !rule.coversPort(port) {
				continue
			}
			findings = append(findings, domain.Finding{
				Severity:       domain.SeverityCritical,
				Category:       "network",
				Title:          fmt.Sprintf("Sensitive port %d open to the internet", port),
				Description:    fmt.Sprintf("Security list %q permits ingress to port %d from %s.", r.DisplayName, port, unrestrictedSource),
				Recommendation: "Restrict the source CIDR to known management networks or move access behind a bastion.",
				Resource:       ref(r),
			})
		}
	}
	return findings
}

func checkAllProtocolsOpen(r domain.ResourceRecord, env *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindNetworkSecurityList {
		return nil
	}
	var findings []domain.Finding
	for _, rule := range ingressRules(r) {
		if rule.source != unrestrictedSource || rule.protocol != "all" {
			continue
		}
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Category:       "network",
			Title:          "All protocols open to the internet",
			Description:    fmt.Sprintf("Security list %q permits all protocols from %s.", r.DisplayName, unrestrictedSource),
			Recommendation: "Limit the rule to the specific protocols and ports the workload needs.",
			Resource:       ref(r),
		})
	}
	return findings
}

func checkSubnetPublicIngress(r domain.ResourceRecord, _ *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindNetworkSubnet {
		return nil
	}
	if prohibit, ok := r.Attributes["prohibitInternetIngress"].(bool); ok && prohibit {
		return nil
	}
	return []domain.Finding{{
		Severity:       domain.SeverityHigh,
		Category:       "network",
		Title:          "Subnet allows inbound internet traffic",
		Description:    fmt.Sprintf("Subnet %q does not prohibit internet ingress.", r.DisplayName),
		Recommendation: "Make the subnet private unless it fronts an internet-facing workload.",
		Resource:       ref(r),
	}}
}

func checkUnencryptedVolume(r domain.ResourceRecord, _ *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindStorageBlockVolume && r.Kind != domain.KindStorageBootVolume {
		return nil
	}
	if key, _ := r.Attributes["kmsKeyId"].(string); key != "" {
		return nil
	}
	return []domain.Finding{{
		Severity:       domain.SeverityHigh,
		Category:       "storage",
		Title:          "Volume without customer-managed encryption key",
		Description:    fmt.Sprintf("Volume %q has no customer-managed key reference.", r.DisplayName),
		Recommendation: "Assign a vault-managed encryption key to the volume.",
		Resource:       ref(r),
	}}
}

func checkPublicBucket(r domain.ResourceRecord, _ *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindStorageBucket {
		return nil
	}
	access, _ := r.Attributes["publicAccessType"].(string)
	if access == "" || access == "NoPublicAccess" {
		return nil
	}
	return []domain.Finding{{
		Severity:       domain.SeverityCritical,
		Category:       "storage",
		Title:          "Publicly accessible bucket",
		Description:    fmt.Sprintf("Bucket %q has public access mode %q.", r.DisplayName, access),
		Recommendation: "Disable public access and serve objects through pre-authenticated requests instead.",
		Resource:       ref(r),
	}}
}

func checkInstanceWithoutNSG(r domain.ResourceRecord, env *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindComputeInstance {
		return nil
	}
	if _, ok := env.nsgProtected[r.ID]; ok {
		return nil
	}
	return []domain.Finding{{
		Severity:       domain.SeverityMedium,
		Category:       "network",
		Title:          "Instance without network security group",
		Description:    fmt.Sprintf("Instance %q is not a member of any network security group.", r.DisplayName),
		Recommendation: "Attach the instance to a network security group with an explicit rule set.",
		Resource:       ref(r),
	}}
}

// checkPolicyWideGrants flags tenancy-wide manage statements. The HIGH
// case (manage all-resources) and the MEDIUM case (any other broad manage
// grant) are mutually exclusive per statement.
func checkPolicyWideGrants(r domain.ResourceRecord, _ *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindIdentityPolicy {
		return nil
	}
	statements, _ := r.Attributes["statements"].([]any)
	var findings []domain.Finding
	for _, raw := range statements {
		stmt, _ := raw.(string)
		lower := strings.ToLower(stmt)
		if !strings.Contains(lower, " in tenancy") || !strings.Contains(lower, "manage ") {
			continue
		}
		if strings.Contains(lower, "manage all-resources") {
			findings = append(findings, domain.Finding{
				Severity:       domain.SeverityHigh,
				Category:       "identity",
				Title:          "Policy grants manage on all resources tenancy-wide",
				Description:    fmt.Sprintf("Policy %q contains statement %q.", r.DisplayName, stmt),
				Recommendation: "Scope the grant to a compartment and to the resource families actually needed.",
				Resource:       ref(r),
			})
			continue
		}
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Category:       "identity",
			Title:          "Policy grants broad manage rights tenancy-wide",
			Description:    fmt.Sprintf("Policy %q contains statement %q.", r.DisplayName, stmt),
			Recommendation: "Prefer compartment-scoped grants over tenancy-wide ones.",
			Resource:       ref(r),
		})
	}
	return findings
}

func checkStoppedInstance(r domain.ResourceRecord, _ *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindComputeInstance || !strings.EqualFold(r.LifecycleState, "STOPPED") {
		return nil
	}
	return []domain.Finding{{
		Severity:       domain.SeverityLow,
		Category:       "compute",
		Title:          "Stopped compute instance",
		Description:    fmt.Sprintf("Instance %q is stopped.", r.DisplayName),
		Recommendation: "Terminate the instance if it is no longer needed; stopped instances still bill for storage.",
		Resource:       ref(r),
	}}
}

func checkUnattachedVolume(r domain.ResourceRecord, env *ruleEnv) []domain.Finding {
	if r.Kind != domain.KindStorageBlockVolume {
		return nil
	}
	if _, ok := env.attached[r.ID]; ok {
		return nil
	}
	return []domain.Finding{{
		Severity:       domain.SeverityMedium,
		Category:       "storage",
		Title:          "Unattached block volume",
		Description:    fmt.Sprintf("Volume %q is not attached to any instance.", r.DisplayName),
		Recommendation: "Back up and delete the volume, or reattach it to the intended instance.",
		Resource:       ref(r),
	}}
}

func checkFailedLifecycle(r domain.ResourceRecord, _ *ruleEnv) []domain.Finding {
	state := strings.ToUpper(r.LifecycleState)
	if state != "FAILED" && state != "TERMINATING" {
		return nil
	}
	return []domain.Finding{{
		Severity:       domain.SeverityMedium,
		Category:       "operations",
		Title:          fmt.Sprintf("Resource in %s state", state),
		Description:    fmt.Sprintf("%s %q is in lifecycle state %s.", r.Kind, r.DisplayName, state),
		Recommendation: "Investigate the resource; failed and stuck-terminating resources need manual cleanup.",
		Resource:       ref(r),
	}}
}

// ingressRule is the decoded shape of one security-list ingress entry.
// The port range is read from the options block matching the rule's own
// protocol; a udp rule's range never widens what the rule allows on tcp.
type ingressRule struct {
	source   string
	protocol string // "tcp", "udp", "all", or the raw protocol token
	minPort  int
	maxPort  int
	allPorts bool
}

func (ir ingressRule) coversPort(port int) bool {
	if ir.allPorts {
		return true
	}
	return port >= ir.minPort && port <= ir.maxPort
}

func ingressRules(r domain.ResourceRecord) []ingressRule {
	raw, _ := r.Attributes["ingressSecurityRules"].([]any)
	rules := make([]ingressRule, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rule := ingressRule{
			source:   str(m["source"]),
			protocol: protocolName(str(m["protocol"])),
			allPorts: true,
		}

		var opts map[string]any
		switch rule.protocol {
		case "tcp":
			opts, _ = m["tcpOptions"].(map[string]any)
		case "udp":
			opts, _ = m["udpOptions"].(map[string]any)
		}
		if pr, ok := opts["destinationPortRange"].(map[string]any); ok {
			rule.minPort = asInt(pr["min"])
			rule.maxPort = asInt(pr["max"])
			rule.allPorts = rule.minPort == 0 && rule.maxPort == 0
		}
		rules = append(rules, rule)
	}
	return rules
}

// protocolName maps IANA protocol numbers to the names the rules key on.
func protocolName(p string) string {
	switch strings.ToLower(p) {
	case "6", "tcp":
		return "tcp"
	case "17", "udp":
		return "udp"
	default:
		return strings.ToLower(p)
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
