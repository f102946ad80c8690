package audit

import (
	"testing"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() *ruleEnv {
	return &ruleEnv{
		settings:     DefaultSettings(),
		nsgProtected: map[string]struct{}{},
		attached:     map[string]struct{}{},
	}
}

func securityList(rules ...map[string]any) domain.ResourceRecord {
	raw := make([]any, len(rules))
	for i, r := range rules {
		raw[i] = r
	}
	return domain.ResourceRecord{
		GlobalID:    "sl-1",
		Kind:        domain.KindNetworkSecurityList,
		DisplayName: "default-sl",
		Attributes:  map[string]any{"ingressSecurityRules": raw},
	}
}

func TestCheckSensitivePortsOpen(t *testing.T) {
	t.Run("range covering one sensitive port", func(t *testing.T) {
		r := securityList(map[string]any{
			"source":   "0.0.0.0/0",
			"protocol": "6",
			"tcpOptions": map[string]any{
				"destinationPortRange": map[string]any{"min": float64(20), "max": float64(25)},
			},
		})

		findings := checkSensitivePortsOpen(r, testEnv())
		require.Len(t, findings, 1)
		assert.Equal(t, domain.SeverityCritical, findings[0].Severity)
		assert.Contains(t, findings[0].Title, "port 22")
	})

	t.Run("rule without port range covers every sensitive port", func(t *testing.T) {
		r := securityList(map[string]any{"source": "0.0.0.0/0", "protocol": "6"})

		findings := checkSensitivePortsOpen(r, testEnv())
		assert.Len(t, findings, len(DefaultSettings().SensitivePorts))
	})

	t.Run("restricted source is quiet", func(t *testing.T) {
		r := securityList(map[string]any{
			"source":   "10.0.0.0/8",
			"protocol": "6",
			"tcpOptions": map[string]any{
				"destinationPortRange": map[string]any{"min": float64(22), "max": float64(22)},
			},
		})

		assert.Empty(t, checkSensitivePortsOpen(r, testEnv()))
	})

	t.Run("all-protocols rule is left to the all-protocols check", func(t *testing.T) {
		r := securityList(map[string]any{"source": "0.0.0.0/0", "protocol": "all"})

		assert.Empty(t, checkSensitivePortsOpen(r, testEnv()))
		findings := checkAllProtocolsOpen(r, testEnv())
		require.Len(t, findings, 1)
		assert.Equal(t, domain.SeverityHigh, findings[0].Severity)
	})

	t.Run("udp-only rule never covers tcp ports", func(t *testing.T) {
		r := securityList(map[string]any{
			"source":   "0.0.0.0/0",
			"protocol": "17",
			"udpOptions": map[string]any{
				"destinationPortRange": map[string]any{"min": float64(53), "max": float64(53)},
			},
		})

		assert.Empty(t, checkSensitivePortsOpen(r, testEnv()))
		assert.Empty(t, checkAllProtocolsOpen(r, testEnv()))
	})

	t.Run("udp rule without a range stays quiet too", func(t *testing.T) {
		r := securityList(map[string]any{"source": "0.0.0.0/0", "protocol": "udp"})

		assert.Empty(t, checkSensitivePortsOpen(r, testEnv()))
	})

	t.Run("icmp rule stays quiet", func(t *testing.T) {
		r := securityList(map[string]any{"source": "0.0.0.0/0", "protocol": "1"})

		assert.Empty(t, checkSensitivePortsOpen(r, testEnv()))
	})
}

func TestIngressRules_ProtocolOptions(t *testing.T) {
	r := securityList(
		map[string]any{
			"source":   "0.0.0.0/0",
			"protocol": "6",
			"tcpOptions": map[string]any{
				"destinationPortRange": map[string]any{"min": float64(443), "max": float64(443)},
			},
		},
		map[string]any{
			"source":   "0.0.0.0/0",
			"protocol": "17",
			"udpOptions": map[string]any{
				"destinationPortRange": map[string]any{"min": float64(53), "max": float64(53)},
			},
		},
	)

	rules := ingressRules(r)
	require.Len(t, rules, 2)

	assert.Equal(t, "tcp", rules[0].protocol)
	assert.True(t, rules[0].coversPort(443))
	assert.False(t, rules[0].coversPort(53))

	assert.Equal(t, "udp", rules[1].protocol)
	assert.True(t, rules[1].coversPort(53))
	assert.False(t, rules[1].coversPort(443))
}

func TestCheckSubnetPublicIngress(t *testing.T) {
	subnet := domain.ResourceRecord{
		GlobalID: "sub-1", Kind: domain.KindNetworkSubnet, DisplayName: "app-subnet",
		Attributes: map[string]any{},
	}

	findings := checkSubnetPublicIngress(subnet, testEnv())
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityHigh, findings[0].Severity)

	subnet.Attributes["prohibitInternetIngress"] = true
	assert.Empty(t, checkSubnetPublicIngress(subnet, testEnv()))
}

func TestCheckPublicBucket(t *testing.T) {
	bucket := func(access string) domain.ResourceRecord {
		return domain.ResourceRecord{
			GlobalID: "b-1", Kind: domain.KindStorageBucket, DisplayName: "assets",
			Attributes: map[string]any{"publicAccessType": access},
		}
	}

	findings := checkPublicBucket(bucket("ObjectRead"), testEnv())
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityCritical, findings[0].Severity)

	assert.Empty(t, checkPublicBucket(bucket("NoPublicAccess"), testEnv()))
	assert.Empty(t, checkPublicBucket(bucket(""), testEnv()))
}

func TestCheckUnencryptedVolume(t *testing.T) {
	vol := domain.ResourceRecord{
		GlobalID: "v-1", Kind: domain.KindStorageBlockVolume, DisplayName: "data",
		Attributes: map[string]any{},
	}

	findings := checkUnencryptedVolume(vol, testEnv())
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityHigh, findings[0].Severity)

	vol.Attributes["kmsKeyId"] = "key-1"
	assert.Empty(t, checkUnencryptedVolume(vol, testEnv()))
}

func TestCheckPolicyWideGrants(t *testing.T) {
	policy := func(statements ...string) domain.ResourceRecord {
		raw := make([]any, len(statements))
		for i, s := range statements {
			raw[i] = s
		}
		return domain.ResourceRecord{
			GlobalID: "p-1", Kind: domain.KindIdentityPolicy, DisplayName: "admin-policy",
			Attributes: map[string]any{"statements": raw},
		}
	}

	t.Run("manage all-resources is HIGH, not also MEDIUM", func(t *testing.T) {
		findings := checkPolicyWideGrants(policy(
			"Allow group Administrators to manage all-resources in tenancy",
		), testEnv())
		require.Len(t, findings, 1)
		assert.Equal(t, domain.SeverityHigh, findings[0].Severity)
	})

	t.Run("other broad manage grant is MEDIUM", func(t *testing.T) {
		findings := checkPolicyWideGrants(policy(
			"Allow group NetAdmins to manage virtual-network-family in tenancy",
		), testEnv())
		require.Len(t, findings, 1)
		assert.Equal(t, domain.SeverityMedium, findings[0].Severity)
	})

	t.Run("compartment-scoped grants are quiet", func(t *testing.T) {
		findings := checkPolicyWideGrants(policy(
			"Allow group Devs to manage instances in compartment dev",
			"Allow group Auditors to read all-resources in tenancy",
		), testEnv())
		assert.Empty(t, findings)
	})
}

func TestEdgeAwareRules(t *testing.T) {
	env := testEnv()
	env.nsgProtected["row-inst-1"] = struct{}{}
	env.attached["row-vol-1"] = struct{}{}

	protected := domain.ResourceRecord{ID: "row-inst-1", GlobalID: "inst-1", Kind: domain.KindComputeInstance}
	exposed := domain.ResourceRecord{ID: "row-inst-2", GlobalID: "inst-2", Kind: domain.KindComputeInstance}

	assert.Empty(t, checkInstanceWithoutNSG(protected, env))
	findings := checkInstanceWithoutNSG(exposed, env)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityMedium, findings[0].Severity)

	attached := domain.ResourceRecord{ID: "row-vol-1", GlobalID: "vol-1", Kind: domain.KindStorageBlockVolume}
	orphan := domain.ResourceRecord{ID: "row-vol-2", GlobalID: "vol-2", Kind: domain.KindStorageBlockVolume}

	assert.Empty(t, checkUnattachedVolume(attached, env))
	assert.Len(t, checkUnattachedVolume(orphan, env), 1)
}

func TestLifecycleRules(t *testing.T) {
	stopped := domain.ResourceRecord{
		GlobalID: "inst-1", Kind: domain.KindComputeInstance, LifecycleState: "STOPPED",
	}
	findings := checkStoppedInstance(stopped, testEnv())
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityLow, findings[0].Severity)

	failed := domain.ResourceRecord{
		GlobalID: "db-1", Kind: domain.KindDatabaseAutonomous, LifecycleState: "Failed",
	}
	findings = checkFailedLifecycle(failed, testEnv())
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityMedium, findings[0].Severity)
	assert.Contains(t, findings[0].Title, "FAILED")

	running := domain.ResourceRecord{
		GlobalID: "inst-2", Kind: domain.KindComputeInstance, LifecycleState: "RUNNING",
	}
	assert.Empty(t, checkStoppedInstance(running, testEnv()))
	assert.Empty(t, checkFailedLifecycle(running, testEnv()))
}
