package classify

import (
	"testing"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The predicate order is load-bearing: these cases pin the precedence
// between kinds whose field signatures overlap.
func TestDetectKind_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		sample map[string]any
		want   domain.Kind
	}{
		{
			"security list wins over nsg despite vcn reference",
			map[string]any{"vcnId": "v", "ingressSecurityRules": []any{}},
			domain.KindNetworkSecurityList,
		},
		{
			"route table wins over nsg despite vcn reference",
			map[string]any{"vcnId": "v", "routeRules": []any{}},
			domain.KindNetworkRouteTable,
		},
		{
			"subnet wins over vcn when both cidr and vcn reference present",
			map[string]any{"cidrBlock": "10.0.1.0/24", "vcnId": "v"},
			domain.KindNetworkSubnet,
		},
		{
			"bare cidr block is a vcn",
			map[string]any{"cidrBlock": "10.0.0.0/16"},
			domain.KindNetworkVCN,
		},
		{
			"bare vcn reference falls through to nsg",
			map[string]any{"vcnId": "v"},
			domain.KindNetworkNSG,
		},
		{
			"internet gateway wins over nsg",
			map[string]any{"vcnId": "v", "isEnabled": true},
			domain.KindNetworkInternetGateway,
		},
		{
			"boot volume wins over block volume when image reference present",
			map[string]any{"sizeInGbs": 50.0, "vpusPerGb": 10.0, "imageId": "i"},
			domain.KindStorageBootVolume,
		},
		{
			"block volume without image reference",
			map[string]any{"sizeInGbs": 50.0, "vpusPerGb": 10.0},
			domain.KindStorageBlockVolume,
		},
		{
			"volume attachment wins over instance shapes",
			map[string]any{"instanceId": "i", "volumeId": "v"},
			domain.KindComputeVolumeAttachment,
		},
		{
			"policy wins over generic group shape",
			map[string]any{"compartmentId": "c", "description": "d", "statements": []any{"Allow"}},
			domain.KindIdentityPolicy,
		},
		{
			"dynamic group wins over generic group shape",
			map[string]any{"compartmentId": "c", "description": "d", "matchingRule": "ANY"},
			domain.KindIdentityDynamicGroup,
		},
		{
			"user wins over generic group shape",
			map[string]any{"compartmentId": "c", "description": "d", "email": "a@b.c"},
			domain.KindIdentityUser,
		},
		{
			"vault wins over generic group shape",
			map[string]any{"compartmentId": "c", "description": "d", "vaultType": "DEFAULT"},
			domain.KindSecurityVault,
		},
		{
			"key wins over generic group shape",
			map[string]any{"compartmentId": "c", "description": "d", "keyShape": map[string]any{}},
			domain.KindSecurityKey,
		},
		{
			"container reference plus description lands on group",
			map[string]any{"compartmentId": "c", "description": "d"},
			domain.KindIdentityGroup,
		},
		{
			"compartment claims accessible flag before group",
			map[string]any{"compartmentId": "c", "description": "d", "isAccessible": true},
			domain.KindIdentityCompartment,
		},
		{
			"load balancer claims backend sets",
			map[string]any{"backendSets": []any{}},
			domain.KindNetworkLoadBalancer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := detectKind(tt.sample)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestDetectKind_NoMatch(t *testing.T) {
	_, ok := detectKind(map[string]any{"something": "else"})
	assert.False(t, ok)
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"display-name":           "displayName",
		"vcn-id":                 "vcnId",
		"ingress-security-rules": "ingressSecurityRules",
		"alreadyCamel":           "alreadyCamel",
		"plain":                  "plain",
		"double--hyphen":         "doubleHyphen",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeKey(in), in)
	}
}

func TestNormalizeValue_Recursive(t *testing.T) {
	out := normalizeValue(map[string]any{
		"tcp-options": map[string]any{
			"destination-port-range": map[string]any{"min": 20.0, "max": 25.0},
		},
		"backend-sets": []any{
			map[string]any{"backend-name": "bs1"},
		},
	})

	m, ok := out.(map[string]any)
	require.True(t, ok)
	opts := m["tcpOptions"].(map[string]any)
	rng := opts["destinationPortRange"].(map[string]any)
	assert.Equal(t, 20.0, rng["min"])

	sets := m["backendSets"].([]any)
	assert.Equal(t, "bs1", sets[0].(map[string]any)["backendName"])
}
