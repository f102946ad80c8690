package classify

import "github.com/de-tools/cloud-atlas/pkg/models/domain"

// detector classifies an untyped sample by field shape. The list below is
// evaluated in order and the order is load-bearing: specific field
// combinations come before generic ones, and the generic identity-group
// predicate at the end explicitly excludes the signatures its more
// specific siblings already claim. Tests pin the precedence.
type detector struct {
	kind  domain.Kind
	match func(m map[string]any) bool
}

var detectors = []detector{
	{domain.KindNetworkSecurityList, func(m map[string]any) bool {
		return has(m, "ingressSecurityRules") || has(m, "egressSecurityRules")
	}},
	{domain.KindNetworkRouteTable, func(m map[string]any) bool {
		return has(m, "routeRules")
	}},
	{domain.KindNetworkSubnet, func(m map[string]any) bool {
		return has(m, "cidrBlock") && has(m, "vcnId")
	}},
	{domain.KindNetworkVCN, func(m map[string]any) bool {
		return has(m, "cidrBlock") || has(m, "cidrBlocks")
	}},
	{domain.KindNetworkLoadBalancer, func(m map[string]any) bool {
		return has(m, "backendSets") || (has(m, "shapeName") && has(m, "subnetIds"))
	}},
	{domain.KindComputeVolumeAttachment, func(m map[string]any) bool {
		return has(m, "instanceId") && has(m, "volumeId")
	}},
	{domain.KindStorageBootVolume, func(m map[string]any) bool {
		return has(m, "sizeInGbs") && has(m, "imageId")
	}},
	{domain.KindStorageBlockVolume, func(m map[string]any) bool {
		return has(m, "sizeInGbs") && has(m, "vpusPerGb")
	}},
	{domain.KindStorageVolumeBackup, func(m map[string]any) bool {
		return has(m, "volumeId") && has(m, "sourceType")
	}},
	{domain.KindComputeInstance, func(m map[string]any) bool {
		return has(m, "shape") && (has(m, "imageId") || has(m, "subnetId"))
	}},
	{domain.KindComputeImage, func(m map[string]any) bool {
		return has(m, "operatingSystem") && has(m, "operatingSystemVersion")
	}},
	{domain.KindStorageBucket, func(m map[string]any) bool {
		return has(m, "namespace") && (has(m, "publicAccessType") || has(m, "storageTier"))
	}},
	{domain.KindNetworkInternetGateway, func(m map[string]any) bool {
		return has(m, "vcnId") && has(m, "isEnabled")
	}},
	{domain.KindNetworkNATGateway, func(m map[string]any) bool {
		return has(m, "vcnId") && (has(m, "blockTraffic") || has(m, "natIp"))
	}},
	{domain.KindNetworkServiceGateway, func(m map[string]any) bool {
		return has(m, "vcnId") && has(m, "services")
	}},
	// Bare vcn-id with every more specific network shape ruled out above.
	{domain.KindNetworkNSG, func(m map[string]any) bool {
		return has(m, "vcnId")
	}},
	{domain.KindDatabaseAutonomous, func(m map[string]any) bool {
		return has(m, "dbName") && (has(m, "dbVersion") || has(m, "cpuCoreCount"))
	}},
	{domain.KindIdentityPolicy, func(m map[string]any) bool {
		return has(m, "statements")
	}},
	{domain.KindIdentityDynamicGroup, func(m map[string]any) bool {
		return has(m, "matchingRule")
	}},
	{domain.KindIdentityUser, func(m map[string]any) bool {
		return has(m, "email") || has(m, "isMfaActivated")
	}},
	{domain.KindSecurityVault, func(m map[string]any) bool {
		return has(m, "vaultType")
	}},
	{domain.KindSecurityKey, func(m map[string]any) bool {
		return has(m, "keyShape")
	}},
	{domain.KindIdentityCompartment, func(m map[string]any) bool {
		return has(m, "compartmentId") && has(m, "isAccessible")
	}},
	// Generic container-reference + description shape. The negative checks
	// mirror the five sibling kinds that share it (policy, dynamic-group,
	// user, vault, key); ordering alone already excludes them, but the
	// exclusions are kept explicit so the predicate stays correct if the
	// list is ever reordered.
	{domain.KindIdentityGroup, func(m map[string]any) bool {
		return has(m, "compartmentId") && has(m, "description") &&
			!has(m, "statements") && !has(m, "matchingRule") &&
			!has(m, "email") && !has(m, "isMfaActivated") &&
			!has(m, "vaultType") && !has(m, "keyShape")
	}},
}

func has(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// detectKind inspects one normalized sample and returns the first matching
// kind, or false when no predicate claims it.
func detectKind(sample map[string]any) (domain.Kind, bool) {
	for _, d := range detectors {
		if d.match(sample) {
			return d.kind, true
		}
	}
	return "", false
}
