package classify

import (
	"strings"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// parser maps one kind's external payload to a canonical record. Only the
// enumerated attribute keys are copied into Attributes; everything else is
// left out so downstream stages know exactly which fields they may rely on.
type parser struct {
	kind  domain.Kind
	attrs []string
}

// Attribute allow-lists are in canonical (camel-case) spelling; the raw
// payload is key-normalized before lookup.
var parsers = map[domain.Kind]parser{
	domain.KindComputeInstance: {domain.KindComputeInstance, []string{
		"shape", "shapeConfig", "imageId", "subnetId", "nsgIds", "faultDomain", "bootVolumeId",
	}},
	domain.KindComputeImage: {domain.KindComputeImage, []string{
		"operatingSystem", "operatingSystemVersion", "sizeInMbs", "launchMode",
	}},
	domain.KindComputeVolumeAttachment: {domain.KindComputeVolumeAttachment, []string{
		"instanceId", "volumeId", "attachmentType", "isReadOnly", "device",
	}},
	domain.KindStorageBlockVolume: {domain.KindStorageBlockVolume, []string{
		"sizeInGbs", "vpusPerGb", "kmsKeyId", "isHydrated",
	}},
	domain.KindStorageBootVolume: {domain.KindStorageBootVolume, []string{
		"sizeInGbs", "vpusPerGb", "kmsKeyId", "imageId",
	}},
	domain.KindStorageVolumeBackup: {domain.KindStorageVolumeBackup, []string{
		"volumeId", "sourceType", "sizeInGbs", "uniqueSizeInGbs",
	}},
	domain.KindStorageBucket: {domain.KindStorageBucket, []string{
		"namespace", "publicAccessType", "storageTier", "versioning", "kmsKeyId",
	}},
	domain.KindNetworkVCN: {domain.KindNetworkVCN, []string{
		"cidrBlock", "cidrBlocks", "dnsLabel", "defaultRouteTableId", "defaultSecurityListId",
	}},
	domain.KindNetworkSubnet: {domain.KindNetworkSubnet, []string{
		"cidrBlock", "vcnId", "routeTableId", "securityListIds",
		"prohibitInternetIngress", "prohibitPublicIpOnVnic", "dnsLabel",
	}},
	domain.KindNetworkSecurityList: {domain.KindNetworkSecurityList, []string{
		"vcnId", "ingressSecurityRules", "egressSecurityRules",
	}},
	domain.KindNetworkNSG: {domain.KindNetworkNSG, []string{
		"vcnId",
	}},
	domain.KindNetworkRouteTable: {domain.KindNetworkRouteTable, []string{
		"vcnId", "routeRules",
	}},
	domain.KindNetworkInternetGateway: {domain.KindNetworkInternetGateway, []string{
		"vcnId", "isEnabled",
	}},
	domain.KindNetworkNATGateway: {domain.KindNetworkNATGateway, []string{
		"vcnId", "blockTraffic", "natIp",
	}},
	domain.KindNetworkServiceGateway: {domain.KindNetworkServiceGateway, []string{
		"vcnId", "services",
	}},
	domain.KindNetworkLoadBalancer: {domain.KindNetworkLoadBalancer, []string{
		"shapeName", "isPrivate", "subnetIds", "nsgIds", "backendSets",
	}},
	domain.KindIdentityCompartment: {domain.KindIdentityCompartment, []string{
		"description", "isAccessible",
	}},
	domain.KindIdentityUser: {domain.KindIdentityUser, []string{
		"description", "email", "isMfaActivated", "groupIds",
	}},
	domain.KindIdentityGroup: {domain.KindIdentityGroup, []string{
		"description", "memberIds",
	}},
	domain.KindIdentityDynamicGroup: {domain.KindIdentityDynamicGroup, []string{
		"description", "matchingRule",
	}},
	domain.KindIdentityPolicy: {domain.KindIdentityPolicy, []string{
		"description", "statements",
	}},
	domain.KindDatabaseAutonomous: {domain.KindDatabaseAutonomous, []string{
		"dbName", "dbVersion", "cpuCoreCount", "dataStorageSizeInTbs", "isFreeTier",
		"subnetId", "nsgIds",
	}},
	domain.KindSecurityVault: {domain.KindSecurityVault, []string{
		"vaultType", "managementEndpoint", "cryptoEndpoint",
	}},
	domain.KindSecurityKey: {domain.KindSecurityKey, []string{
		"vaultId", "keyShape", "protectionMode", "currentKeyVersion",
	}},
}

func (p parser) parse(m map[string]any) domain.ResourceRecord {
	rec := parseCommon(m)
	rec.Kind = p.kind

	attrs := map[string]any{}
	for _, key := range p.attrs {
		if v, ok := m[key]; ok && v != nil {
			attrs[key] = v
		}
	}
	if len(attrs) > 0 {
		rec.Attributes = attrs
	}
	return rec
}

// parseCommon extracts the scalars every export record may carry,
// regardless of kind. m is already key-normalized.
func parseCommon(m map[string]any) domain.ResourceRecord {
	rec := domain.ResourceRecord{
		GlobalID:       str(m["id"]),
		DisplayName:    str(m["displayName"]),
		ContainerID:    str(m["compartmentId"]),
		LifecycleState: str(m["lifecycleState"]),
		Region:         str(m["region"]),
	}
	if rec.DisplayName == "" {
		rec.DisplayName = str(m["name"])
	}
	if ad := str(m["availabilityDomain"]); ad != "" {
		rec.AvailabilityDomain = ad
	}
	if raw := str(m["timeCreated"]); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			utc := t.UTC()
			rec.CreatedAt = &utc
		}
	}
	rec.DefinedTags = flattenDefinedTags(m["definedTags"])
	rec.FreeformTags = stringTags(m["freeformTags"])
	return rec
}

// parseGeneric is the fallback for payloads no structural detector claims.
// It keeps only the common scalars and derives the kind from the
// structural prefix of the global identifier ("ocid1.<type>....").
// Elements whose identifier yields no kind are dropped.
func parseGeneric(m map[string]any) (domain.ResourceRecord, bool) {
	rec := parseCommon(m)
	kind, ok := kindFromGlobalID(rec.GlobalID)
	if !ok {
		return domain.ResourceRecord{}, false
	}
	rec.Kind = kind
	return rec, true
}

var ocidKinds = map[string]domain.Kind{
	"instance":             domain.KindComputeInstance,
	"image":                domain.KindComputeImage,
	"volumeattachment":     domain.KindComputeVolumeAttachment,
	"volume":               domain.KindStorageBlockVolume,
	"bootvolume":           domain.KindStorageBootVolume,
	"volumebackup":         domain.KindStorageVolumeBackup,
	"bucket":               domain.KindStorageBucket,
	"vcn":                  domain.KindNetworkVCN,
	"subnet":               domain.KindNetworkSubnet,
	"securitylist":         domain.KindNetworkSecurityList,
	"networksecuritygroup": domain.KindNetworkNSG,
	"routetable":           domain.KindNetworkRouteTable,
	"internetgateway":      domain.KindNetworkInternetGateway,
	"natgateway":           domain.KindNetworkNATGateway,
	"servicegateway":       domain.KindNetworkServiceGateway,
	"loadbalancer":         domain.KindNetworkLoadBalancer,
	"compartment":          domain.KindIdentityCompartment,
	"tenancy":              domain.KindIdentityCompartment,
	"user":                 domain.KindIdentityUser,
	"group":                domain.KindIdentityGroup,
	"dynamicgroup":         domain.KindIdentityDynamicGroup,
	"policy":               domain.KindIdentityPolicy,
	"autonomousdatabase":   domain.KindDatabaseAutonomous,
	"vault":                domain.KindSecurityVault,
	"key":                  domain.KindSecurityKey,
}

// kindFromGlobalID resolves the "<type>" token of an "ocid1.<type>." style
// identifier. Unknown tokens still classify (the vocabulary is open): the
// token becomes a single-part kind.
func kindFromGlobalID(id string) (domain.Kind, bool) {
	parts := strings.SplitN(id, ".", 3)
	if len(parts) < 3 || parts[0] != "ocid1" || parts[1] == "" {
		return "", false
	}
	token := strings.ToLower(parts[1])
	if kind, ok := ocidKinds[token]; ok {
		return kind, true
	}
	return domain.Kind(token), true
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
