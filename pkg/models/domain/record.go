package domain

import "time"

// Kind is a two-part "<domain>/<subtype>" taxonomy string. Persisted kinds
// are long-lived identifiers: new values may be added, existing ones are
// never renamed.
type Kind string

const (
	KindComputeInstance         Kind = "compute/instance"
	KindComputeImage            Kind = "compute/image"
	KindComputeVolumeAttachment Kind = "compute/volume-attachment"

	KindStorageBlockVolume  Kind = "storage/block-volume"
	KindStorageBootVolume   Kind = "storage/boot-volume"
	KindStorageVolumeBackup Kind = "storage/volume-backup"
	KindStorageBucket       Kind = "storage/bucket"

	KindNetworkVCN             Kind = "network/vcn"
	KindNetworkSubnet          Kind = "network/subnet"
	KindNetworkSecurityList    Kind = "network/security-list"
	KindNetworkNSG             Kind = "network/nsg"
	KindNetworkRouteTable      Kind = "network/route-table"
	KindNetworkInternetGateway Kind = "network/internet-gateway"
	KindNetworkNATGateway      Kind = "network/nat-gateway"
	KindNetworkServiceGateway  Kind = "network/service-gateway"
	KindNetworkLoadBalancer    Kind = "network/load-balancer"

	KindIdentityCompartment  Kind = "identity/compartment"
	KindIdentityUser         Kind = "identity/user"
	KindIdentityGroup        Kind = "identity/group"
	KindIdentityDynamicGroup Kind = "identity/dynamic-group"
	KindIdentityPolicy       Kind = "identity/policy"

	KindDatabaseAutonomous Kind = "database/autonomous"

	KindSecurityVault Kind = "security/vault"
	KindSecurityKey   Kind = "security/key"
)

// Domain returns the "<domain>" half of the kind, or the whole string when
// it carries no subtype.
func (k Kind) Domain() string {
	for i := 0; i < len(k); i++ {
		if k[i] == '/' {
			return string(k[:i])
		}
	}
	return string(k)
}

// ResourceRecord is the canonical form of one external inventory item.
// GlobalID is the identifier assigned by the source system and is stable
// across re-imports; a record without one is unusable and is filtered out
// before persistence.
type ResourceRecord struct {
	// ID is the storage-layer row identifier, empty until persisted.
	ID                 string
	GlobalID           string
	Kind               Kind
	DisplayName        string
	ContainerID        string
	LifecycleState     string
	AvailabilityDomain string
	Region             string
	CreatedAt          *time.Time
	DefinedTags        map[string]string
	FreeformTags       map[string]string
	Attributes         map[string]any
}

// HasTag reports whether the record carries the given tag key in either
// tag namespace. Defined tags are stored flattened as "namespace.key", so
// a bare key also matches the key part of a namespaced tag.
func (r ResourceRecord) HasTag(key string) bool {
	if _, ok := r.FreeformTags[key]; ok {
		return true
	}
	if _, ok := r.DefinedTags[key]; ok {
		return true
	}
	suffix := "." + key
	for k := range r.DefinedTags {
		if len(k) > len(suffix) && k[len(k)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// Snapshot is one bounded, named inventory pull. Records and edges belong
// to exactly one snapshot and are destroyed with it.
type Snapshot struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
