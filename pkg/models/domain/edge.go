package domain

// Relation is the vocabulary of directed edge types. Like Kind it is
// versioned by addition only. A relation may exist in the vocabulary
// before any graph rule produces it (e.g. RelationSigns).
type Relation string

const (
	RelationContains       Relation = "contains"
	RelationParent         Relation = "parent"
	RelationSubnetMember   Relation = "subnet-member"
	RelationRoutesVia      Relation = "routes-via"
	RelationSecuredBy      Relation = "secured-by"
	RelationNSGMember      Relation = "nsg-member"
	RelationVolumeAttached Relation = "volume-attached"
	RelationLBBackend      Relation = "lb-backend"
	RelationGatewayFor     Relation = "gateway-for"
	RelationRunsIn         Relation = "runs-in"
	RelationUsesVCN        Relation = "uses-vcn"
	RelationUsesImage      Relation = "uses-image"
	RelationMemberOf       Relation = "member-of"
	RelationStoredIn       Relation = "stored-in"
	RelationDeployedTo     Relation = "deployed-to"
	RelationBackupOf       Relation = "backup-of"
	RelationGroups         Relation = "groups"
	RelationAttachedTo     Relation = "attached-to"
	RelationSigns          Relation = "signs"
	RelationBelongsTo      Relation = "belongs-to"
)

// ResourceEdge is a directed, typed link between two records of the same
// snapshot. FromID/ToID are storage-layer record ids, not global ids.
// (FromID, ToID, Relation) is unique per snapshot.
type ResourceEdge struct {
	FromID   string
	ToID     string
	Relation Relation
	Metadata map[string]string
}
