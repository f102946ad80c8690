package store

// ResourceEdge is the row shape of one relationship edge.
// (SnapshotID, FromID, ToID, Relation) is the primary key.
type ResourceEdge struct {
	SnapshotID string
	FromID     string
	ToID       string
	Relation   string
	Metadata   map[string]string
}
