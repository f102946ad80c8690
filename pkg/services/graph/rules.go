package graph

import (
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// lookup resolves a global id to its storage row id within one snapshot.
// It is fully built before any rule runs, so rules never depend on record
// iteration order or on each other.
type lookup map[string]string

// referenceRule derives zero or more edges from one record. Rules are
// independent of each other, which keeps the whole rebuild idempotent and
// order-free.
type referenceRule func(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge

var referenceRules = []referenceRule{
	ruleContainment,
	ruleCompartmentParent,
	ruleVCNContainsSubnet,
	ruleSubnetMembership,
	ruleNSGMembership,
	ruleSecuredBy,
	ruleRoutesVia,
	ruleGatewayFor,
	ruleUsesVCN,
	ruleUsesImage,
	ruleBootVolumeAttachment,
	ruleVolumeAttachment,
	ruleLoadBalancerBackends,
	ruleLoadBalancerSubnets,
	ruleGroupMembership,
	ruleGroupMembers,
	ruleKeyVault,
	ruleVolumeBackup,
	ruleDatabaseSubnet,
}

// ruleContainment links the owning container to every record it holds.
func ruleContainment(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	return singleRef(r.ContainerID, ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: to, ToID: r.ID, Relation: domain.RelationContains}
	})
}

// ruleCompartmentParent adds the hierarchy edge between compartments; for
// a compartment record the container id is its parent compartment.
func ruleCompartmentParent(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindIdentityCompartment {
		return nil
	}
	return singleRef(r.ContainerID, ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: to, ToID: r.ID, Relation: domain.RelationParent}
	})
}

// ruleVCNContainsSubnet points container network -> subnet. This is the
// one membership rule whose direction is reversed: the VCN contains the
// subnet even though the subnet carries the reference.
func ruleVCNContainsSubnet(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindNetworkSubnet {
		return nil
	}
	return singleRef(attrString(r, "vcnId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: to, ToID: r.ID, Relation: domain.RelationContains}
	})
}

func ruleSubnetMembership(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	// Databases get the runs-in relation instead.
	if r.Kind == domain.KindDatabaseAutonomous {
		return nil
	}
	return singleRef(attrString(r, "subnetId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationSubnetMember}
	})
}

func ruleNSGMembership(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	return listRefs(r, "nsgIds", ids, domain.RelationNSGMember)
}

func ruleSecuredBy(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	return listRefs(r, "securityListIds", ids, domain.RelationSecuredBy)
}

func ruleRoutesVia(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	return singleRef(attrString(r, "routeTableId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationRoutesVia}
	})
}

func ruleGatewayFor(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	switch r.Kind {
	case domain.KindNetworkInternetGateway, domain.KindNetworkNATGateway, domain.KindNetworkServiceGateway:
	default:
		return nil
	}
	return singleRef(attrString(r, "vcnId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationGatewayFor}
	})
}

func ruleUsesVCN(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	switch r.Kind {
	case domain.KindNetworkSecurityList, domain.KindNetworkRouteTable, domain.KindNetworkNSG:
	default:
		return nil
	}
	return singleRef(attrString(r, "vcnId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationUsesVCN}
	})
}

func ruleUsesImage(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindComputeInstance {
		return nil
	}
	return singleRef(attrString(r, "imageId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationUsesImage}
	})
}

func ruleBootVolumeAttachment(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindComputeInstance {
		return nil
	}
	return singleRef(attrString(r, "bootVolumeId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationAttachedTo}
	})
}

// ruleVolumeAttachment needs both sides of the attachment record to
// resolve; partial resolution never yields a partial edge.
func ruleVolumeAttachment(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindComputeVolumeAttachment {
		return nil
	}
	instanceID, okInstance := ids[attrString(r, "instanceId")]
	volumeID, okVolume := ids[attrString(r, "volumeId")]
	if !okInstance || !okVolume {
		return nil
	}
	return []domain.ResourceEdge{{
		FromID:   instanceID,
		ToID:     volumeID,
		Relation: domain.RelationVolumeAttached,
		Metadata: map[string]string{"attachment": r.GlobalID},
	}}
}

// ruleLoadBalancerBackends digs backend targets out of the nested
// backend-set structure; edge metadata records which set produced the link.
func ruleLoadBalancerBackends(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindNetworkLoadBalancer {
		return nil
	}
	sets, ok := r.Attributes["backendSets"].([]any)
	if !ok {
		return nil
	}
	var edges []domain.ResourceEdge
	for _, rawSet := range sets {
		set, ok := rawSet.(map[string]any)
		if !ok {
			continue
		}
		setName, _ := set["name"].(string)
		backends, _ := set["backends"].([]any)
		for _, rawBackend := range backends {
			backend, ok := rawBackend.(map[string]any)
			if !ok {
				continue
			}
			targetRef, _ := backend["targetId"].(string)
			targetID, ok := ids[targetRef]
			if !ok {
				continue
			}
			edges = append(edges, domain.ResourceEdge{
				FromID:   r.ID,
				ToID:     targetID,
				Relation: domain.RelationLBBackend,
				Metadata: map[string]string{"backendSet": setName},
			})
		}
	}
	return edges
}

func ruleLoadBalancerSubnets(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindNetworkLoadBalancer {
		return nil
	}
	return listRefs(r, "subnetIds", ids, domain.RelationDeployedTo)
}

func ruleGroupMembership(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindIdentityUser {
		return nil
	}
	return listRefs(r, "groupIds", ids, domain.RelationMemberOf)
}

func ruleGroupMembers(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindIdentityGroup {
		return nil
	}
	return listRefs(r, "memberIds", ids, domain.RelationGroups)
}

func ruleKeyVault(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindSecurityKey {
		return nil
	}
	return singleRef(attrString(r, "vaultId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationStoredIn}
	})
}

func ruleVolumeBackup(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindStorageVolumeBackup {
		return nil
	}
	return singleRef(attrString(r, "volumeId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationBackupOf}
	})
}

func ruleDatabaseSubnet(r domain.ResourceRecord, ids lookup) []domain.ResourceEdge {
	if r.Kind != domain.KindDatabaseAutonomous {
		return nil
	}
	return singleRef(attrString(r, "subnetId"), ids, func(to string) domain.ResourceEdge {
		return domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: domain.RelationRunsIn}
	})
}

func singleRef(ref string, ids lookup, mk func(to string) domain.ResourceEdge) []domain.ResourceEdge {
	if ref == "" {
		return nil
	}
	id, ok := ids[ref]
	if !ok {
		// An unresolved reference is not an error; partial inventories
		// simply produce fewer edges.
		return nil
	}
	return []domain.ResourceEdge{mk(id)}
}

func listRefs(r domain.ResourceRecord, attr string, ids lookup, relation domain.Relation) []domain.ResourceEdge {
	raw, ok := r.Attributes[attr].([]any)
	if !ok {
		return nil
	}
	var edges []domain.ResourceEdge
	for _, item := range raw {
		ref, _ := item.(string)
		if to, ok := ids[ref]; ok {
			edges = append(edges, domain.ResourceEdge{FromID: r.ID, ToID: to, Relation: relation})
		}
	}
	return edges
}

func attrString(r domain.ResourceRecord, key string) string {
	s, _ := r.Attributes[key].(string)
	return s
}
