package relation

import "fmt"

// Node is one entity placed in a relation tree. Each node is owned by
// exactly one parent; the same entity may appear under several parents as
// separate nodes. A leaf node stands for an entity already expanded
// elsewhere in the tree.
type Node struct {
	Entity  Entity  `json:"relation_entity"`
	Members []*Node `json:"members"`
	IsLeaf  bool    `json:"is_leaf"`

	// parent is only set while the tree is being built.
	parent *Node
}

// NewNode returns an unattached node with no members.
func NewNode(e Entity) *Node {
	return &Node{Entity: e, Members: []*Node{}}
}

// AddMember attaches member as the last child of n and reports whether it
// was added. Adding n's own entity is a no-op, as is adding an entity that
// already appears among n's ancestors, except for a multi-member inner or
// outer construct that is the counterpart of n.
//
// AddMember panics if member is already attached to a parent.
func (n *Node) AddMember(member *Node) bool {
	if member.parent != nil {
		panic(fmt.Sprintf("relation: node %q already has parent %q",
			member.Entity.ID, member.parent.Entity.ID))
	}
	if member.Entity.ID == n.Entity.ID {
		return false
	}
	if n.ancestorIDs()[member.Entity.ID] {
		counterpart := oppositeID(n.Entity) == member.Entity.ID && len(member.Entity.Members) > 1
		if !counterpart {
			return false
		}
	}
	member.parent = n
	n.Members = append(n.Members, member)
	return true
}

// ancestorIDs returns the entity ids of all strict ancestors of n.
func (n *Node) ancestorIDs() map[string]bool {
	ids := make(map[string]bool)
	for p := n.parent; p != nil; p = p.parent {
		ids[p.Entity.ID] = true
	}
	return ids
}

// oppositeID maps an inner construct to the outer construct of the same
// wrapper and vice versa. Other entities have no opposite.
func oppositeID(e Entity) string {
	wrapperID, _ := e.Metadata["id"].(string)
	if wrapperID == "" {
		return ""
	}
	switch e.Type {
	case TypeInnerResources:
		return OuterResourceID(wrapperID)
	case TypeOuterResource:
		return InnerResourceID(wrapperID)
	}
	return ""
}

// detach clears construction-time parent links below n.
func (n *Node) detach() {
	n.parent = nil
	for _, m := range n.Members {
		m.detach()
	}
}

// Equal reports whether two trees hold the same entities, leaf flags and
// member order.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.IsLeaf != other.IsLeaf || !n.Entity.Equal(other.Entity) {
		return false
	}
	if len(n.Members) != len(other.Members) {
		return false
	}
	for i := range n.Members {
		if !n.Members[i].Equal(other.Members[i]) {
			return false
		}
	}
	return true
}

// ToMap converts the tree rooted at n into a plain nested mapping of the
// form {relation_entity, members, is_leaf}.
func (n *Node) ToMap() map[string]any {
	members := make([]any, 0, len(n.Members))
	for _, m := range n.Members {
		members = append(members, m.ToMap())
	}
	return map[string]any{
		"relation_entity": n.Entity.ToMap(),
		"members":         members,
		"is_leaf":         n.IsLeaf,
	}
}

// NodeFromMap is the inverse of ToMap.
func NodeFromMap(m map[string]any) (*Node, error) {
	rawEntity, ok := m["relation_entity"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: relation_entity", ErrMalformed)
	}
	entity, err := EntityFromMap(rawEntity)
	if err != nil {
		return nil, err
	}
	n := NewNode(entity)

	if leaf, present := m["is_leaf"]; present {
		b, ok := leaf.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: is_leaf of %s", ErrMalformed, entity.ID)
		}
		n.IsLeaf = b
	}

	var rawMembers []map[string]any
	switch list := m["members"].(type) {
	case nil:
	case []map[string]any:
		rawMembers = list
	case []any:
		for _, item := range list {
			child, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: members of %s", ErrMalformed, entity.ID)
			}
			rawMembers = append(rawMembers, child)
		}
	default:
		return nil, fmt.Errorf("%w: members of %s", ErrMalformed, entity.ID)
	}
	for _, raw := range rawMembers {
		child, err := NodeFromMap(raw)
		if err != nil {
			return nil, err
		}
		n.Members = append(n.Members, child)
	}
	return n, nil
}
