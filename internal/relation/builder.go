package relation

import (
	"fmt"

	"github.com/papapumpkin/pcs/internal/cib"
)

// TreeBuilder arranges the output of a Fetcher into a tree rooted at a
// resource.
type TreeBuilder struct {
	resources map[string]Entity
	relations map[string]Entity
}

// NewTreeBuilder creates a builder over the given resource and relation maps.
// The maps are only read.
func NewTreeBuilder(resources, relations map[string]Entity) *TreeBuilder {
	return &TreeBuilder{resources: resources, relations: relations}
}

func (b *TreeBuilder) entity(id string) (Entity, bool) {
	if e, ok := b.resources[id]; ok {
		return e, true
	}
	e, ok := b.relations[id]
	return e, ok
}

// GetTree expands the entity graph breadth-first from resourceID. The first
// time an entity is dequeued its members become child nodes; any later node
// for the same entity is marked as a leaf and left unexpanded, so cycles
// terminate. Returns ErrNotAResource when resourceID is not in the resource
// map.
func (b *TreeBuilder) GetTree(resourceID string) (*Node, error) {
	rootEntity, ok := b.resources[resourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAResource, resourceID)
	}

	root := NewNode(rootEntity)
	processed := make(map[string]bool)
	queue := []*Node{root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if processed[node.Entity.ID] {
			node.IsLeaf = true
			continue
		}
		processed[node.Entity.ID] = true

		for _, memberID := range node.Entity.Members {
			e, ok := b.entity(memberID)
			if !ok {
				continue
			}
			child := NewNode(e)
			if node.AddMember(child) {
				queue = append(queue, child)
			}
		}
	}

	root.detach()
	return root, nil
}

// ResourceRelationsTree validates that resourceID names a resource in doc,
// then returns its relation tree.
func ResourceRelationsTree(doc *cib.Document, resourceID string, opts ...Option) (*Node, error) {
	el := doc.FindElementByID(resourceID)
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}
	if doc.FindResource(resourceID) == nil {
		return nil, fmt.Errorf("%w: '%s' is a %s", ErrNotAResource, resourceID, el.Tag)
	}

	resources, relations, err := NewFetcher(doc, opts...).GetRelations(resourceID)
	if err != nil {
		return nil, err
	}
	return NewTreeBuilder(resources, relations).GetTree(resourceID)
}
