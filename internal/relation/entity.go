// Package relation reconstructs how cluster resources relate to each other.
// It collects every resource and relation construct (ordering constraints,
// ordering sets, group/clone/bundle membership) reachable from a resource and
// arranges them into a finite tree, breaking cycles by marking repeated
// entities as leaves.
package relation

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// ErrResourceNotFound is returned when a requested resource id does not
// exist in the CIB.
var ErrResourceNotFound = errors.New("resource not found")

// ErrNotAResource is returned when an id exists but does not name a resource.
var ErrNotAResource = errors.New("not a resource")

// ErrMalformed is returned when a nested mapping cannot be decoded.
var ErrMalformed = errors.New("malformed relation mapping")

// Type tags an Entity. Resource types carry the CIB element name.
type Type string

// Resource types.
const (
	TypePrimitive Type = "primitive"
	TypeGroup     Type = "group"
	TypeClone     Type = "clone"
	TypeMaster    Type = "master"
	TypeBundle    Type = "bundle"
)

// Relation construct types.
const (
	TypeOrder          Type = "rsc_order"
	TypeOrderSet       Type = "rsc_order_set"
	TypeInnerResources Type = "inner_resource"
	TypeOuterResource  Type = "outer_resource"
)

// Templates of synthesized construct ids. A colon is not legal in a CIB id
// so these never collide with real elements.
const (
	innerResourceIDPrefix = "inner:"
	outerResourceIDPrefix = "outer:"
)

// InnerResourceID returns the id of the construct listing the resources
// contained in wrapperID.
func InnerResourceID(wrapperID string) string {
	return innerResourceIDPrefix + wrapperID
}

// OuterResourceID returns the id of the construct naming wrapperID as the
// container of its members.
func OuterResourceID(wrapperID string) string {
	return outerResourceIDPrefix + wrapperID
}

// Entity is one resource or relation construct in the relation graph.
// Members holds the ids of directly linked entities: relation constructs for
// a resource, resources for a construct.
//
// Metadata values are JSON-shaped: strings, []any and map[string]any.
type Entity struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	Members  []string       `json:"members"`
	Metadata map[string]any `json:"metadata"`
}

// IsResource reports whether e is a resource rather than a relation construct.
func (e Entity) IsResource() bool {
	switch e.Type {
	case TypePrimitive, TypeGroup, TypeClone, TypeMaster, TypeBundle:
		return true
	}
	return false
}

// Equal reports whether e and other hold the same values. Nil and empty
// members or metadata compare equal.
func (e Entity) Equal(other Entity) bool {
	if e.ID != other.ID || e.Type != other.Type {
		return false
	}
	if !slices.Equal(e.Members, other.Members) {
		return false
	}
	if len(e.Metadata) == 0 && len(other.Metadata) == 0 {
		return true
	}
	return reflect.DeepEqual(e.Metadata, other.Metadata)
}

// ToMap converts e into a plain nested mapping.
func (e Entity) ToMap() map[string]any {
	members := make([]any, 0, len(e.Members))
	for _, m := range e.Members {
		members = append(members, m)
	}
	metadata := make(map[string]any, len(e.Metadata))
	maps.Copy(metadata, e.Metadata)
	return map[string]any{
		"id":       e.ID,
		"type":     string(e.Type),
		"members":  members,
		"metadata": metadata,
	}
}

// EntityFromMap is the inverse of ToMap. Metadata is passed through as-is.
func EntityFromMap(m map[string]any) (Entity, error) {
	id, ok := m["id"].(string)
	if !ok {
		return Entity{}, fmt.Errorf("%w: entity id", ErrMalformed)
	}
	typ, ok := m["type"].(string)
	if !ok {
		return Entity{}, fmt.Errorf("%w: type of entity %s", ErrMalformed, id)
	}
	members, err := stringSlice(m["members"])
	if err != nil {
		return Entity{}, fmt.Errorf("%w: members of entity %s", err, id)
	}

	e := Entity{ID: id, Type: Type(typ), Members: members}
	switch md := m["metadata"].(type) {
	case nil:
	case map[string]any:
		e.Metadata = make(map[string]any, len(md))
		maps.Copy(e.Metadata, md)
	default:
		return Entity{}, fmt.Errorf("%w: metadata of entity %s", ErrMalformed, id)
	}
	return e, nil
}

func stringSlice(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return slices.Clone(list), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, ErrMalformed
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, ErrMalformed
	}
}
