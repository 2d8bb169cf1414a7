package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/papapumpkin/pcs/internal/printable"
	"github.com/papapumpkin/pcs/internal/relation"
)

// ErrMissingMetadata is returned when a relation construct lacks a metadata
// key its detail lines cannot be formatted without.
var ErrMissingMetadata = errors.New("missing relation metadata")

// commonOrderOptions are the constraint-level options summarized under
// order and order set nodes.
var commonOrderOptions = []string{"kind", "require-all", "score", "symmetrical"}

// setOptions are the resource_set attributes shown on a set line.
var setOptions = []string{"action", "kind", "ordering", "require-all", "role", "score", "sequential"}

// relationPriority orders a resource's relation children so containment is
// listed before ordering.
var relationPriority = map[relation.Type]int{
	relation.TypeInnerResources: 0,
	relation.TypeOuterResource:  1,
	relation.TypeOrder:          2,
	relation.TypeOrderSet:       3,
}

// ResourceNode presents a resource entity. Its members are relation nodes.
type ResourceNode struct {
	title   string
	leaf    bool
	members []printable.Node
}

// NewResourceNode converts a relation tree rooted at a resource into
// printable form. verbose adds the resource agent to the title.
func NewResourceNode(n *relation.Node, verbose bool) (*ResourceNode, error) {
	rn := &ResourceNode{title: n.Entity.ID, leaf: n.IsLeaf}
	if verbose {
		rn.title = fmt.Sprintf("%s (resource: %s)", n.Entity.ID, resourceSpec(n.Entity))
	}

	children := make([]*relation.Node, len(n.Members))
	copy(children, n.Members)
	sort.SliceStable(children, func(i, j int) bool {
		pi, pj := priority(children[i].Entity.Type), priority(children[j].Entity.Type)
		if pi != pj {
			return pi < pj
		}
		return children[i].Entity.ID < children[j].Entity.ID
	})

	for _, c := range children {
		child, err := NewRelationNode(c, verbose)
		if err != nil {
			return nil, err
		}
		rn.members = append(rn.members, child)
	}
	return rn, nil
}

func priority(t relation.Type) int {
	if p, ok := relationPriority[t]; ok {
		return p
	}
	return len(relationPriority)
}

// resourceSpec describes the agent behind a resource: class:provider:type
// for primitives, the element kind for wrappers, anything unrecognized and
// primitives that name no agent.
func resourceSpec(e relation.Entity) string {
	if e.Type != relation.TypePrimitive {
		return string(e.Type)
	}
	var parts []string
	for _, key := range []string{"class", "provider", "type"} {
		if v := metadataString(e.Metadata, key); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return string(e.Type)
	}
	return strings.Join(parts, ":")
}

// Title implements printable.Node.
func (r *ResourceNode) Title() string { return r.title }

// Detail implements printable.Node. Resources carry no detail.
func (r *ResourceNode) Detail() []string { return nil }

// Members implements printable.Node.
func (r *ResourceNode) Members() []printable.Node { return r.members }

// IsLeaf implements printable.Node.
func (r *ResourceNode) IsLeaf() bool { return r.leaf }

// RelationNode presents a relation construct. Its members are resource nodes.
type RelationNode struct {
	title   string
	detail  []string
	leaf    bool
	members []printable.Node
}

// NewRelationNode converts a relation tree rooted at a relation construct
// into printable form. Detail lines are formatted up front so a construct
// missing mandatory metadata fails here rather than mid-render.
func NewRelationNode(n *relation.Node, verbose bool) (*RelationNode, error) {
	rn := &RelationNode{title: relationLabel(n.Entity.Type), leaf: n.IsLeaf}
	if verbose {
		if id := metadataString(n.Entity.Metadata, "id"); id != "" {
			rn.title = fmt.Sprintf("%s (%s)", rn.title, id)
		}
	}
	if n.IsLeaf {
		return rn, nil
	}

	detail, err := relationDetail(n.Entity)
	if err != nil {
		return nil, err
	}
	rn.detail = detail

	children := make([]*relation.Node, len(n.Members))
	copy(children, n.Members)
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Entity.ID < children[j].Entity.ID
	})
	for _, c := range children {
		child, err := NewResourceNode(c, verbose)
		if err != nil {
			return nil, err
		}
		rn.members = append(rn.members, child)
	}
	return rn, nil
}

func relationLabel(t relation.Type) string {
	switch t {
	case relation.TypeOrder:
		return "order"
	case relation.TypeOrderSet:
		return "order set"
	case relation.TypeInnerResources:
		return "inner resource(s)"
	case relation.TypeOuterResource:
		return "outer resource"
	}
	return "<unknown>"
}

func relationDetail(e relation.Entity) ([]string, error) {
	switch e.Type {
	case relation.TypeOrder:
		return orderDetail(e)
	case relation.TypeOrderSet:
		return orderSetDetail(e), nil
	case relation.TypeInnerResources:
		if len(e.Members) > 1 {
			return []string{"members: " + strings.Join(e.Members, " ")}, nil
		}
	}
	return nil, nil
}

func orderDetail(e relation.Entity) ([]string, error) {
	values := make(map[string]string, 4)
	for _, key := range []string{"first-action", "first", "then-action", "then"} {
		v, ok := e.Metadata[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q in order %s", ErrMissingMetadata, key, e.ID)
		}
		values[key] = fmt.Sprint(v)
	}
	lines := []string{fmt.Sprintf("%s %s then %s %s",
		values["first-action"], values["first"], values["then-action"], values["then"])}
	if opts := optionPairs(e.Metadata, commonOrderOptions); len(opts) > 0 {
		lines = append(lines, strings.Join(opts, " "))
	}
	return lines, nil
}

func orderSetDetail(e relation.Entity) []string {
	var lines []string
	if opts := optionPairs(e.Metadata, commonOrderOptions); len(opts) > 0 {
		lines = append(lines, strings.Join(opts, " "))
	}

	sets, _ := e.Metadata["sets"].([]any)
	for _, raw := range sets {
		set, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		var members []string
		if refs, ok := set["members"].([]any); ok {
			for _, ref := range refs {
				members = append(members, fmt.Sprint(ref))
			}
		}
		line := "   set " + strings.Join(members, " ")
		md, _ := set["metadata"].(map[string]any)
		if opts := optionPairs(md, setOptions); len(opts) > 0 {
			line += " (" + strings.Join(opts, " ") + ")"
		}
		lines = append(lines, line)
	}
	return lines
}

// optionPairs returns key=value for every allowed key present in md.
// allowed is kept sorted so the pairs come out in key order.
func optionPairs(md map[string]any, allowed []string) []string {
	var pairs []string
	for _, key := range allowed {
		if v, ok := md[key]; ok {
			pairs = append(pairs, fmt.Sprintf("%s=%v", key, v))
		}
	}
	return pairs
}

func metadataString(md map[string]any, key string) string {
	v, ok := md[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Title implements printable.Node.
func (r *RelationNode) Title() string { return r.title }

// Detail implements printable.Node.
func (r *RelationNode) Detail() []string { return r.detail }

// Members implements printable.Node.
func (r *RelationNode) Members() []printable.Node { return r.members }

// IsLeaf implements printable.Node.
func (r *RelationNode) IsLeaf() bool { return r.leaf }

// RelationsTreeLines renders a resource relation tree as text lines.
func RelationsTreeLines(tree *relation.Node, verbose bool) ([]string, error) {
	root, err := NewResourceNode(tree, verbose)
	if err != nil {
		return nil, err
	}
	return printable.TreeToLines(root, "", ""), nil
}
