package ui

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/pcs/internal/cib"
	"github.com/papapumpkin/pcs/internal/relation"
)

func leafNode(e relation.Entity) *relation.Node {
	n := relation.NewNode(e)
	n.IsLeaf = true
	return n
}

func TestResourceTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entity  relation.Entity
		verbose bool
		want    string
	}{
		{
			name:   "plain",
			entity: relation.Entity{ID: "d1", Type: relation.TypePrimitive, Metadata: map[string]any{"class": "ocf"}},
			want:   "d1",
		},
		{
			name: "full agent",
			entity: relation.Entity{ID: "d1", Type: relation.TypePrimitive,
				Metadata: map[string]any{"class": "ocf", "provider": "heartbeat", "type": "Dummy"}},
			verbose: true,
			want:    "d1 (resource: ocf:heartbeat:Dummy)",
		},
		{
			name: "no provider",
			entity: relation.Entity{ID: "d1", Type: relation.TypePrimitive,
				Metadata: map[string]any{"class": "ocf", "type": "Dummy"}},
			verbose: true,
			want:    "d1 (resource: ocf:Dummy)",
		},
		{
			name:    "type only",
			entity:  relation.Entity{ID: "d1", Type: relation.TypePrimitive, Metadata: map[string]any{"type": "Dummy"}},
			verbose: true,
			want:    "d1 (resource: Dummy)",
		},
		{
			name:    "primitive without agent",
			entity:  relation.Entity{ID: "d1", Type: relation.TypePrimitive, Metadata: map[string]any{"id": "d1"}},
			verbose: true,
			want:    "d1 (resource: primitive)",
		},
		{
			name:    "group",
			entity:  relation.Entity{ID: "g1", Type: relation.TypeGroup},
			verbose: true,
			want:    "g1 (resource: group)",
		},
		{
			name:    "clone",
			entity:  relation.Entity{ID: "c1", Type: relation.TypeClone},
			verbose: true,
			want:    "c1 (resource: clone)",
		},
		{
			name:    "bundle",
			entity:  relation.Entity{ID: "b1", Type: relation.TypeBundle},
			verbose: true,
			want:    "b1 (resource: bundle)",
		},
		{
			name:    "unrecognized",
			entity:  relation.Entity{ID: "m1", Type: relation.TypeMaster},
			verbose: true,
			want:    "m1 (resource: master)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n, err := NewResourceNode(relation.NewNode(tt.entity), tt.verbose)
			if err != nil {
				t.Fatalf("NewResourceNode: %v", err)
			}
			if got := n.Title(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if got := n.Detail(); len(got) != 0 {
				t.Errorf("resource detail = %q, want none", got)
			}
		})
	}
}

func TestRelationTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entity  relation.Entity
		verbose bool
		want    string
	}{
		{relation.Entity{ID: "o1", Type: relation.TypeOrder}, false, "order"},
		{relation.Entity{ID: "os", Type: relation.TypeOrderSet, Metadata: map[string]any{"id": "os"}}, true, "order set (os)"},
		{relation.Entity{ID: "inner:g1", Type: relation.TypeInnerResources, Metadata: map[string]any{"id": "g1"}}, true, "inner resource(s) (g1)"},
		{relation.Entity{ID: "outer:g1", Type: relation.TypeOuterResource, Metadata: map[string]any{"id": "g1"}}, false, "outer resource"},
		{relation.Entity{ID: "x", Type: "rsc_colocation"}, false, "<unknown>"},
	}
	for _, tt := range tests {
		n, err := NewRelationNode(leafNode(tt.entity), tt.verbose)
		if err != nil {
			t.Fatalf("NewRelationNode(%s): %v", tt.entity.ID, err)
		}
		if got := n.Title(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.entity.ID, got, tt.want)
		}
	}
}

func TestOrderDetail(t *testing.T) {
	t.Parallel()

	e := relation.Entity{
		ID:      "order-d1-d2",
		Type:    relation.TypeOrder,
		Members: []string{"d1", "d2"},
		Metadata: map[string]any{
			"first-action": "start",
			"first":        "d1",
			"then-action":  "start",
			"then":         "d2",
			"kind":         "Optional",
			"score":        "1000",
			"symmetrical":  "true",
			"unsupported":  "value",
		},
	}
	n, err := NewRelationNode(relation.NewNode(e), false)
	if err != nil {
		t.Fatalf("NewRelationNode: %v", err)
	}
	want := []string{"start d1 then start d2", "kind=Optional score=1000 symmetrical=true"}
	if diff := cmp.Diff(want, n.Detail()); diff != "" {
		t.Errorf("detail mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderDetailWithoutOptions(t *testing.T) {
	t.Parallel()

	e := relation.Entity{
		ID:   "o1",
		Type: relation.TypeOrder,
		Metadata: map[string]any{
			"first-action": "promote", "first": "m1", "then-action": "start", "then": "d2",
		},
	}
	n, err := NewRelationNode(relation.NewNode(e), false)
	if err != nil {
		t.Fatalf("NewRelationNode: %v", err)
	}
	if diff := cmp.Diff([]string{"promote m1 then start d2"}, n.Detail()); diff != "" {
		t.Errorf("detail mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderDetailMissingMetadata(t *testing.T) {
	t.Parallel()

	e := relation.Entity{
		ID:       "o1",
		Type:     relation.TypeOrder,
		Metadata: map[string]any{"first": "d1", "then-action": "start", "then": "d2"},
	}
	_, err := NewRelationNode(relation.NewNode(e), false)
	if !errors.Is(err, ErrMissingMetadata) {
		t.Errorf("got %v, want ErrMissingMetadata", err)
	}

	// Leaf nodes render no detail, so the check does not apply.
	if _, err := NewRelationNode(leafNode(e), false); err != nil {
		t.Errorf("leaf: got %v, want nil", err)
	}
}

func TestOrderSetDetail(t *testing.T) {
	t.Parallel()

	e := relation.Entity{
		ID:      "os",
		Type:    relation.TypeOrderSet,
		Members: []string{"b1", "c1", "d2"},
		Metadata: map[string]any{
			"id":   "os",
			"kind": "Mandatory",
			"sets": []any{
				map[string]any{
					"id":       "os-0",
					"metadata": map[string]any{"id": "os-0", "sequential": "false", "role": "Started", "foo": "bar"},
					"members":  []any{"d2", "c1"},
				},
				map[string]any{
					"id":       "os-1",
					"metadata": map[string]any{"id": "os-1"},
					"members":  []any{"b1"},
				},
			},
		},
	}
	n, err := NewRelationNode(relation.NewNode(e), false)
	if err != nil {
		t.Fatalf("NewRelationNode: %v", err)
	}
	want := []string{
		"kind=Mandatory",
		"   set d2 c1 (role=Started sequential=false)",
		"   set b1",
	}
	if diff := cmp.Diff(want, n.Detail()); diff != "" {
		t.Errorf("detail mismatch (-want +got):\n%s", diff)
	}
}

func TestInnerResourcesDetail(t *testing.T) {
	t.Parallel()

	multi := relation.Entity{ID: "inner:g1", Type: relation.TypeInnerResources, Members: []string{"d4", "d3"}}
	n, err := NewRelationNode(relation.NewNode(multi), false)
	if err != nil {
		t.Fatalf("NewRelationNode: %v", err)
	}
	if diff := cmp.Diff([]string{"members: d4 d3"}, n.Detail()); diff != "" {
		t.Errorf("detail mismatch (-want +got):\n%s", diff)
	}

	for _, e := range []relation.Entity{
		{ID: "inner:c1", Type: relation.TypeInnerResources, Members: []string{"g2"}},
		{ID: "outer:g1", Type: relation.TypeOuterResource, Members: []string{"g1"}},
	} {
		n, err := NewRelationNode(relation.NewNode(e), false)
		if err != nil {
			t.Fatalf("NewRelationNode(%s): %v", e.ID, err)
		}
		if got := n.Detail(); len(got) != 0 {
			t.Errorf("%s detail = %q, want none", e.ID, got)
		}
	}
}

func TestResourceChildOrder(t *testing.T) {
	t.Parallel()

	root := relation.NewNode(relation.Entity{ID: "d1", Type: relation.TypePrimitive})
	for _, e := range []relation.Entity{
		{ID: "z-set", Type: relation.TypeOrderSet},
		{ID: "b-order", Type: relation.TypeOrder},
		{ID: "a-order", Type: relation.TypeOrder},
		{ID: "colo", Type: "rsc_colocation"},
		{ID: "outer:g1", Type: relation.TypeOuterResource},
		{ID: "inner:d1", Type: relation.TypeInnerResources},
	} {
		root.AddMember(leafNode(e))
	}

	n, err := NewResourceNode(root, true)
	if err != nil {
		t.Fatalf("NewResourceNode: %v", err)
	}
	var got []string
	for _, m := range n.Members() {
		got = append(got, m.Title())
	}
	want := []string{"inner resource(s)", "outer resource", "order", "order", "order set", "<unknown>"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("child order mismatch (-want +got):\n%s", diff)
	}
}

func TestRelationsTreeLines(t *testing.T) {
	t.Parallel()

	doc, err := cib.Parse([]byte(`<cib><configuration>
  <resources>
    <primitive id="d1" class="ocf" provider="heartbeat" type="Dummy"/>
    <primitive id="d2" class="ocf" provider="heartbeat" type="Dummy"/>
    <group id="g1">
      <primitive id="d3" class="ocf" provider="heartbeat" type="Dummy"/>
      <primitive id="d4" class="ocf" provider="heartbeat" type="Dummy"/>
    </group>
  </resources>
  <constraints>
    <rsc_order id="order-d1-d2" first="d1" first-action="start" then="d2" then-action="start" kind="Mandatory" symmetrical="true"/>
    <rsc_order id="order-g1-d1" first="g1" then="d1"/>
  </constraints>
</configuration></cib>`))
	if err != nil {
		t.Fatalf("cib.Parse: %v", err)
	}
	tree, err := relation.ResourceRelationsTree(doc, "d1")
	if err != nil {
		t.Fatalf("ResourceRelationsTree: %v", err)
	}

	tests := []struct {
		name    string
		verbose bool
		want    []string
	}{
		{
			name: "terse",
			want: []string{
				"d1",
				"|- order",
				"|  |  start d1 then start d2",
				"|  |  kind=Mandatory symmetrical=true",
				"|  `- d2",
				"`- order",
				"   |  start g1 then start d1",
				"   `- g1",
				"      `- inner resource(s)",
				"         |  members: d3 d4",
				"         |- d3",
				"         |  `- outer resource",
				"         `- d4",
				"            `- outer resource [shown elsewhere]",
			},
		},
		{
			name:    "verbose",
			verbose: true,
			want: []string{
				"d1 (resource: ocf:heartbeat:Dummy)",
				"|- order (order-d1-d2)",
				"|  |  start d1 then start d2",
				"|  |  kind=Mandatory symmetrical=true",
				"|  `- d2 (resource: ocf:heartbeat:Dummy)",
				"`- order (order-g1-d1)",
				"   |  start g1 then start d1",
				"   `- g1 (resource: group)",
				"      `- inner resource(s) (g1)",
				"         |  members: d3 d4",
				"         |- d3 (resource: ocf:heartbeat:Dummy)",
				"         |  `- outer resource (g1)",
				"         `- d4 (resource: ocf:heartbeat:Dummy)",
				"            `- outer resource (g1) [shown elsewhere]",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RelationsTreeLines(tree, tt.verbose)
			if err != nil {
				t.Fatalf("RelationsTreeLines: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
