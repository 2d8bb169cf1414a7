package relation

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/papapumpkin/pcs/internal/cib"
)

// defaultOrderAction is the action pacemaker assumes when an ordering
// constraint leaves first-action or then-action unset.
const defaultOrderAction = "start"

// Option configures a Fetcher or the tree helpers.
type Option func(*options)

type options struct {
	log *zap.SugaredLogger
}

// WithLogger sets the logger used for debug and warning output.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Fetcher collects the relation closure of a resource from a CIB document.
type Fetcher struct {
	doc *cib.Document
	log *zap.SugaredLogger
}

// NewFetcher creates a Fetcher reading from doc.
func NewFetcher(doc *cib.Document, opts ...Option) *Fetcher {
	o := applyOptions(opts)
	return &Fetcher{doc: doc, log: o.log}
}

// GetRelations returns every resource and relation construct transitively
// reachable from resourceID by following membership and ordering
// constraints. Both maps are keyed by entity id.
func (f *Fetcher) GetRelations(resourceID string) (resources, relations map[string]Entity, err error) {
	if f.doc.FindResource(resourceID) == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}

	resources = make(map[string]Entity)
	relations = make(map[string]Entity)
	pending := []string{resourceID}

	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		if _, done := resources[id]; done {
			continue
		}

		el := f.doc.FindResource(id)
		if el == nil {
			f.log.Warnw("skipping reference to a missing resource", "resource", id)
			continue
		}

		found := f.resourceRelations(el)
		memberIDs := make([]string, 0, len(found))
		for _, rel := range found {
			memberIDs = append(memberIDs, rel.ID)
		}
		resources[id] = Entity{
			ID:       id,
			Type:     Type(el.Tag),
			Members:  memberIDs,
			Metadata: attributeMetadata(el),
		}

		for _, rel := range found {
			relations[rel.ID] = rel
			pending = append(pending, rel.Members...)
		}
		f.log.Debugw("collected resource relations", "resource", id, "relations", len(found))
	}

	f.log.Debugw("relation closure complete", "start", resourceID,
		"resources", len(resources), "relations", len(relations))
	return resources, relations, nil
}

// resourceRelations returns the constructs directly attached to a resource:
// ordering constraints, ordering sets, then the inner and outer constructs.
func (f *Fetcher) resourceRelations(el *etree.Element) []Entity {
	id := cib.ID(el)
	var found []Entity
	for _, c := range f.doc.OrderConstraints(id) {
		found = append(found, orderRelation(c))
	}
	for _, c := range f.doc.OrderSetConstraints(id) {
		found = append(found, orderSetRelation(c))
	}
	if cib.IsWrapper(el) {
		found = append(found, innerResourcesRelation(el))
	}
	if parent := cib.ParentResource(el); parent != nil {
		found = append(found, outerResourceRelation(parent))
	}
	return found
}

func attributeMetadata(el *etree.Element) map[string]any {
	attrs := cib.Attributes(el)
	md := make(map[string]any, len(attrs))
	for k, v := range attrs {
		md[k] = v
	}
	return md
}

func orderRelation(el *etree.Element) Entity {
	md := attributeMetadata(el)
	for _, key := range []string{"first-action", "then-action"} {
		if _, ok := md[key]; !ok {
			md[key] = defaultOrderAction
		}
	}
	return Entity{
		ID:       cib.ID(el),
		Type:     TypeOrder,
		Members:  []string{el.SelectAttrValue("first", ""), el.SelectAttrValue("then", "")},
		Metadata: md,
	}
}

// orderSetRelation keeps the per-set layout in metadata while Members is
// the sorted, deduplicated union of every referenced resource.
func orderSetRelation(el *etree.Element) Entity {
	md := attributeMetadata(el)
	seen := make(map[string]bool)
	sets := make([]any, 0)

	for _, set := range cib.ResourceSets(el) {
		setMembers := cib.SetMembers(set)
		refs := make([]any, 0, len(setMembers))
		for _, ref := range setMembers {
			refs = append(refs, ref)
			seen[ref] = true
		}
		sets = append(sets, map[string]any{
			"id":       cib.ID(set),
			"metadata": attributeMetadata(set),
			"members":  refs,
		})
	}
	md["sets"] = sets

	members := make([]string, 0, len(seen))
	for id := range seen {
		members = append(members, id)
	}
	sort.Strings(members)

	return Entity{
		ID:       cib.ID(el),
		Type:     TypeOrderSet,
		Members:  members,
		Metadata: md,
	}
}

func innerResourcesRelation(wrapper *etree.Element) Entity {
	id := cib.ID(wrapper)
	var members []string
	for _, inner := range cib.InnerResources(wrapper) {
		members = append(members, cib.ID(inner))
	}
	return Entity{
		ID:       InnerResourceID(id),
		Type:     TypeInnerResources,
		Members:  members,
		Metadata: map[string]any{"id": id},
	}
}

func outerResourceRelation(wrapper *etree.Element) Entity {
	id := cib.ID(wrapper)
	return Entity{
		ID:       OuterResourceID(id),
		Type:     TypeOuterResource,
		Members:  []string{id},
		Metadata: map[string]any{"id": id},
	}
}
