package cib

import "github.com/beevik/etree"

// OrderConstraints returns the pairwise rsc_order constraints (those without
// resource sets) naming resourceID as first or then, in document order.
func (d *Document) OrderConstraints(resourceID string) []*etree.Element {
	var found []*etree.Element
	for _, el := range d.orderElements() {
		if IsSetConstraint(el) {
			continue
		}
		if el.SelectAttrValue("first", "") == resourceID || el.SelectAttrValue("then", "") == resourceID {
			found = append(found, el)
		}
	}
	return found
}

// OrderSetConstraints returns the rsc_order constraints that reference
// resourceID from any of their resource sets, in document order.
func (d *Document) OrderSetConstraints(resourceID string) []*etree.Element {
	var found []*etree.Element
	for _, el := range d.orderElements() {
		if !IsSetConstraint(el) {
			continue
		}
		if referencesResource(el, resourceID) {
			found = append(found, el)
		}
	}
	return found
}

func (d *Document) orderElements() []*etree.Element {
	constraints, err := d.Constraints()
	if err != nil {
		return nil
	}
	return constraints.SelectElements(TagOrder)
}

// IsSetConstraint reports whether a constraint element uses resource sets.
func IsSetConstraint(el *etree.Element) bool {
	return el.SelectElement(TagResourceSet) != nil
}

// ResourceSets returns the resource_set children of a constraint.
func ResourceSets(el *etree.Element) []*etree.Element {
	return el.SelectElements(TagResourceSet)
}

// SetMembers returns the ids referenced by a resource_set, in document order.
func SetMembers(set *etree.Element) []string {
	refs := set.SelectElements(TagResourceRef)
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ID(ref))
	}
	return ids
}

func referencesResource(constraint *etree.Element, resourceID string) bool {
	for _, set := range ResourceSets(constraint) {
		for _, id := range SetMembers(set) {
			if id == resourceID {
				return true
			}
		}
	}
	return false
}
