// Package cib provides read access to a Pacemaker Cluster Information Base
// document: loading it from a file, stdin or the live cluster, and the
// resource and constraint queries used to reconstruct resource relations.
package cib

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
)

// ErrMissingSection is returned when the document lacks a required
// configuration section.
var ErrMissingSection = errors.New("missing cib section")

// ErrEmptyDocument is returned when the input contains no root element.
var ErrEmptyDocument = errors.New("empty cib document")

// Element tags of resources that may appear in the resources section.
const (
	TagPrimitive = "primitive"
	TagGroup     = "group"
	TagClone     = "clone"
	TagMaster    = "master"
	TagBundle    = "bundle"
)

// Constraint element tags.
const (
	TagOrder       = "rsc_order"
	TagResourceSet = "resource_set"
	TagResourceRef = "resource_ref"
)

var resourceTags = map[string]bool{
	TagPrimitive: true,
	TagGroup:     true,
	TagClone:     true,
	TagMaster:    true,
	TagBundle:    true,
}

var wrapperTags = map[string]bool{
	TagGroup:  true,
	TagClone:  true,
	TagMaster: true,
	TagBundle: true,
}

// Document is a parsed CIB. It is read-only after construction and safe
// for concurrent queries.
type Document struct {
	doc           *etree.Document
	configuration *etree.Element
	byID          map[string]*etree.Element
}

// Parse builds a Document from raw CIB XML. The root may be either a full
// <cib> element or a bare <configuration> element.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing cib xml: %w", err)
	}
	return newDocument(doc)
}

// Read builds a Document from XML read from r.
func Read(r io.Reader) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing cib xml: %w", err)
	}
	return newDocument(doc)
}

// ReadFile builds a Document from the XML file at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cib file: %w", err)
	}
	return Parse(data)
}

func newDocument(doc *etree.Document) (*Document, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	conf := root
	if root.Tag != "configuration" {
		conf = root.FindElement("./configuration")
		if conf == nil {
			return nil, fmt.Errorf("%w: configuration", ErrMissingSection)
		}
	}

	d := &Document{
		doc:           doc,
		configuration: conf,
		byID:          make(map[string]*etree.Element),
	}
	d.index(conf)
	return d, nil
}

// index records every element carrying an id attribute. Ids are unique
// within a valid CIB; on duplicates the first element in document order wins.
func (d *Document) index(el *etree.Element) {
	if id := el.SelectAttrValue("id", ""); id != "" {
		if _, seen := d.byID[id]; !seen {
			d.byID[id] = el
		}
	}
	for _, child := range el.ChildElements() {
		d.index(child)
	}
}

// Resources returns the resources section.
func (d *Document) Resources() (*etree.Element, error) {
	return d.section("resources")
}

// Constraints returns the constraints section.
func (d *Document) Constraints() (*etree.Element, error) {
	return d.section("constraints")
}

func (d *Document) section(tag string) (*etree.Element, error) {
	el := d.configuration.SelectElement(tag)
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSection, tag)
	}
	return el, nil
}

// FindElementByID returns the configuration element with the given id, of
// any type, or nil.
func (d *Document) FindElementByID(id string) *etree.Element {
	return d.byID[id]
}

// FindResource returns the resource element with the given id, or nil if
// the id is unknown or belongs to something other than a resource.
func (d *Document) FindResource(id string) *etree.Element {
	el := d.byID[id]
	if el == nil || !IsResource(el) || !d.inResources(el) {
		return nil
	}
	return el
}

func (d *Document) inResources(el *etree.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag == "resources" && p.Parent() == d.configuration {
			return true
		}
	}
	return false
}

// IsResource reports whether el is a primitive, group, clone, master or bundle.
func IsResource(el *etree.Element) bool {
	return el != nil && resourceTags[el.Tag]
}

// IsWrapper reports whether el is a resource that contains other resources.
func IsWrapper(el *etree.Element) bool {
	return el != nil && wrapperTags[el.Tag]
}

// ParentResource returns the wrapper directly containing el, or nil.
func ParentResource(el *etree.Element) *etree.Element {
	if el == nil {
		return nil
	}
	parent := el.Parent()
	if IsWrapper(parent) {
		return parent
	}
	return nil
}

// InnerResources returns the resources directly contained in a wrapper, in
// document order. Groups hold primitives, clones hold one group or
// primitive, and bundles hold at most one primitive.
func InnerResources(el *etree.Element) []*etree.Element {
	if !IsWrapper(el) {
		return nil
	}
	var inner []*etree.Element
	for _, child := range el.ChildElements() {
		switch el.Tag {
		case TagGroup, TagBundle:
			if child.Tag == TagPrimitive {
				inner = append(inner, child)
			}
		case TagClone, TagMaster:
			if child.Tag == TagPrimitive || child.Tag == TagGroup {
				inner = append(inner, child)
			}
		}
	}
	return inner
}

// ID returns the id attribute of el.
func ID(el *etree.Element) string {
	return el.SelectAttrValue("id", "")
}

// Attributes returns the attributes of el as a map. Namespaced attributes
// are keyed by their local name.
func Attributes(el *etree.Element) map[string]string {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Key] = a.Value
	}
	return attrs
}
