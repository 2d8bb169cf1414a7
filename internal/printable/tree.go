// Package printable renders titled trees as box-drawing text lines, the way
// `tree` lays out a directory.
package printable

// Node is the capability set the renderer depends on.
type Node interface {
	Title() string
	Detail() []string
	Members() []Node
	IsLeaf() bool
}

const (
	connectorMid   = "|- "
	connectorLast  = "`- "
	barIndent      = "|  "
	blankIndent    = "   "
	shownElsewhere = " [shown elsewhere]"
)

// TreeToLines renders node and its descendants. titlePrefix is prepended to
// the node's own title line and indent to every line below it. A leaf node
// renders as a single line ending in " [shown elsewhere]" and its detail and
// members are ignored.
func TreeToLines(node Node, titlePrefix, indent string) []string {
	if node.IsLeaf() {
		return []string{titlePrefix + node.Title() + shownElsewhere}
	}

	lines := []string{titlePrefix + node.Title()}
	members := node.Members()

	detailIndent := blankIndent
	if len(members) > 0 {
		detailIndent = barIndent
	}
	for _, d := range node.Detail() {
		lines = append(lines, indent+detailIndent+d)
	}

	for i, m := range members {
		connector, continuation := connectorMid, barIndent
		if i == len(members)-1 {
			connector, continuation = connectorLast, blankIndent
		}
		lines = append(lines, TreeToLines(m, indent+connector, indent+continuation)...)
	}
	return lines
}

// Simple is a plain Node value for ad hoc trees.
type Simple struct {
	Label    string
	Lines    []string
	Children []*Simple
	Leaf     bool
}

// Title returns the node label.
func (s *Simple) Title() string { return s.Label }

// Detail returns the extra description lines.
func (s *Simple) Detail() []string { return s.Lines }

// Members returns the children as Nodes.
func (s *Simple) Members() []Node {
	out := make([]Node, len(s.Children))
	for i, c := range s.Children {
		out[i] = c
	}
	return out
}

// IsLeaf reports whether the node is shown elsewhere.
func (s *Simple) IsLeaf() bool { return s.Leaf }
