package appliance

import (
	"encoding/xml"
	"strings"
)

// Node is one element of the configuration tree.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []*Node    `xml:",any"`
}

// keyLeaves identify list entries among siblings of the same tag.
var keyLeaves = map[string]bool{
	"name":           true,
	"from-zone-name": true,
	"to-zone-name":   true,
}

func newNode(tag string) *Node {
	return &Node{XMLName: xml.Name{Local: tag}}
}

func (n *Node) tag() string {
	return n.XMLName.Local
}

func (n *Node) isLeaf() bool {
	return len(n.Nodes) == 0
}

func (n *Node) text() string {
	return strings.TrimSpace(n.Text)
}

func (n *Node) child(tag string) *Node {
	for _, c := range n.Nodes {
		if c.tag() == tag {
			return c
		}
	}
	return nil
}

// key joins the values of the key leaves, "" for unkeyed containers.
func (n *Node) key() string {
	var parts []string
	for _, c := range n.Nodes {
		if c.isLeaf() && keyLeaves[c.tag()] {
			parts = append(parts, c.text())
		}
	}
	return strings.Join(parts, ",")
}

func (n *Node) deleted() bool {
	for _, a := range n.Attrs {
		if a.Name.Local == "delete" && a.Value == "delete" {
			return true
		}
	}
	return false
}

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{XMLName: n.XMLName, Text: n.text()}
	for _, a := range n.Attrs {
		if a.Name.Local == "delete" {
			continue
		}
		out.Attrs = append(out.Attrs, a)
	}
	for _, c := range n.Nodes {
		out.Nodes = append(out.Nodes, c.clone())
	}
	return out
}

// same reports whether c addresses the existing sibling e.
func same(e, c *Node) bool {
	if e.tag() != c.tag() {
		return false
	}
	if c.isLeaf() {
		return e.isLeaf() && e.text() == c.text()
	}
	return e.key() == c.key()
}

// merge applies a load-configuration fragment: new entries are added, entries
// carrying delete="delete" are removed, matching containers merge recursively.
func merge(dst, src *Node) {
	for _, c := range src.Nodes {
		idx := -1
		for i, e := range dst.Nodes {
			if same(e, c) {
				idx = i
				break
			}
		}

		switch {
		case c.deleted():
			if idx >= 0 {
				dst.Nodes = append(dst.Nodes[:idx], dst.Nodes[idx+1:]...)
			}
		case idx < 0:
			dst.Nodes = append(dst.Nodes, c.clone())
		case !c.isLeaf():
			merge(dst.Nodes[idx], c)
		}
	}
}

// filter returns the part of data selected by f, or nil when nothing matches.
//
// Leaf children of f with text are selectors that data must match. Other
// children select descendants recursively. A filter element with no
// descendant selectors returns the whole matched subtree.
func filter(f, data *Node) *Node {
	var subs []*Node
	for _, c := range f.Nodes {
		if c.isLeaf() && c.text() != "" {
			found := false
			for _, d := range data.Nodes {
				if d.isLeaf() && d.tag() == c.tag() && d.text() == c.text() {
					found = true
					break
				}
			}
			if !found {
				return nil
			}
			continue
		}
		subs = append(subs, c)
	}

	if len(subs) == 0 {
		return data.clone()
	}

	out := &Node{XMLName: data.XMLName}
	for _, d := range data.Nodes {
		if d.isLeaf() && keyLeaves[d.tag()] {
			out.Nodes = append(out.Nodes, d.clone())
		}
	}

	matched := false
	for _, s := range subs {
		for _, d := range data.Nodes {
			if d.tag() != s.tag() {
				continue
			}
			if r := filter(s, d); r != nil {
				out.Nodes = append(out.Nodes, r)
				matched = true
			}
		}
	}
	if !matched {
		return nil
	}
	return out
}

// lookup walks segments of the form "tag" or "tag[key]" and returns every
// node matched by the last one.
func lookup(root *Node, segments []string) []*Node {
	current := []*Node{root}
	for _, seg := range segments {
		tag, key, keyed := parseSegment(seg)
		var next []*Node
		for _, n := range current {
			for _, c := range n.Nodes {
				if c.tag() != tag {
					continue
				}
				if keyed && c.key() != key && c.text() != key {
					continue
				}
				next = append(next, c)
			}
		}
		current = next
	}
	return current
}

func parseSegment(seg string) (tag, key string, keyed bool) {
	i := strings.IndexByte(seg, '[')
	if i < 0 || !strings.HasSuffix(seg, "]") {
		return seg, "", false
	}
	return seg[:i], seg[i+1 : len(seg)-1], true
}

func marshalChildren(n *Node) string {
	var b strings.Builder
	if n == nil {
		return ""
	}
	for _, c := range n.Nodes {
		out, err := xml.Marshal(c)
		if err != nil {
			continue
		}
		b.Write(out)
	}
	return b.String()
}

func parseFragment(doc string) (*Node, error) {
	var n Node
	if err := xml.Unmarshal([]byte("<configuration>"+doc+"</configuration>"), &n); err != nil {
		return nil, err
	}
	return &n, nil
}
