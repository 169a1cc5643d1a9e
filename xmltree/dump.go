package xmltree

import (
	"docxml/utils/debug"
)

// Dump returns indented human readable view of the tree: one line per
// element with attributes in stored order, text leaves quoted.
func Dump(root Element) string {
	tw := debug.NewTreeWriter()
	if n := nodeOf(root); n != nil {
		dumpNode(tw, n, 0)
	}
	return tw.String()
}

func dumpNode(tw *debug.TreeWriter, n *Node, depth int) {
	kv := make([]string, 0, 2*len(n.attrs))
	for _, a := range n.attrs {
		kv = append(kv, a.Name, a.Value)
	}
	tw.Pairs(depth, n.tag, kv...)
	for _, c := range n.children {
		switch v := c.(type) {
		case *Node:
			dumpNode(tw, v, depth+1)
		case Text:
			tw.TextBlock(depth+1, "text", string(v))
		}
	}
}
