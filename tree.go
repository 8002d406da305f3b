package rfcparse

// A Node is one element of a parse tree: either a rule instance (Rule is the
// rule name, Children the ordered sub-matches) or a terminal leaf (Rule is
// empty, the span is the matched text). Concatenating the leaf spans of a
// tree in document order reconstructs exactly the matched substring of the
// input. Nodes are immutable once produced by the matcher.
type Node struct {
	Rule     string
	Start    int
	End      int
	Children []*Node

	rule *Rule
}

// Terminal reports whether the node is a literal leaf span.
func (n *Node) Terminal() bool { return n.Rule == "" }

// Text returns the exact input span this node matched.
func (n *Node) Text(input string) string { return input[n.Start:n.End] }

// Walk visits the tree in document order. Returning false skips the node's
// children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns all descendant nodes (including n itself) for the named rule,
// in document order.
func (n *Node) Find(rule string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Rule == rule {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Prune returns a copy of the tree with internal ("_"-prefixed) rule nodes
// inlined: their children are spliced into the parent, so internal rules can
// structure a grammar without appearing in the tree handed to transformers.
// Leaf spans are preserved, keeping the coverage invariant intact.
func (n *Node) Prune() *Node {
	out := &Node{Rule: n.Rule, Start: n.Start, End: n.End, rule: n.rule}
	out.Children = pruneChildren(n.Children)
	return out
}

func pruneChildren(children []*Node) []*Node {
	var out []*Node
	for _, c := range children {
		if !c.Terminal() && Internal(c.Rule) {
			out = append(out, pruneChildren(c.Children)...)
			continue
		}
		out = append(out, c.Prune())
	}
	return out
}
