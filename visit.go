package rfcparse

import "fmt"

// A Value is the transformed result of one rule node, as seen by the action
// of the enclosing rule.
type Value struct {
	Rule  string
	Start int
	End   int
	V     interface{}
}

// Capture is the context handed to an Action: the matched span and the
// already-transformed values of the node's rule children.
type Capture struct {
	node     *Node
	input    string
	children []Value
}

// Text returns the raw text matched by the rule, exactly as it appears in
// the input.
func (c *Capture) Text() string { return c.node.Text(c.input) }

// Offset of the matched span in the input.
func (c *Capture) Offset() int { return c.node.Start }

// Children returns the transformed child values in document order. Terminal
// leaves do not produce values; their text is part of Text().
func (c *Capture) Children() []Value { return c.children }

// Child returns the first child value for the named rule.
func (c *Capture) Child(rule string) (Value, bool) {
	for _, v := range c.children {
		if v.Rule == rule {
			return v, true
		}
	}
	return Value{}, false
}

// All returns every child value for the named rule, in order.
func (c *Capture) All(rule string) []Value {
	var out []Value
	for _, v := range c.children {
		if v.Rule == rule {
			out = append(out, v)
		}
	}
	return out
}

// An Action converts a matched rule into a typed value. Child nodes have
// already been transformed when the action runs. Returning an error aborts
// the transformation; errors that are not positional are wrapped into a
// SemanticError at the node's offset.
type Action func(c *Capture) (interface{}, error)

// A Transformer maps rule names to semantic actions, applied bottom-up over
// a parse tree. Rules without an action transform to their span text.
type Transformer struct {
	actions map[string]Action
}

func NewTransformer() *Transformer {
	return &Transformer{actions: map[string]Action{}}
}

// On registers the action for a rule, replacing any previous one.
func (t *Transformer) On(rule string, action Action) *Transformer {
	t.actions[rule] = action
	return t
}

// bind resolves the rule-name keyed actions against a resolved grammar into
// a pointer-keyed table, so transformation dispatches without string lookups.
// Aliased (composed) rules share their source *Rule and so share actions.
func (t *Transformer) bind(g *Grammar) map[*Rule]Action {
	bound := make(map[*Rule]Action, len(t.actions))
	for name, action := range t.actions {
		if rule, ok := g.rules[name]; ok {
			bound[rule] = action
		}
	}
	return bound
}

// Apply transforms a parse tree produced by g against input, bottom-up.
func (t *Transformer) Apply(g *Grammar, input string, root *Node) (interface{}, error) {
	return applyActions(t.bind(g), input, root)
}

func applyActions(bound map[*Rule]Action, input string, node *Node) (interface{}, error) {
	var children []Value
	for _, c := range node.Children {
		if c.Terminal() {
			continue
		}
		v, err := applyActions(bound, input, c)
		if err != nil {
			return nil, err
		}
		children = append(children, Value{Rule: c.Rule, Start: c.Start, End: c.End, V: v})
	}
	action := bound[node.rule]
	if action == nil {
		return node.Text(input), nil
	}
	value, err := action(&Capture{node: node, input: input, children: children})
	if err != nil {
		return nil, semanticAt(input, node.Start, err)
	}
	return value, nil
}

// semanticAt anchors an action error to the input. Positional errors pass
// through with line/column filled in; anything else becomes a SemanticError
// at the node's offset.
func semanticAt(input string, offset int, err error) error {
	switch err := err.(type) {
	case *SemanticError:
		if err.Pos.Line == 0 {
			err.Pos = PositionAt(input, err.Pos.Offset)
		}
		return err
	case Error:
		return err
	}
	return &SemanticError{Pos: PositionAt(input, offset), Msg: fmt.Sprintf("%s", err)}
}
