package rfcparse

import "io"

// An Option modifies the behaviour of a Parser.
type Option func(o *parserOptions) error

type parserOptions struct {
	maxDepth     int
	trace        io.Writer
	keepInternal bool
	transformer  *Transformer
}

func defaultOptions() *parserOptions {
	return &parserOptions{maxDepth: 4096}
}

// MaxDepth bounds the rule invocation stack, capping native stack growth on
// deeply nested or pathological grammars. The default is 4096 frames.
func MaxDepth(n int) Option {
	return func(o *parserOptions) error {
		o.maxDepth = n
		return nil
	}
}

// Trace writes each rule invocation and its outcome to w.
func Trace(w io.Writer) Option {
	return func(o *parserOptions) error {
		o.trace = w
		return nil
	}
}

// KeepInternal disables pruning of internal ("_"-prefixed) rule nodes before
// transformation.
func KeepInternal() Option {
	return func(o *parserOptions) error {
		o.keepInternal = true
		return nil
	}
}

// Transform sets the semantic transformer applied to successful parse trees.
func Transform(t *Transformer) Option {
	return func(o *parserOptions) error {
		o.transformer = t
		return nil
	}
}
