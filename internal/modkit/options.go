package modkit

import (
	"orderlens/internal/platform/net/middleware"
	pstrings "orderlens/internal/platform/strings"
)

// Option adjusts a module at construction
type Option func(*Built)

// Built is the resolved option set
type Built struct {
	Name   string
	Prefix string
	Mw     []middleware.Middleware
	Ports  any
}

// Build applies opts in order, later ones winning
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix sets the mount path, normalized to "/x"
func WithPrefix(p string) Option { return func(b *Built) { b.Prefix = pstrings.MustPrefix(p) } }

// WithMiddlewares appends module scoped middleware after the common stack
func WithMiddlewares(mw ...middleware.Middleware) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts hands a module the ports it consumes; the module asserts the type
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }
