package modkit

import (
	"orderlens/internal/modkit/httpkit"
	pstrings "orderlens/internal/platform/strings"
)

// Base is the identity and routing half of a Module. Embed it and add Ports
type Base struct {
	built  Built
	routes func(httpkit.Router)
}

// NewBase keeps b for Name and MountRoutes. routes is nil for modules that only export ports
func NewBase(b Built, routes func(httpkit.Router)) Base {
	pstrings.MustString(b.Name, "module name")
	return Base{built: b, routes: routes}
}

func (b Base) Name() string   { return b.built.Name }
func (b Base) Prefix() string { return b.built.Prefix }

// MountRoutes scopes the module's routes under its prefix and middleware
func (b Base) MountRoutes(r httpkit.Router) {
	if b.routes == nil {
		return
	}
	r.Route(pstrings.MustPrefix(b.built.Prefix), func(sub httpkit.Router) {
		sub.Use(b.built.Mw...)
		b.routes(sub)
	})
}
