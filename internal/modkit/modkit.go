// Package modkit composes the API out of feature modules. A module gets the
// shared Deps, may mount routes under its prefix and hands typed ports to the
// modules built after it
package modkit

import (
	"orderlens/internal/modkit/httpkit"
	"orderlens/internal/modkit/repokit"
	"orderlens/internal/platform/config"
	"orderlens/internal/platform/logger"
	"orderlens/internal/platform/store"
)

// Deps are shared by every module. PG and CH are nil when not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Module is one feature slice of the API
type Module interface {
	Name() string
	Ports() any
	MountRoutes(r httpkit.Router)
}

// PortsOf returns m's ports when they are a T
func PortsOf[T any](m Module) (T, bool) {
	p, ok := m.Ports().(T)
	return p, ok
}

// MustPortsOf is PortsOf for bootstrap code, where a mismatch is a wiring bug
func MustPortsOf[T any](m Module) T {
	p, ok := PortsOf[T](m)
	if !ok {
		panic("modkit: module " + m.Name() + " does not export the requested ports")
	}
	return p
}
