// Package modkit provides module wiring and core deps
package modkit

import (
	"cartelera/internal/modkit/repokit"
	"cartelera/internal/platform/config"
	"cartelera/internal/platform/logger"
)

// Deps holds core dependencies passed to modules.
// This is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// ZeroOK returns true when deps are safe to use with zero values in tests
func (d Deps) ZeroOK() bool { return true }
