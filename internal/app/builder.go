package app

import "go.trai.ch/verify/internal/core/ports"

// Components is everything main() needs once graft has resolved the
// dependency graph: the fully-wired App plus the logger, needed
// independently so a wiring failure can still be reported before the App
// exists.
type Components struct {
	App    *App
	Logger ports.Logger
}
