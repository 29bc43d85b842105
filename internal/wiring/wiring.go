// Package wiring registers every graft node by side effect. Importing it
// blank is enough to make the whole dependency graph resolvable.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/verify/internal/adapters/cas"
	_ "go.trai.ch/verify/internal/adapters/config"
	_ "go.trai.ch/verify/internal/adapters/fs"
	_ "go.trai.ch/verify/internal/adapters/logger"
	_ "go.trai.ch/verify/internal/adapters/metadata"
	_ "go.trai.ch/verify/internal/adapters/shell"
	_ "go.trai.ch/verify/internal/adapters/telemetry"
	_ "go.trai.ch/verify/internal/adapters/vcs"
	// Register the application node.
	_ "go.trai.ch/verify/internal/app"
)
