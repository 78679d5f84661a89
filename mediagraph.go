// Package mediagraph provides a top-level convenience entry point for
// embedding the node library with minimal boilerplate.
//
// Usage:
//
//	import "github.com/hdelmont/mediagraph"
//
//	registry, deps, err := mediagraph.New("", logger)
//	node, err := registry.New("StitchVideos")
//
// This is a thin wrapper around [config.Load], [nodes.NewDeps], and
// [nodes.Register]; hosts that need finer control wire those directly.
package mediagraph

import (
	"github.com/hdelmont/mediagraph/config"
	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/nodes"

	"go.uber.org/zap"
)

// Version is the library version, overridable at build time.
var Version = "dev"

// New loads configuration (defaults plus environment when path is empty),
// wires the shared dependencies, and returns a registry with every node
// type registered.
func New(configPath string, logger *zap.Logger) (*graph.Registry, *nodes.Deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		return nil, nil, err
	}
	deps := nodes.NewDeps(cfg, logger)
	registry := graph.NewRegistry()
	if err := nodes.Register(registry, deps); err != nil {
		return nil, nil, err
	}
	return registry, deps, nil
}
