// Package detect knows how to find each supported tool on a host: presence,
// version, install path, install method. Detectors are stateless; every probe
// goes through the Executor passed in, so they are safe to fan out.
package detect

import (
	"context"

	"toolctl/internal/probe"
	"toolctl/internal/tools"
)

// Detector is the per-tool detection capability.
type Detector interface {
	ToolID() string
	ToolName() string
	IsInstalled(ctx context.Context, ex probe.Executor) bool
	Version(ctx context.Context, ex probe.Executor) string
	InstallPath(ctx context.Context, ex probe.Executor) string
	InstallMethod(ctx context.Context, ex probe.Executor) tools.InstallMethod
}

// Registry holds one detector per supported tool, keyed by tool id.
type Registry struct {
	order     []string
	detectors map[string]Detector
}

// NewRegistry builds the default registry with one detector per catalog tool.
func NewRegistry() *Registry {
	r := &Registry{detectors: map[string]Detector{}}
	for _, d := range []Detector{
		newClaudeDetector(),
		newCodexDetector(),
		newGeminiDetector(),
	} {
		r.order = append(r.order, d.ToolID())
		r.detectors[d.ToolID()] = d
	}
	return r
}

// Get returns the detector for a tool id.
func (r *Registry) Get(toolID string) (Detector, bool) {
	d, ok := r.detectors[toolID]
	return d, ok
}

// All returns every detector in catalog order, for bulk operations.
func (r *Registry) All() []Detector {
	out := make([]Detector, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.detectors[id])
	}
	return out
}
