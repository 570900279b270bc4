// Package deps records which external tool each generated artifact needs and
// verifies, before any generator runs, that those tools can be invoked.
package deps

import (
	"errors"
	"os/exec"

	"github.com/p-salazarhamm/SCGid/internal/config"
	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// Condition restricts a dependency to some configurations. A nil Condition
// always holds.
type Condition func(cfg *config.Config) bool

// Dependency states that generating Artifact requires Tool.
type Dependency struct {
	Tool     string
	Artifact string
	When     Condition
}

// Locator finds an executable by name.
type Locator interface {
	LookPath(tool string) (string, error)
}

// PathLocator resolves tools through the PATH environment variable.
type PathLocator struct{}

func (PathLocator) LookPath(tool string) (string, error) { return exec.LookPath(tool) }

// Graph is the registry of tool prerequisites for one run.
type Graph struct {
	locator Locator
	deps    []Dependency
	seen    map[[2]string]struct{}
}

// NewGraph creates an empty Graph. A nil locator means PathLocator.
func NewGraph(locator Locator) *Graph {
	if locator == nil {
		locator = PathLocator{}
	}
	return &Graph{locator: locator, seen: make(map[[2]string]struct{})}
}

// Add registers dependencies in order.
func (g *Graph) Add(deps ...Dependency) error {
	for _, d := range deps {
		if d.Tool == "" || d.Artifact == "" {
			return failure.Configf("dependency", "tool and artifact are required (got tool=%q artifact=%q)", d.Tool, d.Artifact)
		}
		key := [2]string{d.Tool, d.Artifact}
		if _, dup := g.seen[key]; dup {
			return failure.Configf("dependency", "duplicate dependency %s -> %s", d.Tool, d.Artifact)
		}
		g.seen[key] = struct{}{}
		g.deps = append(g.deps, d)
	}
	return nil
}

// Validate rejects dependencies on artifacts for which known reports false.
func (g *Graph) Validate(known func(artifact string) bool) error {
	for _, d := range g.deps {
		if !known(d.Artifact) {
			return failure.Configf("dependency", "%s depends on unregistered artifact %q", d.Tool, d.Artifact)
		}
	}
	return nil
}

// Check verifies that every tool needed to generate a pending artifact is
// invocable. Dependencies whose condition does not hold for cfg are ignored,
// as are dependencies of artifacts that are not pending.
//
// All missing tools are reported together; the returned error matches
// failure.ErrMissingTool and unwraps to each *failure.MissingToolError.
func (g *Graph) Check(cfg *config.Config, pending []string) error {
	want := make(map[string]struct{}, len(pending))
	for _, a := range pending {
		want[a] = struct{}{}
	}

	var errs []error
	for _, d := range g.deps {
		if _, ok := want[d.Artifact]; !ok {
			continue
		}
		if d.When != nil && !d.When(cfg) {
			continue
		}
		if _, err := g.locator.LookPath(d.Tool); err != nil {
			errs = append(errs, &failure.MissingToolError{Tool: d.Tool, Artifact: d.Artifact, Cause: err})
		}
	}
	return errors.Join(errs...)
}
