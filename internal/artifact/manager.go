package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/p-salazarhamm/SCGid/internal/ctxlog"
	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// Manager is the registry of artifact specs for one run.
//
// Resolution is two-phase, with the tool and parameter checks run in between:
//  1. Resolve: bind explicit and reusable artifacts, queue the rest
//  2. GenerateMissing: run the generators of queued artifacts
//
// A Manager is not safe for concurrent use.
type Manager struct {
	dir    string
	config Binder

	specs    []Spec
	byArg    map[string]int
	status   map[string]Status
	resolved bool
}

// NewManager creates a Manager scanning dir and binding into config.
func NewManager(dir string, config Binder) *Manager {
	return &Manager{
		dir:    dir,
		config: config,
		byArg:  make(map[string]int),
		status: make(map[string]Status),
	}
}

// Register adds specs in order. Registering two specs for one argument is a
// configuration error.
func (m *Manager) Register(specs ...Spec) error {
	for _, s := range specs {
		if _, dup := m.byArg[s.Argument]; dup {
			return failure.Configf(s.Argument, "artifact registered twice")
		}
		if s.Pattern == nil || s.Generator == nil {
			return failure.Configf(s.Argument, "incomplete artifact spec")
		}
		m.byArg[s.Argument] = len(m.specs)
		m.specs = append(m.specs, s)
	}
	return nil
}

// Spec returns the registered spec for arg.
func (m *Manager) Spec(arg string) (Spec, bool) {
	i, ok := m.byArg[arg]
	if !ok {
		return Spec{}, false
	}
	return m.specs[i], true
}

// Resolve decides the status of every registered artifact.
//
// An explicitly supplied argument is never scanned for nor generated.
// Otherwise the working directory is scanned: one match is bound, none
// queues the artifact, several fail with *failure.AmbiguousArtifactError.
func (m *Manager) Resolve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for _, s := range m.specs {
		if m.config.Explicit(s.Argument) {
			m.status[s.Argument] = StatusExplicit
			path, _ := m.config.Path(s.Argument)
			logger.Info("Using supplied artifact.", "argument", s.Argument, "path", path)
			continue
		}

		matches, err := Discover(m.dir, s.Pattern)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", s.Argument, err)
		}

		switch len(matches) {
		case 0:
			m.status[s.Argument] = StatusPending
			logger.Info("No reusable artifact found; queued for generation.",
				"argument", s.Argument, "pattern", s.Pattern.String(), "tool", s.Generator.Tool())
		case 1:
			if err := m.config.Bind(s.Argument, matches[0]); err != nil {
				return err
			}
			m.status[s.Argument] = StatusReused
			logger.Info("Reusing existing artifact.", "argument", s.Argument, "path", matches[0])
		default:
			return &failure.AmbiguousArtifactError{
				Argument: s.Argument,
				Pattern:  s.Pattern.String(),
				Matches:  matches,
			}
		}
	}

	m.resolved = true
	return nil
}

// Pending returns the arguments queued for generation, in registration order.
func (m *Manager) Pending() []string {
	var out []string
	for _, s := range m.specs {
		if m.status[s.Argument] == StatusPending {
			out = append(out, s.Argument)
		}
	}
	return out
}

// ValidatePending checks the parameters of every pending artifact's
// generator, so that a run fails before the first tool starts.
func (m *Manager) ValidatePending() error {
	for _, s := range m.specs {
		if m.status[s.Argument] != StatusPending {
			continue
		}
		v, ok := s.Generator.(Validator)
		if !ok {
			continue
		}
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GenerateMissing runs the generator of every pending artifact and binds the
// produced path. A generator that fails, or exits without leaving a regular
// file at its output path, aborts with *failure.GeneratorFailureError.
func (m *Manager) GenerateMissing(ctx context.Context) error {
	if !m.resolved {
		return errors.New("artifact: GenerateMissing called before Resolve")
	}
	logger := ctxlog.FromContext(ctx)

	for _, s := range m.specs {
		if m.status[s.Argument] != StatusPending {
			continue
		}

		tool := s.Generator.Tool()
		logger.Info("Generating artifact.", "argument", s.Argument, "tool", tool, "output", s.Output)

		if err := s.Generator.Generate(ctx, s.Output); err != nil {
			return asGeneratorFailure(err, tool, s)
		}

		info, err := os.Stat(s.Output)
		if err != nil || !info.Mode().IsRegular() {
			return &failure.GeneratorFailureError{
				Tool:     tool,
				Artifact: s.Argument,
				Output:   s.Output,
				Message:  "tool finished but the expected file was not produced",
				Cause:    err,
			}
		}

		if err := m.config.Bind(s.Argument, s.Output); err != nil {
			return err
		}
		m.status[s.Argument] = StatusGenerated
		logger.Info("Artifact generated.", "argument", s.Argument, "path", s.Output)
	}
	return nil
}

// Status returns the resolution status of arg.
func (m *Manager) Status(arg string) (Status, bool) {
	st, ok := m.status[arg]
	return st, ok
}

// Outcomes reports every resolved artifact in registration order.
func (m *Manager) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(m.specs))
	for _, s := range m.specs {
		st, ok := m.status[s.Argument]
		if !ok {
			continue
		}
		o := Outcome{Argument: s.Argument, Status: st}
		if st != StatusPending {
			o.Path, _ = m.config.Path(s.Argument)
		}
		out = append(out, o)
	}
	return out
}

// asGeneratorFailure keeps configuration and generator failures as they are
// and wraps anything else.
func asGeneratorFailure(err error, tool string, s Spec) error {
	if errors.Is(err, failure.ErrConfiguration) || errors.Is(err, failure.ErrGeneratorFailure) {
		return err
	}
	return &failure.GeneratorFailureError{Tool: tool, Artifact: s.Argument, Output: s.Output, Cause: err}
}
